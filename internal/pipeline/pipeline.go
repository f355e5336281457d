// Package pipeline runs extract, transform, load and report as one linear sequence.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/bankcap/internal/config"
	"github.com/cleared-dev/bankcap/internal/extract"
	"github.com/cleared-dev/bankcap/internal/loader"
	"github.com/cleared-dev/bankcap/internal/progress"
	"github.com/cleared-dev/bankcap/internal/rates"
	"github.com/cleared-dev/bankcap/internal/report"
	"github.com/cleared-dev/bankcap/internal/store"
	"github.com/cleared-dev/bankcap/internal/transform"
)

// Stage identifies a step of the run.
type Stage string

const (
	StageStart     Stage = "start"
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoadFile  Stage = "load_file"
	StageLoadTable Stage = "load_table"
	StageReport    Stage = "report"
	StageEnd       Stage = "end"
)

// Progress log messages, one per stage boundary.
const (
	MsgStart       = "Preliminaries complete. Initiating ETL process"
	MsgExtracted   = "Data extraction complete. Initiating Transformation process"
	MsgTransformed = "Data transformation complete. Initiating loading process"
	MsgSavedFile   = "Data saved to CSV file"
	MsgConnected   = "SQL Connection initiated."
	MsgLoadedTable = "Data loaded to Database as table. Executing the queries"
	MsgComplete    = "Process Complete."
	MsgClosed      = "Server Connection closed"
)

// Options carries the collaborators of a run.
type Options struct {
	Getter  extract.Getter   // nil = HTTP fetcher built from cfg.HTTP
	Out     io.Writer        // report and log dump output
	DumpLog bool             // print the progress log after the run
	Logger  zerolog.Logger   // diagnostics
	Clock   func() time.Time // nil = time.Now
}

// Summary describes a completed run.
type Summary struct {
	RunID          string
	Records        int
	OutputCSV      string
	OutputWorkbook string
	Database       string
	Table          string
	Log            string
}

// StageError records which stage aborted the run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Run executes the pipeline once. Any failure aborts the run; outputs
// written by earlier stages are left in place.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	runID := uuid.NewString()
	logger := opts.Logger.With().Str("run_id", runID).Logger()

	getter := opts.Getter
	if getter == nil {
		getter = extract.NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, logger)
	}

	plog, err := progress.Open(cfg.Paths.Log, progress.WithClock(opts.Clock), progress.WithLogger(logger))
	if err != nil {
		return nil, &StageError{Stage: StageStart, Err: err}
	}
	defer plog.Close()

	r := &run{
		cfg:    cfg,
		opts:   opts,
		getter: getter,
		plog:   plog,
		logger: logger,
		summary: &Summary{
			RunID:          runID,
			OutputCSV:      cfg.Paths.OutputCSV,
			OutputWorkbook: cfg.Paths.OutputWorkbook,
			Database:       cfg.Paths.Database,
			Table:          cfg.Database.Table,
			Log:            cfg.Paths.Log,
		},
	}

	start := opts.Clock()
	if err := r.execute(ctx); err != nil {
		logger.Error().Err(err).Msg("run aborted")
		return nil, err
	}

	if err := plog.Close(); err != nil {
		return nil, &StageError{Stage: StageEnd, Err: err}
	}
	if opts.DumpLog {
		if err := progress.Dump(cfg.Paths.Log, opts.Out); err != nil {
			return nil, &StageError{Stage: StageEnd, Err: err}
		}
	}

	logger.Info().
		Int("records", r.summary.Records).
		Dur("elapsed", opts.Clock().Sub(start)).
		Msg("run complete")
	return r.summary, nil
}

type run struct {
	cfg     *config.Config
	opts    Options
	getter  extract.Getter
	plog    *progress.Log
	logger  zerolog.Logger
	summary *Summary
}

func (r *run) execute(ctx context.Context) error {
	if err := r.mark(StageStart, MsgStart); err != nil {
		return err
	}

	// Extract.
	extractor := extract.NewExtractor(r.getter, r.logger)
	records, err := extractor.Extract(ctx, r.cfg.Source.URL, r.cfg.Source.Fields)
	if err != nil {
		return &StageError{Stage: StageExtract, Err: err}
	}
	if err := r.mark(StageExtract, MsgExtracted); err != nil {
		return err
	}

	// Transform.
	table, err := rates.Load(r.cfg.Paths.ExchangeRates)
	if err != nil {
		return &StageError{Stage: StageTransform, Err: err}
	}
	enriched, err := transform.Transform(records, table)
	if err != nil {
		return &StageError{Stage: StageTransform, Err: err}
	}
	r.summary.Records = len(enriched)
	if err := r.mark(StageTransform, MsgTransformed); err != nil {
		return err
	}

	// Load to file.
	if err := loader.LoadToFile(enriched, r.cfg.Paths.OutputCSV); err != nil {
		return &StageError{Stage: StageLoadFile, Err: err}
	}
	if r.cfg.Paths.OutputWorkbook != "" {
		if err := loader.LoadToWorkbook(enriched, r.cfg.Paths.OutputWorkbook, r.cfg.Database.Table); err != nil {
			return &StageError{Stage: StageLoadFile, Err: err}
		}
	}
	if err := r.mark(StageLoadFile, MsgSavedFile); err != nil {
		return err
	}

	// Load to table.
	st, err := store.Open(ctx, store.Options{Path: r.cfg.Paths.Database})
	if err != nil {
		return &StageError{Stage: StageLoadTable, Err: err}
	}
	defer st.Close()
	if err := r.mark(StageLoadTable, MsgConnected); err != nil {
		return err
	}

	if err := st.LoadToTable(ctx, enriched, r.cfg.Database.Table); err != nil {
		return &StageError{Stage: StageLoadTable, Err: err}
	}
	if err := r.mark(StageLoadTable, MsgLoadedTable); err != nil {
		return err
	}

	// Report.
	for _, q := range report.DefaultQueries(r.cfg.Database.Table) {
		if err := report.RunQuery(ctx, r.opts.Out, st, q); err != nil {
			return &StageError{Stage: StageReport, Err: err}
		}
	}
	if err := r.mark(StageReport, MsgComplete); err != nil {
		return err
	}

	if err := st.Close(); err != nil {
		return &StageError{Stage: StageEnd, Err: err}
	}
	return r.mark(StageEnd, MsgClosed)
}

// mark writes a progress line for stage.
func (r *run) mark(stage Stage, msg string) error {
	r.logger.Debug().Str("stage", string(stage)).Msg("stage boundary")
	if err := r.plog.Log(msg); err != nil {
		return &StageError{Stage: stage, Err: err}
	}
	return nil
}
