// Package progress writes the run's append-only progress log.
//
// Each line is "<timestamp>,<message>" with the timestamp formatted as
// TimestampLayout (e.g. "2023-Sep-08-09:16:35").
package progress

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TimestampLayout is Year-MonthAbbrev-Day-Hour:Minute:Second.
const TimestampLayout = "2006-Jan-02-15:04:05"

// Entry is one line of the progress log.
type Entry struct {
	Timestamp time.Time
	Message   string
}

// Log is an open progress log. It is opened once per run and closed at the end.
type Log struct {
	f      *os.File
	path   string
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithLogger mirrors every message to logger at info level.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// Open opens path for appending, creating it and its directory if needed.
func Open(path string, opts ...Option) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening progress log: %w", err)
	}

	l := &Log{f: f, path: path, now: time.Now, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Log appends one timestamped line.
func (l *Log) Log(message string) error {
	if l.f == nil {
		return fmt.Errorf("progress log %s is closed", l.path)
	}

	e := Entry{Timestamp: l.now(), Message: message}
	if _, err := io.WriteString(l.f, MarshalEntry(e)+"\n"); err != nil {
		return fmt.Errorf("writing progress log: %w", err)
	}

	l.logger.Info().Msg(message)
	return nil
}

// Close closes the file. Closing twice is a no-op.
func (l *Log) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	if err != nil {
		return fmt.Errorf("closing progress log: %w", err)
	}
	return nil
}

// MarshalEntry formats an entry as a log line (without newline).
func MarshalEntry(e Entry) string {
	return e.Timestamp.Format(TimestampLayout) + "," + e.Message
}

// UnmarshalEntry parses a log line. The message may itself contain commas.
func UnmarshalEntry(line string) (Entry, error) {
	ts, msg, ok := strings.Cut(line, ",")
	if !ok {
		return Entry{}, fmt.Errorf("missing separator in %q", line)
	}

	t, err := time.ParseInLocation(TimestampLayout, ts, time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", ts, err)
	}
	return Entry{Timestamp: t, Message: msg}, nil
}

// Read returns all entries in the log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening progress log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		if sc.Text() == "" {
			continue
		}
		e, err := UnmarshalEntry(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading progress log: %w", err)
	}
	return entries, nil
}

// Dump copies the raw log at path to w.
func Dump(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening progress log: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("dumping progress log: %w", err)
	}
	return nil
}
