package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankcap/internal/pipeline"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	var noLogDump bool
	var url, ratesPath, csvPath, xlsxPath, dbPath, table, logPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ETL pipeline once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}

			// Flags override the config file.
			flags := cmd.Flags()
			override := func(name string, dst *string, val string) {
				if flags.Changed(name) {
					*dst = val
				}
			}
			override("url", &cfg.Source.URL, url)
			override("rates", &cfg.Paths.ExchangeRates, ratesPath)
			override("csv", &cfg.Paths.OutputCSV, csvPath)
			override("xlsx", &cfg.Paths.OutputWorkbook, xlsxPath)
			override("db", &cfg.Paths.Database, dbPath)
			override("table", &cfg.Database.Table, table)
			override("log", &cfg.Paths.Log, logPath)

			sum, err := pipeline.Run(cmd.Context(), cfg, pipeline.Options{
				Out:     cmd.OutOrStdout(),
				DumpLog: !noLogDump,
				Logger:  root.logger(cmd.ErrOrStderr()),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d banks into %s (%s) and %s\n",
				sum.Records, sum.Table, sum.Database, sum.OutputCSV)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "source page URL")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "exchange rate CSV")
	cmd.Flags().StringVar(&csvPath, "csv", "", "output CSV file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "output workbook (.xlsx), empty to skip")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file")
	cmd.Flags().StringVar(&table, "table", "", "database table to replace")
	cmd.Flags().StringVar(&logPath, "log", "", "progress log file")
	cmd.Flags().BoolVar(&noLogDump, "no-log-dump", false, "do not print the progress log after the run")

	return cmd
}
