package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankcap/internal/report"
	"github.com/cleared-dev/bankcap/internal/store"
)

func newQueryCommand(root *rootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only query against the loaded database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Paths.Database = dbPath
			}

			st, err := store.Open(cmd.Context(), store.Options{Path: cfg.Paths.Database, ReadOnly: true})
			if err != nil {
				return err
			}
			defer st.Close()

			return report.RunQuery(cmd.Context(), cmd.OutOrStdout(), st, args[0])
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file")

	return cmd
}
