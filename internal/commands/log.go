package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankcap/internal/progress"
)

func newLogCommand(root *rootOptions) *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the progress log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log") {
				cfg.Paths.Log = logPath
			}

			entries, err := progress.Read(cfg.Paths.Log)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no progress log entries in %s\n", cfg.Paths.Log)
				return nil
			}
			for _, e := range entries {
				fmt.Fprintln(cmd.OutOrStdout(), progress.MarshalEntry(e))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "progress log file")

	return cmd
}
