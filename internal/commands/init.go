package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bankcap/internal/config"
	"github.com/cleared-dev/bankcap/internal/rates"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new bankcap project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized bankcap project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config and exchange rate file")

	return cmd
}

func runInit(dir string, force bool) error {
	cfg := config.Default()

	// Create directory structure.
	dirs := []string{
		filepath.Dir(cfg.Paths.ExchangeRates),
		filepath.Dir(cfg.Paths.OutputCSV),
		filepath.Dir(cfg.Paths.Database),
		filepath.Dir(cfg.Paths.Log),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write bankcap.yaml.
	cfgPath := filepath.Join(dir, config.FileName)
	if force || !exists(cfgPath) {
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	// Write starter exchange rates.
	ratesPath := filepath.Join(dir, cfg.Paths.ExchangeRates)
	if force || !exists(ratesPath) {
		if err := rates.Save(ratesPath, rates.Starter()); err != nil {
			return fmt.Errorf("writing exchange rates: %w", err)
		}
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
