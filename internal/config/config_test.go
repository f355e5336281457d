package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankcap/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Paths.OutputWorkbook = "output-data/Largest_banks_data.xlsx"
	cfg.HTTP.Timeout = 15 * time.Second

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Source.URL, got.Source.URL)
	assert.Equal(t, cfg.Source.Fields, got.Source.Fields)
	assert.Equal(t, cfg.Paths, got.Paths)
	assert.Equal(t, cfg.Database.Table, got.Database.Table)
	assert.Equal(t, 15*time.Second, got.HTTP.Timeout)
	assert.Equal(t, cfg.HTTP.UserAgent, got.HTTP.UserAgent)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultSourceURL, cfg.Source.URL)
	assert.Equal(t, model.SourceFields, cfg.Source.Fields)
	assert.Equal(t, filepath.Join("raw-data", "exchange_rate.csv"), cfg.Paths.ExchangeRates)
	assert.Equal(t, filepath.Join("output-data", "Largest_banks_data.csv"), cfg.Paths.OutputCSV)
	assert.Equal(t, filepath.Join("database", "Banks.db"), cfg.Paths.Database)
	assert.Equal(t, filepath.Join("logs", "code_log.txt"), cfg.Paths.Log)
	assert.Empty(t, cfg.Paths.OutputWorkbook)
	assert.Equal(t, "Largest_banks", cfg.Database.Table)
	assert.Equal(t, 60*time.Second, cfg.HTTP.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("database:\n  table: Banks_2023\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Banks_2023", cfg.Database.Table)
	assert.Equal(t, DefaultSourceURL, cfg.Source.URL)
	assert.Equal(t, filepath.Join("logs", "code_log.txt"), cfg.Paths.Log)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "table: Largest_banks")
	assert.Contains(t, contents, "exchange_rates: raw-data/exchange_rate.csv")
	assert.Contains(t, contents, "timeout: 1m0s")
	assert.NotContains(t, contents, "output_workbook")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"missing url", func(c *Config) { c.Source.URL = "" }, "source.url"},
		{"missing rates", func(c *Config) { c.Paths.ExchangeRates = "" }, "paths.exchange_rates"},
		{"missing log", func(c *Config) { c.Paths.Log = "" }, "paths.log"},
		{"bad table", func(c *Config) { c.Database.Table = "banks; DROP TABLE x" }, "not a valid identifier"},
		{"negative timeout", func(c *Config) { c.HTTP.Timeout = -time.Second }, "http.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Paths.Log = "/var/log/bankcap.txt"
	cfg.Resolve("/srv/project")

	assert.Equal(t, filepath.Join("/srv/project", "raw-data", "exchange_rate.csv"), cfg.Paths.ExchangeRates)
	assert.Equal(t, filepath.Join("/srv/project", "database", "Banks.db"), cfg.Paths.Database)
	assert.Equal(t, "/var/log/bankcap.txt", cfg.Paths.Log)
	assert.Empty(t, cfg.Paths.OutputWorkbook, "empty workbook path stays disabled")
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, ValidIdentifier("Largest_banks"))
	assert.True(t, ValidIdentifier("_t1"))
	assert.False(t, ValidIdentifier("1banks"))
	assert.False(t, ValidIdentifier("banks-2023"))
	assert.False(t, ValidIdentifier(""))
}
