package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/bankcap/internal/buildinfo"
	"github.com/cleared-dev/bankcap/internal/model"
)

// FileName is the conventional config file name in a project directory.
const FileName = "bankcap.yaml"

// DefaultSourceURL is the archived Wikipedia list of largest banks.
const DefaultSourceURL = "https://web.archive.org/web/20230908091635/https://en.wikipedia.org/wiki/List_of_largest_banks"

// Config represents the top-level bankcap.yaml configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Paths    PathsConfig    `yaml:"paths"`
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// SourceConfig identifies the page to scrape.
type SourceConfig struct {
	URL    string   `yaml:"url"`
	Fields []string `yaml:"fields"`
}

// PathsConfig holds every file the pipeline reads or writes.
type PathsConfig struct {
	ExchangeRates  string `yaml:"exchange_rates"`
	OutputCSV      string `yaml:"output_csv"`
	OutputWorkbook string `yaml:"output_workbook,omitempty"` // empty = no workbook
	Database       string `yaml:"database"`
	Log            string `yaml:"log"`
}

// DatabaseConfig names the table replaced on every run.
type DatabaseConfig struct {
	Table string `yaml:"table"`
}

// HTTPConfig controls the page fetch.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"` // 0 = no timeout
	UserAgent string        `yaml:"user_agent"`
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name can be used unquoted as a SQL table name.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

// Load reads a bankcap.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the stock project layout.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:    DefaultSourceURL,
			Fields: append([]string(nil), model.SourceFields...),
		},
		Paths: PathsConfig{
			ExchangeRates: filepath.Join("raw-data", "exchange_rate.csv"),
			OutputCSV:     filepath.Join("output-data", "Largest_banks_data.csv"),
			Database:      filepath.Join("database", "Banks.db"),
			Log:           filepath.Join("logs", "code_log.txt"),
		},
		Database: DatabaseConfig{
			Table: "Largest_banks",
		},
		HTTP: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "bankcap/" + buildinfo.Version,
		},
	}
}

// Validate checks that the config can drive a run.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source.url is required")
	}
	required := []struct{ key, value string }{
		{"paths.exchange_rates", c.Paths.ExchangeRates},
		{"paths.output_csv", c.Paths.OutputCSV},
		{"paths.database", c.Paths.Database},
		{"paths.log", c.Paths.Log},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.key)
		}
	}
	if !ValidIdentifier(c.Database.Table) {
		return fmt.Errorf("database.table %q is not a valid identifier", c.Database.Table)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	return nil
}

// Resolve makes relative paths relative to dir.
func (c *Config) Resolve(dir string) {
	for _, p := range []*string{
		&c.Paths.ExchangeRates,
		&c.Paths.OutputCSV,
		&c.Paths.OutputWorkbook,
		&c.Paths.Database,
		&c.Paths.Log,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
