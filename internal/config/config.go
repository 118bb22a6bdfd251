package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"arrow-trader/internal/market"
)

// Limits enforced by Validate.
const (
	MaxRequestWaitLimit = 10
	envPrefix           = "ARROW_"
)

// Config holds the options of one run (in-memory representation).
// The pipeline receives it fully populated; it never prompts on its own.
type Config struct {
	LargeOnly           bool `toml:"large_only"`
	IncludeFleetCarrier bool `toml:"include_fleet_carrier"`
	MaxQuantity         int  `toml:"max_quantity"`     // cargo capacity, > 0
	MaxRequestWait      int  `toml:"max_request_wait"` // seconds between commodities, 0 = no pause
	NumResultsToDisplay int  `toml:"num_results_to_display"`
	NearSol             bool `toml:"near_sol"`
	LogFile             bool `toml:"log_file"`

	LogDir      string `toml:"log_dir"`
	OpenReport  bool   `toml:"open_report"`
	ArchivePath string `toml:"archive_path"` // "" = no run archive
	CatalogPath string `toml:"catalog_path"` // "" = bundled catalog

	BaseURL            string        `toml:"base_url"`
	UserAgent          string        `toml:"user_agent"`
	RequestTimeout     time.Duration `toml:"request_timeout"`
	MinRequestInterval time.Duration `toml:"min_request_interval"`
	LogLevel           string        `toml:"log_level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		LargeOnly:           true,
		IncludeFleetCarrier: false,
		MaxQuantity:         25000,
		MaxRequestWait:      3,
		NumResultsToDisplay: 5,
		NearSol:             true,
		LogFile:             true,
		LogDir:              defaultLogDir(),
		BaseURL:             "https://inara.cz",
		UserAgent:           "arrow-trader/1.0 (github.com)",
		RequestTimeout:      30 * time.Second,
		MinRequestInterval:  250 * time.Millisecond,
		LogLevel:            "info",
	}
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ArrowTrader"
	}
	return filepath.Join(home, "Documents", "ArrowTrader")
}

// Filters returns the listing filters selected by this config.
func (c *Config) Filters() market.Filters {
	return market.Filters{
		LargeOnly:           c.LargeOnly,
		IncludeFleetCarrier: c.IncludeFleetCarrier,
		NearSol:             c.NearSol,
	}
}

// LoadFile overlays a TOML file onto c. Keys absent from the file keep their value.
func (c *Config) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv loads .env (when present) and overlays ARROW_* environment variables.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	var errs []error
	envBool(&c.LargeOnly, "LARGE_ONLY", &errs)
	envBool(&c.IncludeFleetCarrier, "INCLUDE_FLEET_CARRIER", &errs)
	envInt(&c.MaxQuantity, "MAX_QUANTITY", &errs)
	envInt(&c.MaxRequestWait, "MAX_REQUEST_WAIT", &errs)
	envInt(&c.NumResultsToDisplay, "NUM_RESULTS", &errs)
	envBool(&c.NearSol, "NEAR_SOL", &errs)
	envBool(&c.LogFile, "LOG_FILE", &errs)
	envString(&c.LogDir, "LOG_DIR")
	envBool(&c.OpenReport, "OPEN_REPORT", &errs)
	envString(&c.ArchivePath, "ARCHIVE_PATH")
	envString(&c.CatalogPath, "CATALOG_PATH")
	envString(&c.BaseURL, "BASE_URL")
	envString(&c.UserAgent, "USER_AGENT")
	envDuration(&c.RequestTimeout, "REQUEST_TIMEOUT", &errs)
	envDuration(&c.MinRequestInterval, "MIN_REQUEST_INTERVAL", &errs)
	envString(&c.LogLevel, "LOG_LEVEL")
	return errors.Join(errs...)
}

// Validate checks option ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxQuantity <= 0 {
		errs = append(errs, fmt.Errorf("max_quantity must be > 0, got %d", c.MaxQuantity))
	}
	if c.MaxRequestWait < 0 || c.MaxRequestWait > MaxRequestWaitLimit {
		errs = append(errs, fmt.Errorf("max_request_wait must be in [0,%d], got %d", MaxRequestWaitLimit, c.MaxRequestWait))
	}
	if c.NumResultsToDisplay < 0 {
		errs = append(errs, fmt.Errorf("num_results_to_display must be >= 0, got %d", c.NumResultsToDisplay))
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be > 0, got %s", c.RequestTimeout))
	}
	if c.MinRequestInterval < 0 {
		errs = append(errs, fmt.Errorf("min_request_interval must be >= 0, got %s", c.MinRequestInterval))
	}
	if c.LogFile && strings.TrimSpace(c.LogDir) == "" {
		errs = append(errs, errors.New("log_dir is required when log_file is on"))
	}
	return errors.Join(errs...)
}

func envString(dst *string, key string) {
	if v := os.Getenv(envPrefix + key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string, errs *[]error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return
	}
	*dst = n
}

func envBool(dst *bool, key string, errs *[]error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return
	}
	*dst = b
}

func envDuration(dst *time.Duration, key string, errs *[]error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		return
	}
	*dst = d
}
