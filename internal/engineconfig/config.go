// Package engineconfig loads and validates a tunable set: intern-table
// limits, a slow-query threshold, a default query hint, a log level and
// a metrics namespace. Files are YAML; struct-tag rules catch malformed
// values, and a ConfigValidator pass catches the cross-field rules tags
// can't express. No other package in this module reads a Config: the
// QueryEngine is configured through engine.Config, and loading a Config
// changes no engine, logger or metrics behavior.
package engineconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the engine's top-level tunable set.
type Config struct {
	// PlanCache holds the intern-table limits below; it does not size the
	// QueryEngine's plan cache (engine.Config.PlanCacheCapacity does).
	PlanCache PlanCacheConfig `yaml:"planCache" validate:"required"`

	// SlowQueryThreshold is the fetch duration above which a fetch counts
	// as slow.
	SlowQueryThreshold time.Duration `yaml:"slowQueryThreshold" validate:"required"`

	// DefaultConsumeSlice is the default for the CONSUME_SLICE query hint
	// when a caller doesn't specify one.
	DefaultConsumeSlice bool `yaml:"defaultConsumeSlice"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`

	// MetricsNamespace is a Prometheus metric-name prefix. qmetrics does
	// not read it; its metric names are fixed with the "queryplan_" prefix.
	MetricsNamespace string `yaml:"metricsNamespace" validate:"omitempty,alphanum"`
}

// PlanCacheConfig describes limits for the weak-reference intern tables
// (internal/intern) behind OrderingList; the engine's plan cache is a
// separate LRU and is not affected by it.
type PlanCacheConfig struct {
	// MaxOrderingLists is a high-cardinality warning level for the number
	// of distinct OrderingList instances one record type has interned.
	// Nothing compares the intern table against it and nothing logs a
	// warning; interning is never refused.
	MaxOrderingLists int `yaml:"maxOrderingLists" validate:"gte=0"`

	// WarnOnHighCardinality is the on/off switch for that warning.
	WarnOnHighCardinality bool `yaml:"warnOnHighCardinality"`
}

// Default returns the engine's built-in defaults.
func Default() Config {
	return Config{
		PlanCache: PlanCacheConfig{
			MaxOrderingLists:      10_000,
			WarnOnHighCardinality: true,
		},
		SlowQueryThreshold: time.Second,
		LogLevel:           "info",
		MetricsNamespace:   "queryplan",
	}
}

var validate = validator.New()

// Load reads and validates a Config from a YAML file at path, filling
// unset fields from Default first.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engineconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("engineconfig: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate runs struct-tag validation plus the cross-field checks tags
// can't express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	cv := newConfigValidator("Config")
	cv.nonNegativeDuration("SlowQueryThreshold", c.SlowQueryThreshold)
	cv.nonNegative("PlanCache.MaxOrderingLists", c.PlanCache.MaxOrderingLists)
	return cv.Validate()
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, e := range validationErrs {
		return fmt.Errorf("engineconfig: %s: failed %q validation", e.Namespace(), e.Tag())
	}
	return err
}
