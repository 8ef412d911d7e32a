// Package connect4config holds the driver's tunable settings. Nothing in
// package connect4 depends on this package: the solver works correctly
// with its own zero-configuration defaults, and this package only ever
// feeds the driver's entry point.
package connect4config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config collects the driver-level knobs that sit outside the solver's
// documented stdin/stdout/stderr contract: whether to run the analytics
// side channel, where to bind it, and how verbosely to log. Overridable
// from the environment under the C4SOLVER_ prefix, e.g.
// C4SOLVER_ANALYTICS_ENABLED=true.
type Config struct {
	WeakSolveDefault bool   `mapstructure:"weak_solve_default"`
	AnalyticsEnabled bool   `mapstructure:"analytics_enabled"`
	AnalyticsAddr    string `mapstructure:"analytics_addr"`
	LogLevel         string `mapstructure:"log_level"`
}

// DefaultConfig returns the configuration the driver uses when nothing in
// the environment overrides it.
func DefaultConfig() Config {
	return Config{
		WeakSolveDefault: false,
		AnalyticsEnabled: false,
		AnalyticsAddr:    ":8080",
		LogLevel:         "info",
	}
}

// Load reads Config from the environment, falling back to DefaultConfig
// for anything unset.
func Load() (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("C4SOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("weak_solve_default", cfg.WeakSolveDefault)
	v.SetDefault("analytics_enabled", cfg.AnalyticsEnabled)
	v.SetDefault("analytics_addr", cfg.AnalyticsAddr)
	v.SetDefault("log_level", cfg.LogLevel)

	for _, key := range []string{"weak_solve_default", "analytics_enabled", "analytics_addr", "log_level"} {
		if err := v.BindEnv(key); err != nil {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
