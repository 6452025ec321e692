package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Data struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"data" yaml:"data"`

	Models struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"models" yaml:"models"`

	// Categories is the configured product category list. It is consulted
	// only for output-completeness checks; the authoritative category set
	// is always the one observed in the data.
	Categories []string `mapstructure:"categories" yaml:"categories"`

	Model struct {
		TreeCount       int   `mapstructure:"tree_count" yaml:"tree_count"`
		MaxDepth        int   `mapstructure:"max_depth" yaml:"max_depth"` // 0 = unbounded
		MinSamplesSplit int   `mapstructure:"min_samples_split" yaml:"min_samples_split"`
		MinSamplesLeaf  int   `mapstructure:"min_samples_leaf" yaml:"min_samples_leaf"`
		RandomSeed      int64 `mapstructure:"random_seed" yaml:"random_seed"`
	} `mapstructure:"model" yaml:"model"`

	Forecast struct {
		HorizonDays int `mapstructure:"horizon_days" yaml:"horizon_days"`
		// ConfidenceInterval is declared configuration surface; it is not
		// currently enforced when forecasting.
		ConfidenceInterval float64 `mapstructure:"confidence_interval" yaml:"confidence_interval"`
	} `mapstructure:"forecast" yaml:"forecast"`

	// FactorWeights is the external-factor influence weighting. It is a
	// declared extension point: loaded and validated, never applied in
	// modeling or forecasting.
	FactorWeights map[string]float64 `mapstructure:"factor_weights" yaml:"factor_weights"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.scope-forecast")
	v.AddConfigPath(".scope-forecast")
	v.AddConfigPath(".")

	// 3. Environment variables
	v.SetEnvPrefix("SCOPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("data.directory", "data")
	v.SetDefault("models.directory", "models")

	v.SetDefault("categories", []string{
		"accessories",
		"ammunition",
		"handgun",
		"rifle",
		"shotgun",
	})

	v.SetDefault("model.tree_count", 100)
	v.SetDefault("model.max_depth", 0)
	v.SetDefault("model.min_samples_split", 2)
	v.SetDefault("model.min_samples_leaf", 1)
	v.SetDefault("model.random_seed", 42)

	v.SetDefault("forecast.horizon_days", 90)
	v.SetDefault("forecast.confidence_interval", 0.9)

	v.SetDefault("factor_weights", map[string]float64{
		"political_climate":   0.3,
		"legislation_risk":    0.25,
		"economic_indicators": 0.15,
		"seasonal_factors":    0.2,
		"promotional_events":  0.1,
	})
}

// validateConfig checks configuration values for consistency
func validateConfig(c *Config) error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Log.Level)
	}

	if c.Model.TreeCount <= 0 {
		return fmt.Errorf("model.tree_count must be positive, got %d", c.Model.TreeCount)
	}
	if c.Model.MaxDepth < 0 {
		return fmt.Errorf("model.max_depth must be >= 0, got %d", c.Model.MaxDepth)
	}
	if c.Model.MinSamplesSplit < 2 {
		return fmt.Errorf("model.min_samples_split must be >= 2, got %d", c.Model.MinSamplesSplit)
	}
	if c.Model.MinSamplesLeaf < 1 {
		return fmt.Errorf("model.min_samples_leaf must be >= 1, got %d", c.Model.MinSamplesLeaf)
	}
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast.horizon_days must be positive, got %d", c.Forecast.HorizonDays)
	}
	if c.Forecast.ConfidenceInterval <= 0 || c.Forecast.ConfidenceInterval >= 1 {
		return fmt.Errorf("forecast.confidence_interval must be in (0, 1), got %f", c.Forecast.ConfidenceInterval)
	}

	return nil
}
