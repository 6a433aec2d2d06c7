// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"os"
	"strings"

	"pepedou/budget-nanny/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every configuration environment variable, e.g. NANNY_LOG_LEVEL.
const EnvPrefix = "NANNY"

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// CSVConfig configures CSV input and output.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// StoreConfig locates the files kept between runs.
type StoreConfig struct {
	CacheFile   string `mapstructure:"cache_file" yaml:"cache_file"`
	AliasesFile string `mapstructure:"aliases_file" yaml:"aliases_file"`
	PayeesFile  string `mapstructure:"payees_file" yaml:"payees_file"`
}

// MatcherConfig holds the similarity thresholds.
type MatcherConfig struct {
	Floor      int `mapstructure:"floor" yaml:"floor"`
	AutoAccept int `mapstructure:"auto_accept" yaml:"auto_accept"`
}

// PipelineConfig tunes a reconciliation run.
type PipelineConfig struct {
	OnInvalid string `mapstructure:"on_invalid" yaml:"on_invalid"`
}

// ImportConfig shapes the submitted records.
type ImportConfig struct {
	Memo           string `mapstructure:"memo" yaml:"memo"`
	PayeeNameLimit int    `mapstructure:"payee_name_limit" yaml:"payee_name_limit"`
}

// AccountMapping links a bank account name to a budget account id.
type AccountMapping struct {
	Name string `mapstructure:"name" yaml:"name"`
	ID   string `mapstructure:"id" yaml:"id"`
}

// Config represents the complete application configuration
type Config struct {
	Log      LogConfig        `mapstructure:"log" yaml:"log"`
	CSV      CSVConfig        `mapstructure:"csv" yaml:"csv"`
	Store    StoreConfig      `mapstructure:"store" yaml:"store"`
	Matcher  MatcherConfig    `mapstructure:"matcher" yaml:"matcher"`
	Pipeline PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline"`
	Import   ImportConfig     `mapstructure:"import" yaml:"import"`
	Accounts []AccountMapping `mapstructure:"accounts" yaml:"accounts"`
}

// AccountIDs returns the account mappings as a lookup table.
func (c *Config) AccountIDs() map[string]string {
	ids := make(map[string]string, len(c.Accounts))
	for _, a := range c.Accounts {
		ids[a.Name] = a.ID
	}
	return ids
}

// LoadConfig loads configuration from defaults, a config file and NANNY_*
// environment variables, in increasing precedence. An empty configFile
// searches config.yaml in the standard locations.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.budget-nanny")
		v.AddConfigPath(".budget-nanny")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if configFile != "" {
				return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
			}
			fmt.Fprintf(os.Stderr, "Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("store.cache_file", "payee_cache.yaml")
	v.SetDefault("store.aliases_file", "aliases.yaml")
	v.SetDefault("store.payees_file", "payees.yaml")

	v.SetDefault("matcher.floor", 69)
	v.SetDefault("matcher.auto_accept", 90)

	v.SetDefault("pipeline.on_invalid", "skip")

	v.SetDefault("import.memo", "Imported by Budget Nanny")
	v.SetDefault("import.payee_name_limit", 50)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	if config.Store.CacheFile == "" {
		return fmt.Errorf("store.cache_file must not be empty")
	}

	if config.Matcher.Floor < 1 || config.Matcher.Floor > 100 {
		return fmt.Errorf("matcher.floor must be between 1 and 100, got: %d", config.Matcher.Floor)
	}
	if config.Matcher.AutoAccept < config.Matcher.Floor || config.Matcher.AutoAccept > 100 {
		return fmt.Errorf("matcher.auto_accept must be between matcher.floor (%d) and 100, got: %d",
			config.Matcher.Floor, config.Matcher.AutoAccept)
	}

	switch strings.ToLower(config.Pipeline.OnInvalid) {
	case "skip", "abort":
	default:
		return fmt.Errorf("pipeline.on_invalid must be 'skip' or 'abort', got: %s", config.Pipeline.OnInvalid)
	}

	if config.Import.PayeeNameLimit < 0 {
		return fmt.Errorf("import.payee_name_limit must not be negative, got: %d", config.Import.PayeeNameLimit)
	}

	seen := make(map[string]bool, len(config.Accounts))
	for _, a := range config.Accounts {
		if a.Name == "" || a.ID == "" {
			return fmt.Errorf("accounts entries need both name and id, got: %+v", a)
		}
		if seen[a.Name] {
			return fmt.Errorf("account %q is mapped more than once", a.Name)
		}
		seen[a.Name] = true
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from the Config struct
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(strings.ToLower(config.Log.Level), strings.ToLower(config.Log.Format))
}
