// Package root contains the root command for the application
package root

import (
	"fmt"

	"pepedou/budget-nanny/internal/config"
	"pepedou/budget-nanny/internal/container"
	"pepedou/budget-nanny/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
}

var (
	// Log is the shared logger instance for commands
	Log = logging.GetLogger()

	// AppConfig is the configuration loaded before any subcommand runs
	AppConfig *config.Config

	// AppContainer wires the application components for subcommands
	AppContainer *container.Container

	// SharedFlags holds the persistent flag values
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "budget-nanny",
		Short: "A CLI tool to reconcile bank transactions with a budget's payees.",
		Long: `budget-nanny resolves the free-text payee of each bank transaction to a
canonical payee of your budget, asking you only when it cannot decide, and gives
every transaction a deterministic import id so re-imports are recognised as duplicates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to budget-nanny!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				if err := AppContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default: config.yaml in $HOME/.budget-nanny, .budget-nanny or .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text or json)")
}

// Initialize loads configuration, applies flag overrides and builds the container.
func Initialize() error {
	config.LoadEnv(Log)

	cfg, err := config.LoadConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.LogFormat != "" {
		cfg.Log.Format = SharedFlags.LogFormat
	}

	Log = config.ConfigureLoggingFromConfig(cfg)
	c, err := container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	AppConfig = cfg
	AppContainer = c
	return nil
}

// GetLogger returns the configured logger
func GetLogger() logging.Logger {
	return Log
}

// GetConfig returns the loaded configuration, or nil before initialization
func GetConfig() *config.Config {
	return AppConfig
}

// GetContainer returns the application container, or nil before initialization
func GetContainer() *container.Container {
	return AppContainer
}
