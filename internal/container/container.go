// Package container provides dependency injection for the budget-nanny application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"io"

	"pepedou/budget-nanny/internal/bankdata"
	"pepedou/budget-nanny/internal/cache"
	"pepedou/budget-nanny/internal/common"
	"pepedou/budget-nanny/internal/config"
	"pepedou/budget-nanny/internal/logging"
	"pepedou/budget-nanny/internal/matcher"
	"pepedou/budget-nanny/internal/normalizer"
	"pepedou/budget-nanny/internal/pipeline"
	"pepedou/budget-nanny/internal/resolver"
	"pepedou/budget-nanny/internal/store"
	"pepedou/budget-nanny/internal/submission"
)

// Container holds all application dependencies and provides methods to access them.
// Container is immutable after creation.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	normalizer *normalizer.Normalizer
	matcher    *matcher.Matcher
	decisions  *store.DecisionStore
}

// NewContainer creates and wires all application dependencies, logging
// through a logger built from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, config.ConfigureLoggingFromConfig(cfg))
}

// NewContainerWithLogger is NewContainer with an explicit logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	if delim := []rune(cfg.CSV.Delimiter); len(delim) == 1 {
		common.SetDelimiter(delim[0])
	}

	aliases, err := store.LoadAliases(cfg.Store.AliasesFile, logger)
	if err != nil {
		return nil, fmt.Errorf("loading aliases: %w", err)
	}
	norm, err := normalizer.New(aliases)
	if err != nil {
		return nil, fmt.Errorf("invalid alias table %s: %w", cfg.Store.AliasesFile, err)
	}


	logger.Debug("Container initialized successfully",
		logging.F("alias_rules", len(aliases)),
		logging.F(logging.FieldFile, cfg.Store.CacheFile))

	return &Container{
		logger:     logger,
		config:     cfg,
		normalizer: norm,
		matcher:    matcher.New(matcher.WithFloor(cfg.Matcher.Floor)),
		decisions:  store.NewDecisionStore(cfg.Store.CacheFile, logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetNormalizer returns the configured name normalizer.
func (c *Container) GetNormalizer() *normalizer.Normalizer {
	return c.normalizer
}

// GetMatcher returns the configured similarity matcher.
func (c *Container) GetMatcher() *matcher.Matcher {
	return c.matcher
}

// GetDecisionStore returns the persisted decision store.
func (c *Container) GetDecisionStore() *store.DecisionStore {
	return c.decisions
}

// OpenCache loads the decision cache for inspection or editing.
func (c *Container) OpenCache() *cache.DecisionCache {
	return cache.Open(c.decisions, c.logger)
}

// NewPipeline builds a reconciliation pipeline that asks prompter when a
// payee cannot be resolved automatically.
func (c *Container) NewPipeline(prompter resolver.Prompter) (*pipeline.Pipeline, error) {
	policy, err := pipeline.ParseInvalidPolicy(c.config.Pipeline.OnInvalid)
	if err != nil {
		return nil, err
	}
	opts := pipeline.DefaultOptions()
	opts.OnInvalid = policy
	opts.Accounts = c.config.AccountIDs()
	if c.config.Import.Memo != "" {
		opts.Memo = c.config.Import.Memo
	}
	opts.AutoAccept = c.config.Matcher.AutoAccept
	return pipeline.New(c.normalizer, c.matcher, c.decisions, prompter, c.logger, opts), nil
}

// NewSource returns the bank transactions CSV reader for path.
func (c *Container) NewSource(path string) *bankdata.CSVSource {
	return bankdata.NewCSVSource(path, c.logger)
}

// NewPayeeDirectory returns the payee directory reader for path, or for the
// configured payees file when path is empty.
func (c *Container) NewPayeeDirectory(path string) *store.PayeeDirectory {
	if path == "" {
		path = c.config.Store.PayeesFile
	}
	return store.NewPayeeDirectory(path, c.logger)
}

// NewSink returns a CSV sink writing to path, or to out when path is "-".
func (c *Container) NewSink(path string, out io.Writer) *submission.CSVSink {
	if path == "-" {
		return submission.NewWriterSink(out, c.config.Import.PayeeNameLimit, c.logger)
	}
	return submission.NewCSVSink(path, c.config.Import.PayeeNameLimit, c.logger)
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
