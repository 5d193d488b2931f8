package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"nexsort/internal/category"
	"nexsort/internal/config"
	"nexsort/internal/history"
	"nexsort/internal/logging"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verboseFlag: verboseFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger: the log file always, stderr when
// --verbose is set. The console stays free for tables and progress output.
func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	outputs := []string{filepath.Join(cfg.Paths.LogDir, "nexsort.log")}
	if c.verboseFlag != nil && *c.verboseFlag {
		outputs = append(outputs, "stderr")
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}

// loadMapping resolves the category mapping: an explicit flag path wins over
// the configured file. The mapping is always usable. warn is non-nil when a
// configured file existed but could not be read or parsed and the built-in
// defaults were substituted; err is fatal and means no mapping was resolved.
func (c *commandContext) loadMapping(flagPath string) (mapping *category.Mapping, warn, err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	path := strings.TrimSpace(flagPath)
	if path == "" {
		path = cfg.Paths.CategoryFile
	} else {
		expanded, expandErr := config.ExpandPath(path)
		if expandErr != nil {
			return nil, nil, expandErr
		}
		path = expanded
	}
	mapping, warn = category.Load(path)
	return mapping, warn, nil
}

// openLedger opens the history store, degrading to nil with a warning when
// the database is unusable.
func (c *commandContext) openLedger(logger *slog.Logger) *history.Store {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		logging.Default(logger).Warn("history ledger unavailable", logging.Error(err))
		return nil
	}
	return store
}

// openHistory opens the history store for read commands; unlike openLedger a
// failure here is fatal since the command has nothing else to do.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.Paths.HistoryDB)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
