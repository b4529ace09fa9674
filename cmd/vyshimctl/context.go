package main

import (
	"fmt"
	"strings"
	"sync"

	"vyshim/internal/config"
	"vyshim/internal/journal"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

// withJournal opens the configured journal for fn. It reports false when the
// journal is disabled.
func (c *commandContext) withJournal(fn func(*journal.Store) error) (bool, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return false, err
	}
	if !cfg.Journal.Enabled {
		return false, nil
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return true, fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()
	return true, fn(store)
}
