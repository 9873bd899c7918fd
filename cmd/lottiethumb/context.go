package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/ivlev/lottiethumb/internal/config"
	"github.com/ivlev/lottiethumb/internal/engine"
	"github.com/ivlev/lottiethumb/internal/logging"
)

// configEnv names the config file when --config is not given.
const configEnv = "LOTTIETHUMB_CONFIG"

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	logger     *slog.Logger
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		path := os.Getenv(configEnv)
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg := config.NewDefaultConfig()
		if err := config.LoadOptional(path, cfg); err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && *c.logLevelFlag != "" {
			cfg.Log.Level = *c.logLevelFlag
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

func (c *commandContext) thumbnailer() (*engine.Thumbnailer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return engine.New(cfg, c.logger)
}
