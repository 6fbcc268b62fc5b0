package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidmeta/internal/config"
	"vidmeta/internal/history"
	"vidmeta/internal/logging"
	"vidmeta/internal/media/ffprobe"
	"vidmeta/internal/pipeline"
	"vidmeta/internal/source"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) loggerValue() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonRequested() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// openHistory returns nil when history is disabled.
func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// newRunner wires the resolver, ffprobe client, and optional history store.
// The returned closer releases the history store.
func (c *commandContext) newRunner(opts pipeline.Options) (*pipeline.Runner, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.loggerValue()
	if err != nil {
		return nil, nil, err
	}

	resolver := source.NewResolverFromConfig(cfg, logger)
	prober := ffprobe.New(cfg.FFprobeBinary(), cfg.FFprobeTimeout())

	var runnerOpts []pipeline.RunnerOption
	closer := func() {}
	store, err := c.openHistory()
	if err != nil {
		return nil, nil, err
	}
	if store != nil {
		runnerOpts = append(runnerOpts, pipeline.WithRecorder(store))
		closer = func() { _ = store.Close() }
	}
	return pipeline.NewRunner(resolver, prober, opts, logger, runnerOpts...), closer, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
