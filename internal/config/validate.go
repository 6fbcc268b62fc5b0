package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownOperations = []string{"extractMetadata", "getDuration", "getResolution"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFFprobe(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFFprobe() error {
	if strings.TrimSpace(c.FFprobe.Binary) == "" {
		return errors.New("ffprobe.binary must be set")
	}
	if c.FFprobe.TimeoutSeconds <= 0 {
		return errors.New("ffprobe.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if err := ensurePositiveMap(map[string]int{
		"fetch.timeout_seconds": c.Fetch.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Fetch.MaxRedirects < 0 {
		return errors.New("fetch.max_redirects must be >= 0")
	}
	if c.Fetch.MaxBytes <= 0 {
		return errors.New("fetch.max_bytes must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	matched := false
	for _, op := range knownOperations {
		if strings.EqualFold(op, c.Pipeline.Operation) {
			matched = true
			break
		}
	}
	if !matched {
		return fmt.Errorf("pipeline.operation %q must be one of %s", c.Pipeline.Operation, strings.Join(knownOperations, ", "))
	}
	if strings.ContainsAny(c.Pipeline.OutputField, " \t\n") {
		return errors.New("pipeline.output_field must not contain whitespace")
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must be >= 0")
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.HistoryPath) == "" {
		return errors.New("paths.history_path must be set when history.enabled is true")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
