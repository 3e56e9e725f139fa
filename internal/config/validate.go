package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateTimeline(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEngine() error {
	if c.Engine.TimeoutSeconds < 0 {
		return errors.New("engine.timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateExport() error {
	if err := c.ExportDefaults().Validate(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

func (c *Config) validateTimeline() error {
	if c.Timeline.MinLanes < 1 {
		return errors.New("timeline.min_lanes must be at least 1")
	}
	if c.Timeline.MaxLanes < c.Timeline.MinLanes {
		return fmt.Errorf("timeline.max_lanes (%d) must be >= timeline.min_lanes (%d)", c.Timeline.MaxLanes, c.Timeline.MinLanes)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeoutSeconds < 0 {
		return errors.New("notifications.request_timeout_seconds must be positive")
	}
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	u, err := url.Parse(topic)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
