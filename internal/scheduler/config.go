package scheduler

import (
	"time"
)

// Config controls cleanup intervals and timeouts.
type Config struct {
	RunInterval   time.Duration
	JobTimeout    time.Duration
	RetentionDays int
}

func DefaultConfig() Config {
	return Config{
		RunInterval:   time.Hour,
		JobTimeout:    time.Minute,
		RetentionDays: 90,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = defaults.RetentionDays
	}
	return c
}
