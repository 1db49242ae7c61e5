package config

import (
	"fmt"
	"time"
)

// HTTPConfig defines the web server settings.
type HTTPConfig struct {
	Addr               string `json:"addr"`
	ReadTimeoutSeconds int    `json:"read_timeout_seconds"`
	ShutdownSeconds    int    `json:"shutdown_seconds"`
	// Gzip compresses responses when the client accepts it.
	Gzip *bool `json:"gzip"`
}

// SetDefaults applies sane defaults.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadTimeoutSeconds == 0 {
		c.ReadTimeoutSeconds = 10
	}
	if c.ShutdownSeconds == 0 {
		c.ShutdownSeconds = 5
	}
	if c.Gzip == nil {
		enabled := true
		c.Gzip = &enabled
	}
}

// Validate checks mandatory fields.
func (c HTTPConfig) Validate() error {
	if c.ReadTimeoutSeconds < 0 || c.ShutdownSeconds < 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

func (c HTTPConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

func (c HTTPConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownSeconds) * time.Second
}

// GzipEnabled reports whether responses are compressed.
func (c HTTPConfig) GzipEnabled() bool { return c.Gzip == nil || *c.Gzip }

// SessionConfig defines how long an idle form session is kept.
type SessionConfig struct {
	IdleTimeoutSeconds   int    `json:"idle_timeout_seconds"`
	SweepIntervalSeconds int    `json:"sweep_interval_seconds"`
	CookieName           string `json:"cookie_name"`
	SecureCookie         bool   `json:"secure_cookie"`
}

// SetDefaults applies sane defaults.
func (c *SessionConfig) SetDefaults() {
	if c.IdleTimeoutSeconds == 0 {
		c.IdleTimeoutSeconds = 1800
	}
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = 60
	}
	if c.CookieName == "" {
		c.CookieName = "form_session"
	}
}

// Validate checks mandatory fields.
func (c SessionConfig) Validate() error {
	if c.IdleTimeoutSeconds <= 0 {
		return fmt.Errorf("idle_timeout_seconds must be positive")
	}
	if c.SweepIntervalSeconds <= 0 {
		return fmt.Errorf("sweep_interval_seconds must be positive")
	}
	return nil
}

func (c SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func (c SessionConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}
