package tracking

import (
	"fmt"
	"time"
)

const defaultTimeout = 10 * time.Second

// Config holds the automation API credentials for one site.
type Config struct {
	User    string
	Secret  string
	BaseURL string
	Realm   string
	Channel string

	// Debug enables diagnostic logging of validation failures.
	Debug   bool
	Timeout time.Duration
}

func (c Config) empty() bool {
	return c.User == "" && c.Secret == "" && c.BaseURL == "" && c.Realm == "" && c.Channel == ""
}

// Validate reports the first missing required field, checked in the
// order user, secret, base_url, realm, channel.
func (c Config) Validate() error {
	if c.empty() {
		return fmt.Errorf("%w: options were empty", ErrMissingConfig)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"user", c.User},
		{"secret", c.Secret},
		{"base_url", c.BaseURL},
		{"realm", c.Realm},
		{"channel", c.Channel},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s was empty", ErrMissingConfig, f.name)
		}
	}
	return nil
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}
