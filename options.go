package eventhub

import (
	"log/slog"

	"github.com/google/uuid"
)

// Option configures a Hub.
type Option func(*hubConfig)

// hubConfig contains configuration for a hub.
type hubConfig struct {
	// logger receives debug records for registrations and passes.
	logger *slog.Logger

	// observer is notified around every dispatch pass.
	observer Observer

	// newID generates subscription identifiers.
	newID func() string
}

// defaultHubConfig returns the configuration used by a zero-value Hub.
func defaultHubConfig() hubConfig {
	return hubConfig{
		logger:   slog.New(slog.DiscardHandler),
		observer: nopObserver{},
		newID:    uuid.NewString,
	}
}

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(c *hubConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the observer notified around dispatch passes.
// Use Observers to combine several.
func WithObserver(o Observer) Option {
	return func(c *hubConfig) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithIDGenerator replaces the subscription ID generator (random UUIDs by
// default).
func WithIDGenerator(fn func() string) Option {
	return func(c *hubConfig) {
		if fn != nil {
			c.newID = fn
		}
	}
}
