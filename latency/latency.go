// Package latency provides the access timing model for the emulated
// card.
//
// The stall is executed inline on the register-read path, so whatever
// execution context drives the card blocks for the full duration. The
// sleep function is injectable so tests can substitute a zero-delay
// stand-in without changing protocol logic.
package latency

import (
	"time"
)

// Model applies configured access delays.
type Model struct {
	config *Config
	sleep  func(time.Duration)
}

// Option is a functional option for configuring the Model.
type Option func(*Model)

// WithSleeper replaces the sleep function. Passing a no-op function
// disables all delays.
func WithSleeper(sleep func(time.Duration)) Option {
	return func(m *Model) {
		m.sleep = sleep
	}
}

// NewModel creates a Model with the default latency values.
func NewModel(opts ...Option) *Model {
	return NewModelWithConfig(DefaultConfig(), opts...)
}

// NewModelWithConfig creates a Model with a custom latency configuration.
func NewModelWithConfig(config *Config, opts ...Option) *Model {
	m := &Model{
		config: config,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BlockRead stalls the caller for the configured block-read latency.
// It is invoked once per transfer, before the start token is served.
func (m *Model) BlockRead() {
	if m.config.BlockRead > 0 {
		m.sleep(m.config.BlockRead)
	}
}

// Config returns the current latency configuration.
func (m *Model) Config() *Config {
	return m.config
}
