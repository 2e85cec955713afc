// Package stacknav drives a stack of navigation cards: transitions between
// screens, edge swipe back gestures and the headers that follow them.
//
// The core lives in the stack package. This package loads its settings from
// stacknav.toml or stacknav.yaml and builds a configured stack.Container.
package stacknav

import (
	"log/slog"

	"github.com/agiangrant/stacknav/stack"
)

// New validates cfg and creates a container that reports to listener. A nil
// logger discards container logs.
func New(cfg Config, listener stack.Listener, logger *slog.Logger) (*stack.Container, error) {
	sc, err := cfg.StackConfig()
	if err != nil {
		return nil, err
	}
	sc.Logger = logger
	return stack.New(sc, listener)
}

// NewFromFile loads the configuration at path and creates a container.
func NewFromFile(path string, listener stack.Listener, logger *slog.Logger) (*stack.Container, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, listener, logger)
}
