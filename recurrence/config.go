package recurrence

import (
	"io"
	"log/slog"
)

// EngineConfig holds configuration options for the recurrence engine
type EngineConfig struct {
	// Logger receives debug output when an expansion fails. Nil discards it.
	Logger *slog.Logger

	// MaxIterations bounds the number of dates examined per expansion (0 = unlimited).
	// Mode-A rules count every scanned day, other rules every cursor position.
	MaxIterations int
}

// DefaultEngineConfig expands without limits, exactly as the rule dictates
var DefaultEngineConfig = EngineConfig{}

// ServiceEngineConfig caps work per request for engines serving untrusted input.
// A million steps covers a daily rule across more than two thousand years.
var ServiceEngineConfig = EngineConfig{
	MaxIterations: 1_000_000,
}

// NewEngineWithConfig creates a new recurrence engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxIterations := config.MaxIterations
	if maxIterations < 0 {
		maxIterations = 0
	}

	return &Engine{
		logger:        logger,
		maxIterations: maxIterations,
	}
}
