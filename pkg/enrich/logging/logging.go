// Package logging builds the structured logger used across the service.
package logging

import "go.uber.org/zap"

// New creates a zap logger. Production JSON encoding by default; development
// switches to console encoding with colored levels. An unknown level falls
// back to info.
func New(level string, development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		parsed = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = parsed

	return cfg.Build()
}
