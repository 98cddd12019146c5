package utils

import (
	"go.uber.org/zap"
)

// NewLogger returns a development (human readable, debug level) logger if debug is set,
// otherwise a JSON production logger.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
