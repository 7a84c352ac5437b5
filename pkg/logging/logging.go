// Package logging constructs the single process-wide zap logger (spec
// §9: "no process-wide singletons" for business state, but the logger
// itself is an ambient facility cloned via .With, matching the teacher's
// zap usage).
package logging

import "go.uber.org/zap"

// New builds a production zap logger, or a development one when debug
// is set (human-readable, more verbose).
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
