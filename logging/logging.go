package logging

import "go.uber.org/zap"

// New returns a sugared logger named after component. It hangs off the global
// logger, so call it after config.New has replaced the globals.
func New(component string) *zap.SugaredLogger {
	return zap.S().Named(component)
}
