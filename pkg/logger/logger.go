// Package logger builds the structured loggers used across pynosql's
// packages. Every logger carries a "component" field naming what it was
// built for; pynosql.New builds a single one, tagged with the service name,
// and shares it across storage, the index, and vacuum.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production-configured, sugared logger tagged with
// component. Callers that want silence (tests, library embedding without
// logging) should pass zap.NewNop().Sugar() to options.WithLogger instead.
func New(component string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a malformed
		// config, which this package never produces; fall back to a
		// no-op logger rather than panicking callers.
		return zap.NewNop().Sugar()
	}

	return log.Sugar().With("component", component)
}
