package segment

import (
	"log/slog"

	"github.com/c360/streampump/declarative/expression"
	"github.com/c360/streampump/metric"
	"github.com/c360/streampump/pipeline"
)

// App provides what lookup and processor factories need from the running
// application.
type App struct {
	Service         *pipeline.Service       // Running pipelines, lookups and connections
	Expressions     *expression.Registry    // Expression registry (nil selects the default registry)
	MetricsRegistry *metric.MetricsRegistry // Platform metrics (can be nil)
	Logger          *slog.Logger            // Structured logger (can be nil, defaults to slog.Default())
}

// GetLogger returns the configured logger or a default logger if none is provided
func (a *App) GetLogger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns a logger configured with component context
func (a *App) GetLoggerWithComponent(componentName string) *slog.Logger {
	return a.GetLogger().With("component", componentName)
}

// GetExpressions returns the configured expression registry or the default one.
func (a *App) GetExpressions() *expression.Registry {
	if a.Expressions != nil {
		return a.Expressions
	}
	return expression.DefaultRegistry()
}
