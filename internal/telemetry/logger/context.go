package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	loggerKey   contextKey = "projconf.logger"
	configIDKey contextKey = "projconf.config_id"
	commandKey  contextKey = "projconf.command"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithConfigID tags the context with the ID of the resolved configuration
// it belongs to.
func WithConfigID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, configIDKey, id)
}

// ConfigIDFromContext extracts the configuration ID from context.
func ConfigIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(configIDKey).(string); ok {
		return id
	}
	return ""
}

// WithCommand tags the context with the running CLI command.
func WithCommand(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, commandKey, name)
}

// CommandFromContext extracts the CLI command name from context.
func CommandFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(commandKey).(string); ok {
		return name
	}
	return ""
}

// L is a shorthand for FromContext that also enriches the logger
// with the configuration ID and command name from the context.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)

	if id := ConfigIDFromContext(ctx); id != "" {
		l = l.With("config_id", id)
	}
	if name := CommandFromContext(ctx); name != "" {
		l = l.With("command", name)
	}

	return l
}
