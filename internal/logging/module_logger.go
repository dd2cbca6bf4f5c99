package logging

import (
	"context"
	"strings"

	"github.com/autophileaozora/smk-kristen5-website-sub003/pkg/interfaces"
)

const (
	rootModule          = "portal"
	contentModule       = "portal.content"
	notificationsModule = "portal.notifications"
	httpModule          = "portal.http"
	bulkModule          = "portal.bulk"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module name is attached as
// a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

// ContentLogger returns the logger namespace reserved for the content service.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// NotificationsLogger returns the logger namespace for notification delivery.
func NotificationsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, notificationsModule)
}

// HTTPLogger returns the logger namespace for the HTTP handlers.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// BulkLogger returns the logger namespace for bulk operations.
func BulkLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, bulkModule)
}

// WithContent enriches logger with the fields every content log line shares.
// Empty values are skipped.
func WithContent(logger interfaces.Logger, contentID, actorID, operation string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(contentID); trimmed != "" {
		fields["content_id"] = trimmed
	}
	if trimmed := strings.TrimSpace(actorID); trimmed != "" {
		fields["actor_id"] = trimmed
	}
	if trimmed := strings.TrimSpace(operation); trimmed != "" {
		fields["operation"] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
