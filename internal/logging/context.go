package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	intentIDKey  contextKey = "intent_id"
)

// WithSessionID attaches a session id to the context for log enrichment.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// WithIntentID attaches an intent id to the context for log enrichment.
func WithIntentID(ctx context.Context, intentID string) context.Context {
	return context.WithValue(ctx, intentIDKey, intentID)
}

// SessionID retrieves the session id from the context, or "" if absent.
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// IntentID retrieves the intent id from the context, or "" if absent.
func IntentID(ctx context.Context) string {
	if id, ok := ctx.Value(intentIDKey).(string); ok {
		return id
	}
	return ""
}

// Enrich adds session_id/intent_id fields from ctx to logger, for the
// call sites that log from within a request-scoped context.
func Enrich(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	ev := logger.With()
	if sid := SessionID(ctx); sid != "" {
		ev = ev.Str("session_id", sid)
	}
	if iid := IntentID(ctx); iid != "" {
		ev = ev.Str("intent_id", iid)
	}
	return ev.Logger()
}
