package async

import (
	"context"

	"chatwave/internal/auth"
	"chatwave/pkg/logger"
)

// Ambient is the identity and correlation state captured at submission time.
// It is reinstalled on the worker goroutine for exactly the duration of one
// task; the values die with the task context on every exit path.
type Ambient struct {
	RequestID    string
	Principal    auth.Principal
	hasPrincipal bool
}

// Capture snapshots the ambient request id and authenticated principal from
// ctx. Call it on the submitting goroutine, never on the worker.
func Capture(ctx context.Context) Ambient {
	var a Ambient
	if ctx == nil {
		return a
	}
	if requestID, ok := ctx.Value(logger.RequestIdKey).(string); ok {
		a.RequestID = requestID
	}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		a.Principal = p
		a.hasPrincipal = true
	}
	return a
}

// Install returns ctx enriched with the captured ambient state.
func (a Ambient) Install(ctx context.Context) context.Context {
	if a.RequestID != "" {
		ctx = context.WithValue(ctx, logger.RequestIdKey, a.RequestID)
	}
	if a.hasPrincipal {
		ctx = auth.WithPrincipal(ctx, a.Principal)
		ctx = context.WithValue(ctx, logger.UserIdKey, a.Principal.UserID.String())
	}
	return ctx
}
