// Package requestctx carries request-scoped identity through context.
package requestctx

import (
	"context"
	"strings"
)

type actorIDContextKey struct{}

// WithActorID stores the acting user id in context. Blank ids are ignored.
func WithActorID(ctx context.Context, actorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorIDContextKey{}, actorID)
}

// ActorIDFromContext returns the acting user id, or "" when none was set.
func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(actorIDContextKey{}).(string)
	return value
}
