package services

import (
	"context"

	"github.com/togglekeep/togglekeep/internal/logger"
)

// Actor names used when no authenticated principal can be resolved.
const (
	ActorAnonymous = "anonymous"
	ActorUnknown   = "unknown"
)

// Actor is the authenticated identity for the in-flight request. It is
// carried explicitly in the request context, set once at the request
// boundary by the authentication middleware.
type Actor struct {
	UserID   uint
	Username string
	Role     string
}

type principalKey struct{}

// WithActor returns a context carrying actor as the request principal.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, principalKey{}, actor)
}

// WithPrincipal stores an arbitrary principal value. The normal request
// flow uses WithActor; this exists for callers that only hold a name.
func WithPrincipal(ctx context.Context, principal any) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// ActorFrom returns the request actor, if one was authenticated.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(principalKey{}).(Actor)
	return actor, ok
}

// CurrentUsername resolves the actor name for the request: the
// authenticated username, "anonymous" when no principal is present, or
// "unknown" for an unrecognized principal type. It never fails; the
// audit path depends on it always yielding a printable name.
func CurrentUsername(ctx context.Context) string {
	switch p := ctx.Value(principalKey{}).(type) {
	case nil:
		return ActorAnonymous
	case Actor:
		return p.Username
	case string:
		return p
	default:
		logger.Log().Warnf("unrecognized principal type %T in request context", p)
		return ActorUnknown
	}
}
