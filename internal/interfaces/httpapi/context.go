package httpapi

import (
	"context"

	"github.com/riskibarqy/bolao-sca/internal/domain/user"
	"github.com/riskibarqy/bolao-sca/internal/usecase"
)

type contextKey string

const principalContextKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(user.Principal)
	return p, ok
}

// actorFromContext returns the zero Actor for anonymous requests; usecases reject it.
func actorFromContext(ctx context.Context) usecase.Actor {
	p, ok := principalFromContext(ctx)
	if !ok {
		return usecase.Actor{}
	}
	return usecase.Actor{UserID: p.UserID, Admin: p.Admin}
}
