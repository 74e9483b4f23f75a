package auth

import (
	"context"

	"github.com/justuscbyok/fitnesstracker/internal/fitness"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user in the context, to be
// picked up by handlers via UserFromContext.
func ContextWithUser(ctx context.Context, user *fitness.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

func UserFromContext(ctx context.Context) (*fitness.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*fitness.User)
	return user, ok
}
