package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

// Checker answers whether a session token belongs to a logged in user,
// and whose session it is.
type Checker interface {
	LoggedInUser(ctx context.Context, token string) (string, error)
	IsLogged(ctx context.Context, token string) (bool, error)
}
