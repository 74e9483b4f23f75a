package auth

import "context"

// LoginTestChecker is a Checker fake for tests in other packages.
type LoginTestChecker struct {
	// LoggedSessions maps session tokens to usernames
	LoggedSessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]string{},
	}
}

func (c *LoginTestChecker) LoggedInUser(_ context.Context, token string) (string, error) {
	username, ok := c.LoggedSessions[token]
	if !ok {
		return "", ErrNotLoggedIn
	}
	return username, nil
}

func (c *LoginTestChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	if _, err := c.LoggedInUser(ctx, token); err != nil {
		return false, nil
	}
	return true, nil
}
