package auth

import (
	"context"
	"errors"

	"github.com/coocood/freecache"
)

var ErrNotLoggedIn = errors.New("not logged in")

type LoginChecker struct {
	cache *freecache.Cache
}

func NewLoginChecker(cache *freecache.Cache) *LoginChecker {
	return &LoginChecker{
		cache: cache,
	}
}

// LoggedInUser resolves a session token to the username it was issued
// for. Unknown and expired tokens both come back as ErrNotLoggedIn.
func (lc *LoginChecker) LoggedInUser(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNotLoggedIn
	}

	sessionKey := []byte(sessionKeyPrefix + token)
	username, err := lc.cache.Get(sessionKey)
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}

	return string(username), nil
}

func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	if _, err := lc.LoggedInUser(ctx, token); err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
