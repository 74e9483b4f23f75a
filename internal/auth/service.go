package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/justuscbyok/fitnesstracker/pkg"

	"github.com/coocood/freecache"
)

const (
	DefaultTTL       = 30 * time.Minute
	sessionKeyPrefix = "fitness-service-session||"
)

// Service hands out and destroys session tokens. Sessions live in
// freecache, so expiry is handled by the cache TTL and there is no
// separate cleanup pass.
type Service struct {
	cache *freecache.Cache
	ttl   time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	ttl time.Duration,
	cache *freecache.Cache,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		ttl:            ttl,
		cache:          cache,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Login creates a new session bound to the given username and returns
// its token.
func (as *Service) Login(_ context.Context, username string) (string, error) {
	token, err := as.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionKey := []byte(sessionKeyPrefix + token)
	if err := as.cache.Set(sessionKey, []byte(username), int(as.ttl.Seconds())); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// Logout destroys the session and says whether it existed at all.
func (as *Service) Logout(_ context.Context, token string) (bool, error) {
	sessionKey := []byte(sessionKeyPrefix + token)
	return as.cache.Del(sessionKey), nil
}
