package fitness

import (
	"context"
	"sort"

	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"
)

func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (user *User, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.createUser")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, u := range s.users {
		if u.Username == params.Username {
			return nil, ErrUsernameTaken
		}
	}
	for _, u := range s.users {
		if u.Email == params.Email {
			return nil, ErrEmailTaken
		}
	}

	newUser := &User{
		ID:        s.nextUserID,
		Email:     params.Email,
		Username:  params.Username,
		FullName:  params.FullName,
		IsActive:  true,
		CreatedAt: s.now(),
	}

	s.users[newUser.ID] = newUser
	s.passwordHashes[params.Username] = params.PasswordHash

	// every user starts with empty stats
	s.stats[newUser.ID] = &UserStats{
		UserID:      newUser.ID,
		LastUpdated: s.now(),
	}

	s.nextUserID++

	return newUser.clone(), nil
}

func (s *Store) GetUser(ctx context.Context, id int) (*User, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getUser")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.clone(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getUserByUsername")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return user.clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.getUserByEmail")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			return user.clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

// ListUsers returns all users ordered by id, i.e. in registration order.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.listUsers")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *user.clone())
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})

	return users, nil
}

// UpdateUser applies a sparse patch to the user. The password hash
// stays keyed by the registration-time username even when the username
// changes.
func (s *Store) UpdateUser(ctx context.Context, id int, patch UserPatch) (user *User, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.updateUser")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	if patch.Email != nil {
		current.Email = *patch.Email
	}
	if patch.Username != nil {
		current.Username = *patch.Username
	}
	if patch.FullName != nil {
		current.FullName = *patch.FullName
	}

	return current.clone(), nil
}

// DeleteUser removes the user, its password hash and its stats. The
// user's workouts and progress logs are left in place.
func (s *Store) DeleteUser(ctx context.Context, id int) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.deleteUser")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	user, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}

	delete(s.users, id)
	delete(s.passwordHashes, user.Username)
	delete(s.stats, id)

	return nil
}

// UserPasswordHash returns the stored password hash for the username
// used at registration time.
func (s *Store) UserPasswordHash(ctx context.Context, username string) (string, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "store.userPasswordHash")
	defer span.End()

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	hash, ok := s.passwordHashes[username]
	if !ok {
		return "", ErrUserNotFound
	}
	return hash, nil
}
