package fitness

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
)

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) clone() *User {
	cloned := *u
	return &cloned
}

type CreateUserParams struct {
	Email    string
	Username string
	FullName string
	// already hashed by the caller, the store never sees plaintext passwords
	PasswordHash string
}

// UserPatch is a sparse user update. Nil fields are left untouched.
type UserPatch struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"fullName"`
}
