// Package auth implements user registration, login and profile editing
// over the users collection.
package auth

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. The bcrypt hash never leaves the
// package through JSON.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email          string             `bson:"email" json:"email"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string
	TokenType   string
	User        User
}

// EditParams carries a profile update. Empty optional fields are left
// unchanged.
type EditParams struct {
	Email           string
	CurrentPassword string
	FirstName       string
	LastName        string
	NewPassword     string
}

var (
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("auth: email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so login failures are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrNotFound means no account exists for the email.
	ErrNotFound = errors.New("auth: user not found")

	// ErrWrongPassword means the current password check failed; no
	// fields were changed.
	ErrWrongPassword = errors.New("auth: wrong password")
)

// UserStore abstracts the users collection so the service can be tested
// against an in-memory double.
type UserStore interface {
	// FindByEmail returns the user or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Insert stores a new user.
	Insert(ctx context.Context, u *User) error
	// Update replaces the stored fields for the user with this email.
	// Returns ErrNotFound when the email is unknown.
	Update(ctx context.Context, email string, u *User) error
}
