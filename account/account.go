// Package account stores user accounts and implements registration, login
// and account lookup on top of the credential hasher, the token codec and
// the role guard.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/feedback/identity"
)

// ErrDuplicate is returned by Repository.Create when the username is taken.
var ErrDuplicate = errors.New("account: username already exists")

// Account is a registered user. PasswordHash is never serialized.
type Account struct {
	ID           int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string        `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string        `gorm:"not null" json:"-"`
	Email        string        `gorm:"size:255;not null" json:"email"`
	Role         identity.Role `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// TableName keeps the table name used by the existing schema.
func (Account) TableName() string { return "users" }

// Identity returns the identity a token for this account asserts.
func (a *Account) Identity() identity.Identity {
	return identity.Identity{ID: a.ID, Username: a.Username, Role: a.Role}
}

// Repository persists accounts.
type Repository interface {
	// FindByUsername returns nil, nil when no account has the username.
	FindByUsername(ctx context.Context, username string) (*Account, error)
	// FindByID returns nil, nil when the account does not exist.
	FindByID(ctx context.Context, id int64) (*Account, error)
	// Create inserts a and sets its ID. It returns ErrDuplicate when the
	// username is taken and never overwrites an existing account.
	Create(ctx context.Context, a *Account) error
	// List returns all accounts ordered by ID.
	List(ctx context.Context) ([]Account, error)
}
