package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrWalletInUse   = errors.New("wallet address already registered")
	ErrEmailRequired = errors.New("email is required")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByWallet(ctx context.Context, wallet string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
}
