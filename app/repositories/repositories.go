// Package repositories holds the MongoDB persistence layer. Each repository
// is an interface plus a Mongo-backed implementation; in-memory versions for
// tests live in repositories/memory.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/lumenera/backend/app/models"
)

var (
	// ErrNotFound is returned when a looked-up document does not exist.
	ErrNotFound = errors.New("repositories: not found")

	// ErrInsufficientStock is returned by DecrementStock when the variant's
	// count is lower than the requested quantity.
	ErrInsufficientStock = errors.New("repositories: insufficient stock")

	// ErrDuplicateEmail is returned by UserRepository.Create on a unique
	// index violation.
	ErrDuplicateEmail = errors.New("repositories: email already registered")
)

// ProductRepository manages the catalog and its per-variant stock ledger.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	All(ctx context.Context) ([]models.Product, error)
	Delete(ctx context.Context, id string) error

	// CheckStock reports whether the variant currently holds at least qty.
	CheckStock(ctx context.Context, id, variant string, qty int) (bool, error)

	// DecrementStock atomically subtracts qty from the variant's count,
	// failing with ErrInsufficientStock rather than going negative.
	DecrementStock(ctx context.Context, id, variant string, qty int) error

	// IncrementStock adds qty back; used to compensate a partial settlement.
	IncrementStock(ctx context.Context, id, variant string, qty int) error
}

// UserRepository manages shopper accounts and their carts.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateCart(ctx context.Context, id string, cart models.CartData) error
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error

	// FindByResetToken resolves a user by an unexpired password-reset token.
	FindByResetToken(ctx context.Context, token string, now time.Time) (models.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// OrderRepository manages order records.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	All(ctx context.Context) ([]models.Order, error)
	// MarkPaid flips the payment flag and reports whether this call did
	// the flipping. false with a nil error means another settlement got
	// there first; callers use that to keep the decrement idempotent.
	MarkPaid(ctx context.Context, id string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error

	// FindUnpaidBefore returns unpaid gateway orders created before cutoff,
	// for the abandoned-order reconciler.
	FindUnpaidBefore(ctx context.Context, method string, cutoff time.Time) ([]models.Order, error)
}
