package repository

import (
	"context"

	"pharma-plus/internal/model"

	"github.com/google/uuid"
)

// Changes maps product column names to their new values for a partial update.
// A nil value clears a nullable column.
type Changes map[string]any

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List returns one page of products matching the filter and the total
	// number of matches across all pages. The filter must be normalised.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error)

	// GetByID retrieves a product by its native key. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByLegacyID retrieves a product by its legacy numeric id. Returns nil when absent.
	GetByLegacyID(ctx context.Context, legacyID int64) (*model.Product, error)

	// GetByName retrieves the oldest product with exactly this name. Returns nil when absent.
	GetByName(ctx context.Context, name string) (*model.Product, error)

	// Create inserts p and fills its generated key and timestamps.
	Create(ctx context.Context, p *model.Product) error

	// Update applies changes to the product with the given key and returns the
	// stored result. Returns model.ErrNotFound when no product matches.
	Update(ctx context.Context, id uuid.UUID, changes Changes) (*model.Product, error)

	// Delete removes the product with the given key.
	// Returns model.ErrNotFound when no product matches.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts u and fills its generated key and timestamps.
	Create(ctx context.Context, u *model.User) error

	// GetByEmail retrieves an account by normalised email. Returns nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByUsername retrieves an account by normalised username. Returns nil when absent.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}
