package service

import (
	"context"

	"pharma-plus/internal/model"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List returns one page of normalised products matching the filter.
	List(ctx context.Context, filter model.ProductFilter) (*model.ProductPage, error)

	// Get resolves a native key or legacy id and returns the normalised product.
	Get(ctx context.Context, rawID string) (*model.ProductView, error)

	// Create validates and stores a new product.
	Create(ctx context.Context, in *model.ProductInput) (*model.ProductView, error)

	// Update applies the supplied fields of in to the resolved product.
	Update(ctx context.Context, rawID string, in *model.ProductInput) (*model.ProductView, error)

	// Delete removes the resolved product.
	Delete(ctx context.Context, rawID string) error
}

// AuthService defines account registration and login.
type AuthService interface {
	// Register creates an account and returns it with a fresh token.
	Register(ctx context.Context, req *model.SignupRequest) (*model.AuthResponse, error)

	// Login verifies credentials and returns the account with a fresh token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
}

// TokenIssuer signs session tokens for accounts.
type TokenIssuer interface {
	Issue(u *model.User) (string, error)
}

// AuthRecorder observes authentication outcomes.
type AuthRecorder interface {
	RecordAuth(action, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuth(string, string) {}
