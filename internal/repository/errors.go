package repository

import (
	"errors"

	"pharma-plus/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Unique index names from the migrations.
const (
	constraintLegacyID = "products_legacy_id_key"
	constraintEmail    = "users_email_key"
	constraintUsername = "users_username_key"
)

// translateUnique maps a unique-index violation onto the matching conflict
// error. Other errors are returned unchanged.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case constraintLegacyID:
		return model.ErrLegacyIDTaken
	case constraintEmail:
		return model.ErrEmailTaken
	case constraintUsername:
		return model.ErrUsernameTaken
	default:
		return err
	}
}

func isConflict(err error) bool {
	return model.KindOf(err) == model.KindConflict
}
