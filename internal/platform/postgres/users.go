package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/models"
)

type UsersRepository struct {
	db dbx.DBTX
}

func NewUsersRepository(db dbx.DBTX) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create inserts a new account. Emails are stored lower-cased; a clash
// yields backend.ErrUserAlreadyRegistered.
func (r *UsersRepository) Create(ctx context.Context, email string, passwordHash []byte) (*models.Account, error) {
	query :=
		`INSERT INTO users (email, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at`

	acc := &models.Account{Email: normalizeEmail(email), PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, query, acc.Email, passwordHash).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, backend.ErrUserAlreadyRegistered
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return acc, nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, email, password_hash, created_at FROM users
		 WHERE email = $1`

	acc := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, normalizeEmail(email)).
		Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return acc, nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, email, password_hash, created_at FROM users
		 WHERE id = $1`

	acc := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&acc.ID, &acc.Email, &acc.PasswordHash, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return acc, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
