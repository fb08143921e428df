package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
)

// ProfilesRepository implements backend.Profiles.
type ProfilesRepository struct {
	db dbx.DBTX
}

func NewProfilesRepository(db dbx.DBTX) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

func (r *ProfilesRepository) Username(ctx context.Context, userID string) (string, error) {
	var username string
	err := r.db.QueryRowContext(ctx, `SELECT username FROM profiles WHERE id = $1`, userID).Scan(&username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", backend.ErrNotFound
		}
		return "", fmt.Errorf("select profile username: %w", err)
	}
	return username, nil
}

func (r *ProfilesRepository) Create(ctx context.Context, userID, username string) error {
	query :=
		`INSERT INTO profiles (id, username)
		 VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, userID, username); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *ProfilesRepository) Bookmarks(ctx context.Context, userID string) ([]string, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT bookmarks FROM profiles WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, backend.ErrNotFound
		}
		return nil, fmt.Errorf("select profile bookmarks: %w", err)
	}

	ids := []string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ids); err != nil {
			return nil, fmt.Errorf("decode profile bookmarks: %w", err)
		}
	}
	return ids, nil
}

func (r *ProfilesRepository) SetBookmarks(ctx context.Context, userID string, recipeIDs []string) error {
	raw, err := encodeList(recipeIDs)
	if err != nil {
		return fmt.Errorf("encode profile bookmarks: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET bookmarks = $2::jsonb WHERE id = $1`, userID, raw)
	if err != nil {
		return fmt.Errorf("update profile bookmarks: %w", err)
	}
	return requireAffected(res)
}

// encodeList renders a string list as a JSON array; nil becomes "[]".
func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
