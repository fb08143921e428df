package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/dbx"
	"github.com/dmitrijs2005/recipebox/internal/models"
)

// Manager hands out repositories bound to the pool and runs the
// operations that span several tables in one transaction.
type Manager struct {
	db *sql.DB
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

func (m *Manager) DB() *sql.DB { return m.db }

func (m *Manager) Users() *UsersRepository { return NewUsersRepository(m.db) }

func (m *Manager) RefreshTokens() *RefreshTokenStore {
	return &RefreshTokenStore{RefreshTokensRepository: NewRefreshTokensRepository(m.db), db: m.db}
}

func (m *Manager) Profiles() *ProfilesRepository { return NewProfilesRepository(m.db) }

func (m *Manager) Recipes() *RecipesRepository { return NewRecipesRepository(m.db) }

// ApplyBookmark stores the user's bookmark list and shifts the recipe's like
// counter by likesDelta in a single transaction. It implements
// backend.BookmarkWriter. Removing a bookmark of a recipe that no longer
// exists only updates the list.
func (m *Manager) ApplyBookmark(ctx context.Context, userID, recipeID string, bookmarks []string, likesDelta int) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := NewProfilesRepository(tx).SetBookmarks(ctx, userID, bookmarks); err != nil {
			return fmt.Errorf("bookmarks: %w", err)
		}
		err := NewRecipesRepository(tx).addLikes(ctx, recipeID, likesDelta)
		if err != nil && !(likesDelta < 0 && errors.Is(err, backend.ErrNotFound)) {
			return fmt.Errorf("likes: %w", err)
		}
		return nil
	})
}

func (m *Manager) Close() error { return m.db.Close() }

// RefreshTokenStore adds atomic rotation to RefreshTokensRepository.
type RefreshTokenStore struct {
	*RefreshTokensRepository
	db dbx.TxStarter
}

// Rotate deletes oldToken and stores next in one transaction.
func (s *RefreshTokenStore) Rotate(ctx context.Context, oldToken string, next models.RefreshToken) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewRefreshTokensRepository(tx)
		if err := repo.Delete(ctx, oldToken); err != nil {
			return err
		}
		return repo.Create(ctx, next.UserID, next.Token, next.ExpiresAt)
	})
}
