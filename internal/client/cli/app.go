package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/recipebox/internal/client/config"
	"github.com/dmitrijs2005/recipebox/internal/client/localdb"
	"github.com/dmitrijs2005/recipebox/internal/client/notify"
	"github.com/dmitrijs2005/recipebox/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/recipebox/internal/client/services"
	"github.com/dmitrijs2005/recipebox/internal/filex"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/models"
	"github.com/dmitrijs2005/recipebox/internal/platform/auth"
	"github.com/dmitrijs2005/recipebox/internal/platform/objectstore"
	"github.com/dmitrijs2005/recipebox/internal/platform/postgres"
)

type sessionStore interface {
	Start(ctx context.Context)
	Close()
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, username string) error
	Logout(ctx context.Context) error
	User() *models.User
	IsAuthenticated() bool
	IsLoading() bool
	Subscribe(fn func(*models.User)) (unsubscribe func())
}

type catalogStore interface {
	FetchRecipes(ctx context.Context) error
	AddRecipe(ctx context.Context, draft models.RecipeDraft, image *models.ImageUpload) (models.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, patch models.RecipePatch) (models.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
	ToggleBookmark(ctx context.Context, recipeID string) (bool, error)
	LoadBookmarks(ctx context.Context) error

	Recipes() []models.Recipe
	Recipe(id string) (models.Recipe, bool)
	RecipesByCreator(creatorID string) []models.Recipe
	BookmarkedRecipes() []models.Recipe
	IsBookmarked(id string) bool
	Search(query, category string) []models.Recipe
	Categories() []models.Category
}

type toastFeed interface {
	Subscribe(fn func(models.Toast)) (unsubscribe func())
	Close()
}

type App struct {
	config  *config.Config
	log     logging.Logger
	session sessionStore
	catalog catalogStore
	toasts  toastFeed

	// watch runs platform background work until its context is done.
	watch func(ctx context.Context)

	reader *bufio.Reader
	out    io.Writer

	mu      sync.Mutex
	pending []models.Toast

	closers []func() error
}

// NewApp opens the local cache and the platform database, then wires the
// auth service, image storage, notification channel and both stores.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	a := &App{
		config: c,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	if err := filex.EnsureParentDir(c.LocalDBPath); err != nil {
		return nil, fmt.Errorf("prepare local db dir: %w", err)
	}
	local, err := localdb.InitDatabase(ctx, c.LocalDBPath)
	if err != nil {
		log.Error(ctx, "error initializing local database", "path", c.LocalDBPath, "error", err)
		return nil, err
	}
	a.closers = append(a.closers, local.Close)
	cache := metadata.NewSQLiteRepository(local)

	db, err := postgres.Open(ctx, c.DatabaseDSN)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open platform database: %w", err)
	}
	if c.MigrateOnStart {
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			_ = a.Close()
			return nil, fmt.Errorf("migrate platform database: %w", err)
		}
	}
	m := postgres.NewManager(db)
	a.closers = append(a.closers, m.Close)

	authSvc := auth.NewService(m.Users(), m.RefreshTokens(), cache, auth.Options{
		Secret:        []byte(c.JWTSecret),
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
		RefreshMargin: c.RefreshMargin,
		CheckInterval: c.SessionCheckInterval,
		Logger:        log.With("component", "auth"),
	})
	a.watch = authSvc.Run

	storage, err := objectstore.Open(ctx, objectstore.Options{
		Driver: c.StorageDriver,
		S3: objectstore.S3Options{
			Endpoint:      c.S3Endpoint,
			Region:        c.S3Region,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			PublicBaseURL: c.S3PublicBaseURL,
		},
		CloudName:   c.CloudinaryCloudName,
		APIKey:      c.CloudinaryAPIKey,
		APISecret:   c.CloudinaryAPISecret,
		HTTPBaseURL: c.StorageURL,
		HTTPToken:   c.StorageToken,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("open image storage: %w", err)
	}

	ch := notify.NewChannel(c.ToastDuration)
	a.toasts = ch

	session := services.NewSessionStore(authSvc, m.Profiles(), services.SessionOptions{
		Notifier:    ch,
		Logger:      log,
		SettleDelay: c.SettleDelay,
	})
	a.session = session

	a.catalog = services.NewCatalogStore(services.CatalogDeps{
		Recipes:     m.Recipes(),
		Profiles:    m.Profiles(),
		Bookmarks:   m,
		Storage:     storage,
		Local:       cache,
		Identity:    session,
		Notifier:    ch,
		Logger:      log,
		Bucket:      c.ImageBucket,
		Placeholder: c.PlaceholderImage,
	})

	return a, nil
}

// Run restores the session, loads the feed and bookmarks and blocks in the
// REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	unsubToasts := a.toasts.Subscribe(a.queueToast)
	defer unsubToasts()

	if a.watch != nil {
		go a.watch(ctx)
	}

	a.session.Start(ctx)

	_ = a.catalog.FetchRecipes(ctx)
	if err := a.catalog.LoadBookmarks(ctx); err != nil {
		a.log.Warn(ctx, "bookmarks not loaded", "error", err)
	}

	unsubSession := a.session.Subscribe(func(*models.User) {
		if err := a.catalog.LoadBookmarks(ctx); err != nil {
			a.log.Warn(ctx, "bookmarks not reloaded", "error", err)
		}
	})
	defer unsubSession()

	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s.\n", u.DisplayName())
	}
	fmt.Fprintf(a.out, "%d recipes loaded. Type \"help\" for commands.\n", len(a.catalog.Recipes()))
	a.flushToasts()

	runREPL(ctx, a, a.reader)
	return nil
}

// Close releases the stores and the databases in reverse order of opening.
func (a *App) Close() error {
	if a.session != nil {
		a.session.Close()
	}
	if a.toasts != nil {
		a.toasts.Close()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) prompt() string {
	if u := a.session.User(); u != nil {
		return u.DisplayName()
	}
	return "guest"
}

func (a *App) queueToast(t models.Toast) {
	a.mu.Lock()
	a.pending = append(a.pending, t)
	a.mu.Unlock()
}

// flushToasts prints the toasts raised since the last flush.
func (a *App) flushToasts() {
	a.mu.Lock()
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	for _, t := range pending {
		fmt.Fprintln(a.out, renderToast(t))
	}
}
