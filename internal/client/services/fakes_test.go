package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/recipebox/internal/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var errBoom = errors.New("boom")

// ---- notifier ----

type toastRec struct {
	Text    string
	IsError bool
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []toastRec
}

func (f *fakeNotifier) Success(text string) { f.add(text, false) }
func (f *fakeNotifier) Error(text string)   { f.add(text, true) }

func (f *fakeNotifier) add(text string, isErr bool) {
	f.mu.Lock()
	f.toasts = append(f.toasts, toastRec{Text: text, IsError: isErr})
	f.mu.Unlock()
}

func (f *fakeNotifier) all() []toastRec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.toasts)
}

func (f *fakeNotifier) requireOne(t *testing.T, isErr bool) toastRec {
	t.Helper()
	all := f.all()
	require.Len(t, all, 1, "exactly one toast per action")
	require.Equal(t, isErr, all[0].IsError)
	return all[0]
}

func (f *fakeNotifier) reset() {
	f.mu.Lock()
	f.toasts = nil
	f.mu.Unlock()
}

// ---- auth ----

type fakeAuth struct {
	mu        sync.Mutex
	listeners map[int]backend.SessionListener
	nextID    int

	SignInRet  *backend.Session
	SignInErr  error
	SignUpRet  *backend.Session
	SignUpErr  error
	SignOutErr error
	SessionRet *backend.Session
	SessionErr error

	LastEmail    string
	LastPassword string
	SignOuts     int
	// EmitOnSignIn mimics the platform firing SIGNED_IN during the call.
	EmitOnSignIn bool
}

func newFakeAuth() *fakeAuth { return &fakeAuth{listeners: map[int]backend.SessionListener{}} }

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	f.LastEmail, f.LastPassword = email, password
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	if f.EmitOnSignIn {
		f.Emit(backend.SessionChange{Event: backend.EventSignedIn, Session: f.SignUpRet})
	}
	return f.SignUpRet, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	f.LastEmail, f.LastPassword = email, password
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	if f.EmitOnSignIn {
		f.Emit(backend.SessionChange{Event: backend.EventSignedIn, Session: f.SignInRet})
	}
	return f.SignInRet, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.SignOuts++
	return f.SignOutErr
}

func (f *fakeAuth) GetSession(ctx context.Context) (*backend.Session, error) {
	return f.SessionRet, f.SessionErr
}

func (f *fakeAuth) OnSessionChange(fn backend.SessionListener) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeAuth) Emit(change backend.SessionChange) {
	f.mu.Lock()
	ls := make([]backend.SessionListener, 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(change)
	}
}

func (f *fakeAuth) listenerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

// ---- profiles ----

type fakeProfiles struct {
	mu        sync.Mutex
	names     map[string]string
	bookmarks map[string][]string

	UsernameErr     error
	CreateErr       error
	BookmarksErr    error
	SetBookmarksErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{names: map[string]string{}, bookmarks: map[string][]string{}}
}

func (f *fakeProfiles) Username(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UsernameErr != nil {
		return "", f.UsernameErr
	}
	n, ok := f.names[userID]
	if !ok {
		return "", backend.ErrNotFound
	}
	return n, nil
}

func (f *fakeProfiles) Create(ctx context.Context, userID, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.names[userID] = username
	return nil
}

func (f *fakeProfiles) Bookmarks(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BookmarksErr != nil {
		return nil, f.BookmarksErr
	}
	return slices.Clone(f.bookmarks[userID]), nil
}

func (f *fakeProfiles) SetBookmarks(ctx context.Context, userID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetBookmarksErr != nil {
		return f.SetBookmarksErr
	}
	f.bookmarks[userID] = slices.Clone(ids)
	return nil
}

// ---- recipes ----

type fakeRecipes struct {
	mu    sync.Mutex
	rows  []models.Recipe
	seq   int
	calls []string

	ListErr     error
	InsertErr   error
	UpdateErr   error
	DeleteErr   error
	LikesErr    error
	SetLikesErr error

	LastInsert models.NewRecipe
	LastPatch  models.RecipePatch
}

func (f *fakeRecipes) record(op string) { f.calls = append(f.calls, op) }

func (f *fakeRecipes) List(ctx context.Context) ([]models.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]models.Recipe, len(f.rows))
	for i, r := range f.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

func (f *fakeRecipes) Insert(ctx context.Context, r models.NewRecipe) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("insert")
	if f.InsertErr != nil {
		return "", f.InsertErr
	}
	f.seq++
	f.LastInsert = r
	id := "srv-" + strconv.Itoa(f.seq)
	f.rows = append([]models.Recipe{{
		ID: id, Title: r.Title, Category: r.Category, CookingTime: r.CookingTime, ImageURL: r.ImageURL,
		Ingredients: r.Ingredients, Steps: r.Steps, CreatorID: r.CreatorID, CreatorName: "server:" + r.CreatorName,
	}}, f.rows...)
	return id, nil
}

func (f *fakeRecipes) Update(ctx context.Context, id string, p models.RecipePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("update")
	f.LastPatch = p
	return f.UpdateErr
}

func (f *fakeRecipes) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete")
	return f.DeleteErr
}

func (f *fakeRecipes) Likes(ctx context.Context, id string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("likes")
	if f.LikesErr != nil {
		return 0, f.LikesErr
	}
	for _, r := range f.rows {
		if r.ID == id {
			return r.Likes, nil
		}
	}
	return 0, backend.ErrNotFound
}

func (f *fakeRecipes) SetLikes(ctx context.Context, id string, likes int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("set_likes")
	if f.SetLikesErr != nil {
		return f.SetLikesErr
	}
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Likes = likes
		}
	}
	return nil
}

// ---- bookmark writer ----

type fakeBookmarkWriter struct {
	Err       error
	LastUser  string
	LastID    string
	LastList  []string
	LastDelta int
}

func (f *fakeBookmarkWriter) ApplyBookmark(ctx context.Context, userID, recipeID string, bookmarks []string, delta int) error {
	f.LastUser, f.LastID, f.LastList, f.LastDelta = userID, recipeID, slices.Clone(bookmarks), delta
	return f.Err
}

// ---- storage ----

type fakeStorage struct {
	Err         error
	LastBucket  string
	LastPath    string
	LastType    string
	LastContent []byte
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) error {
	f.LastBucket, f.LastPath, f.LastType = bucket, path, contentType
	f.LastContent, _ = io.ReadAll(body)
	return f.Err
}

func (f *fakeStorage) PublicURL(bucket, path string) string {
	return "https://cdn.test/" + bucket + "/" + path
}

// ---- identity ----

type fixedIdentity struct{ u *models.User }

func (f *fixedIdentity) User() *models.User {
	if f.u == nil {
		return nil
	}
	c := *f.u
	return &c
}

// ---- local cache ----

func setupLocal(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return metadata.NewSQLiteRepository(db)
}
