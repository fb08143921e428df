// Package auth is the authentication half of the backend platform. It signs
// users up and in with bcrypt-hashed passwords, issues JWT access tokens with
// rotating server-side refresh tokens, persists the current session in the
// local cache and notifies subscribers about every session change, including
// the refreshes and expiries its watcher performs on its own.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/recipebox/internal/common"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AccountStore interface {
	Create(ctx context.Context, email string, passwordHash []byte) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

type TokenStore interface {
	Create(ctx context.Context, userID, token string, expiresAt time.Time) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	Rotate(ctx context.Context, oldToken string, next models.RefreshToken) error
}

type Options struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RefreshMargin is how long before expiry the watcher refreshes.
	RefreshMargin time.Duration
	// CheckInterval is the watcher tick.
	CheckInterval     time.Duration
	MinPasswordLength int
	HashCost          int
	Logger            logging.Logger
	Now               func() time.Time
}

func (o *Options) applyDefaults() {
	if o.AccessTTL <= 0 {
		o.AccessTTL = 15 * time.Minute
	}
	if o.RefreshTTL <= 0 {
		o.RefreshTTL = 30 * 24 * time.Hour
	}
	if o.RefreshMargin <= 0 {
		o.RefreshMargin = time.Minute
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = 10 * time.Second
	}
	if o.MinPasswordLength <= 0 {
		o.MinPasswordLength = 6
	}
	if o.HashCost <= 0 {
		o.HashCost = bcrypt.DefaultCost
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Service implements backend.Auth.
type Service struct {
	accounts AccountStore
	tokens   TokenStore
	cache    metadata.Repository
	opts     Options
	log      logging.Logger

	mu        sync.Mutex
	session   *backend.Session
	loaded    bool
	listeners map[int]backend.SessionListener
	nextID    int
}

func NewService(accounts AccountStore, tokens TokenStore, cache metadata.Repository, opts Options) *Service {
	opts.applyDefaults()
	return &Service{
		accounts:  accounts,
		tokens:    tokens,
		cache:     cache,
		opts:      opts,
		log:       opts.Logger.With("component", "auth"),
		listeners: make(map[int]backend.SessionListener),
	}
}

// SignUp validates the credentials, creates the account and signs it in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < s.opts.MinPasswordLength {
		return nil, backend.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc, err := s.accounts.Create(ctx, email, hash)
	if err != nil {
		return nil, err
	}

	sess, err := s.issue(ctx, acc)
	if err != nil {
		return nil, err
	}
	s.replace(ctx, sess, backend.EventSignedIn)
	s.log.Info(ctx, "account created", "user_id", acc.ID)
	return sess, nil
}

// SignIn checks the password. Unknown emails and wrong passwords both yield
// backend.ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	acc, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, backend.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, backend.ErrInvalidCredentials
	}

	sess, err := s.issue(ctx, acc)
	if err != nil {
		return nil, err
	}
	s.replace(ctx, sess, backend.EventSignedIn)
	return sess, nil
}

// SignOut drops the local session first and then revokes the refresh token.
// A revocation failure is returned but the session stays dropped.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	prev := s.session
	s.mu.Unlock()

	s.replace(ctx, nil, backend.EventSignedOut)

	if prev == nil {
		return nil
	}
	if err := s.tokens.Delete(ctx, prev.RefreshToken); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// GetSession returns the live session, loading it from the local cache on
// first use. An expired access token is refreshed; a session that cannot be
// refreshed any more is dropped and (nil, nil) is returned.
func (s *Service) GetSession(ctx context.Context) (*backend.Session, error) {
	sess, err := s.current(ctx)
	if err != nil || sess == nil {
		return nil, err
	}

	_, err = ParseToken(sess.AccessToken, s.opts.Secret, s.opts.Now)
	switch {
	case err == nil:
		return copySession(sess), nil
	case errors.Is(err, jwt.ErrTokenExpired):
		refreshed, rErr := s.Refresh(ctx)
		if errors.Is(rErr, backend.ErrSessionExpired) {
			return nil, nil
		}
		return refreshed, rErr
	default:
		s.log.Warn(ctx, "dropping unusable cached session", "error", err)
		s.replace(ctx, nil, backend.EventSignedOut)
		return nil, nil
	}
}

// Refresh rotates the refresh token and mints a new access token. When the
// platform rejects the refresh token the session is dropped, subscribers get
// EventSignedOut and backend.ErrSessionExpired is returned.
func (s *Service) Refresh(ctx context.Context) (*backend.Session, error) {
	s.mu.Lock()
	cur := s.session
	s.mu.Unlock()
	if cur == nil {
		return nil, backend.ErrSessionExpired
	}

	rt, err := s.tokens.Find(ctx, cur.RefreshToken)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, s.expire(ctx, "refresh token unknown")
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	if !s.opts.Now().Before(rt.ExpiresAt) {
		return nil, s.expire(ctx, "refresh token expired")
	}

	acc, err := s.accounts.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, s.expire(ctx, "account gone")
		}
		return nil, fmt.Errorf("load account: %w", err)
	}

	next, err := s.newSession(acc)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Rotate(ctx, cur.RefreshToken, models.RefreshToken{
		Token: next.RefreshToken, UserID: acc.ID, ExpiresAt: s.opts.Now().Add(s.opts.RefreshTTL),
	}); err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.replace(ctx, next, backend.EventTokenRefreshed)
	return copySession(next), nil
}

// OnSessionChange registers fn. Listeners run synchronously on the goroutine
// that caused the change, after the new session is in place.
func (s *Service) OnSessionChange(fn backend.SessionListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) expire(ctx context.Context, reason string) error {
	s.log.Info(ctx, "session lost", "reason", reason)
	s.replace(ctx, nil, backend.EventSignedOut)
	return backend.ErrSessionExpired
}

// current returns the in-memory session, reading the cache once.
func (s *Service) current(ctx context.Context) (*backend.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.session, nil
	}

	var cached backend.Session
	found, err := metadata.GetJSON(ctx, s.cache, metadata.KeySession, &cached)
	if err != nil {
		return nil, fmt.Errorf("load cached session: %w", err)
	}
	s.loaded = true
	if found && cached.AccessToken != "" {
		s.session = &cached
	}
	return s.session, nil
}

// replace installs sess (nil clears), persists it and notifies listeners.
func (s *Service) replace(ctx context.Context, sess *backend.Session, event backend.SessionEvent) {
	s.mu.Lock()
	s.session = sess
	s.loaded = true
	listeners := make([]backend.SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	var err error
	if sess == nil {
		err = s.cache.Delete(ctx, metadata.KeySession)
	} else {
		err = metadata.SetJSON(ctx, s.cache, metadata.KeySession, sess)
	}
	if err != nil {
		s.log.Warn(ctx, "session cache write failed", "error", err)
	}

	change := backend.SessionChange{Event: event, Session: copySession(sess)}
	for _, fn := range listeners {
		fn(change)
	}
}

func (s *Service) issue(ctx context.Context, acc *models.Account) (*backend.Session, error) {
	sess, err := s.newSession(acc)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, acc.ID, sess.RefreshToken, s.opts.Now().Add(s.opts.RefreshTTL)); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return sess, nil
}

func (s *Service) newSession(acc *models.Account) (*backend.Session, error) {
	now := s.opts.Now()
	expires := now.Add(s.opts.AccessTTL)

	access, err := GenerateToken(acc.ID, acc.Email, s.opts.Secret, now, expires)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &backend.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expires,
		UserID:       acc.ID,
		Email:        acc.Email,
	}, nil
}

func validateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", backend.ErrInvalidEmail
	}
	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", backend.ErrInvalidEmail
	}
	return email, nil
}

func copySession(s *backend.Session) *backend.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
