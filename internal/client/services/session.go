package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/backend"
	"github.com/dmitrijs2005/recipebox/internal/logging"
	"github.com/dmitrijs2005/recipebox/internal/models"
)

// DefaultSettleDelay keeps IsLoading up briefly after the initial session
// check so the first render does not flash the signed-out view.
const DefaultSettleDelay = 300 * time.Millisecond

type SessionOptions struct {
	Notifier Notifier
	Logger   logging.Logger
	// SettleDelay: zero means DefaultSettleDelay, negative disables it.
	SettleDelay time.Duration
}

// SessionStore is the single source of truth for the logged-in user.
type SessionStore struct {
	auth     backend.Auth
	profiles backend.Profiles
	notifier Notifier
	log      logging.Logger
	settle   time.Duration

	mu        sync.RWMutex
	user      *models.User
	loading   int
	// signingIn counts Login and Register calls in flight; they set the
	// user themselves, so the platform's SIGNED_IN echo is skipped.
	signingIn int
	observers map[int]func(*models.User)
	nextID    int
	baseCtx   context.Context

	unsubscribe func()
	closeOnce   sync.Once
}

func NewSessionStore(auth backend.Auth, profiles backend.Profiles, o SessionOptions) *SessionStore {
	if o.Notifier == nil {
		o.Notifier = nopNotifier{}
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	switch {
	case o.SettleDelay == 0:
		o.SettleDelay = DefaultSettleDelay
	case o.SettleDelay < 0:
		o.SettleDelay = 0
	}
	return &SessionStore{
		auth:      auth,
		profiles:  profiles,
		notifier:  o.Notifier,
		log:       o.Logger.With("component", "session"),
		settle:    o.SettleDelay,
		observers: make(map[int]func(*models.User)),
		baseCtx:   context.Background(),
	}
}

// Start subscribes to platform session changes and restores the persisted
// session. IsLoading stays true until the check and the settle delay are
// over.
func (s *SessionStore) Start(ctx context.Context) {
	s.beginLoading()
	defer s.endLoading()

	s.mu.Lock()
	s.baseCtx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	unsubscribe := s.auth.OnSessionChange(s.onSessionChange)
	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	sess, err := s.auth.GetSession(ctx)
	if err != nil {
		s.log.Warn(ctx, "initial session check failed", "error", err)
	}
	if sess != nil {
		s.setUser(s.resolveUser(ctx, sess))
	} else {
		s.setUser(nil)
	}

	if s.settle > 0 {
		t := time.NewTimer(s.settle)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
}

// Close stops listening to session changes. Safe to call more than once.
func (s *SessionStore) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		unsubscribe := s.unsubscribe
		s.unsubscribe = nil
		s.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
	})
}

func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	s.beginLoading()
	defer s.endLoading()
	s.beginSignIn()
	defer s.endSignIn()

	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		authErr := newAuthError(err)
		s.log.Info(ctx, "login failed", "kind", authErr.Kind.String())
		s.notifier.Error(Message(authErr))
		return authErr
	}

	s.setUser(s.resolveUser(ctx, sess))
	s.notifier.Success(MsgLoginSuccess)
	return nil
}

// Register creates the account and its profile record, then signs in.
// A profile failure leaves the user signed in but is reported.
func (s *SessionStore) Register(ctx context.Context, email, password, username string) error {
	s.beginLoading()
	defer s.endLoading()
	s.beginSignIn()
	defer s.endSignIn()

	sess, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		authErr := newAuthError(err)
		s.log.Info(ctx, "registration failed", "kind", authErr.Kind.String())
		s.notifier.Error(Message(authErr))
		return authErr
	}

	user := &models.User{ID: sess.UserID, Email: sess.Email, Username: username}
	if s.profiles != nil {
		if err := s.profiles.Create(ctx, sess.UserID, username); err != nil {
			s.setUser(user)
			s.log.Error(ctx, "profile create failed", "user_id", sess.UserID, "error", err)
			werr := &RemoteWriteError{Op: "create profile", Err: err}
			s.notifier.Error(Message(werr))
			return werr
		}
	}

	s.setUser(user)
	s.notifier.Success(MsgRegisterSuccess)
	return nil
}

// Logout always clears the user, even when the platform sign-out fails.
func (s *SessionStore) Logout(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	s.setUser(nil)
	if err != nil {
		s.log.Error(ctx, "sign out failed", "error", err)
		werr := &RemoteWriteError{Op: "sign out", Err: err}
		s.notifier.Error(Message(werr))
		return werr
	}
	s.notifier.Success(MsgLogoutSuccess)
	return nil
}

// User returns a copy of the current user, or nil.
func (s *SessionStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *SessionStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Subscribe calls fn with the new user (nil when signed out) after every
// identity change, on the goroutine that made the change.
func (s *SessionStore) Subscribe(fn func(*models.User)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *SessionStore) onSessionChange(change backend.SessionChange) {
	if change.Session == nil {
		s.setUser(nil)
		return
	}
	s.mu.RLock()
	ctx := s.baseCtx
	echo := change.Event == backend.EventSignedIn && s.signingIn > 0
	s.mu.RUnlock()
	if echo {
		return
	}
	s.setUser(s.resolveUser(ctx, change.Session))
}

func (s *SessionStore) resolveUser(ctx context.Context, sess *backend.Session) *models.User {
	u := &models.User{ID: sess.UserID, Email: sess.Email}
	if s.profiles == nil {
		return u
	}
	name, err := s.profiles.Username(ctx, sess.UserID)
	switch {
	case err == nil:
		u.Username = name
	case errors.Is(err, backend.ErrNotFound):
	default:
		s.log.Warn(ctx, "username lookup failed", "user_id", sess.UserID, "error", err)
	}
	// keep a known username when the profile read came back empty
	if u.Username == "" {
		s.mu.RLock()
		if s.user != nil && s.user.ID == u.ID {
			u.Username = s.user.Username
		}
		s.mu.RUnlock()
	}
	return u
}

func (s *SessionStore) setUser(u *models.User) {
	s.mu.Lock()
	if sameUser(s.user, u) {
		s.mu.Unlock()
		return
	}
	s.user = u
	observers := make([]func(*models.User), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		var c *models.User
		if u != nil {
			cp := *u
			c = &cp
		}
		fn(c)
	}
}

func (s *SessionStore) beginLoading() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *SessionStore) endLoading() {
	s.mu.Lock()
	s.loading--
	s.mu.Unlock()
}

func (s *SessionStore) beginSignIn() {
	s.mu.Lock()
	s.signingIn++
	s.mu.Unlock()
}

func (s *SessionStore) endSignIn() {
	s.mu.Lock()
	s.signingIn--
	s.mu.Unlock()
}

func sameUser(a, b *models.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
