package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/recipebox/internal/backend"
)

// Run refreshes the session shortly before its access token expires and
// drops it when the platform no longer accepts the refresh token. It blocks
// until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.checkSession(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) checkSession(ctx context.Context) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	if sess == nil {
		return
	}
	if s.opts.Now().Add(s.opts.RefreshMargin).Before(sess.ExpiresAt) {
		return
	}

	if _, err := s.Refresh(ctx); err != nil {
		if errors.Is(err, backend.ErrSessionExpired) {
			return
		}
		s.log.Warn(ctx, "session refresh failed, will retry", "error", err)
	}
}
