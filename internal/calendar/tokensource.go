package calendar

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/nativeJustin/calendar-app/internal/instrumentation"
	"github.com/nativeJustin/calendar-app/internal/logging"
	"github.com/nativeJustin/calendar-app/internal/tokenstore"
)

// persistingTokenSource wraps an oauth2 token source and writes every
// rotated access token back to the credential store before handing it
// out. The mutex also serializes refreshes for the account, so
// concurrent requests against a stale token trigger one rotation, not
// several.
type persistingTokenSource struct {
	accountID string
	store     *tokenstore.Store
	base      oauth2.TokenSource
	logger    *slog.Logger
	metrics   *instrumentation.Metrics

	mu         sync.Mutex
	lastAccess string
}

func newPersistingTokenSource(accountID string, cred tokenstore.Credential, base oauth2.TokenSource, store *tokenstore.Store, logger *slog.Logger, metrics *instrumentation.Metrics) *persistingTokenSource {
	return &persistingTokenSource{
		accountID:  accountID,
		store:      store,
		base:       base,
		logger:     logger,
		metrics:    metrics,
		lastAccess: cred.AccessToken,
	}
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		s.metrics.RecordTokenRefresh(context.Background(), "failure")
		return nil, err
	}

	if token.AccessToken != s.lastAccess {
		// The credential store keeps the previous refresh token when
		// the rotated token carries none.
		if err := s.store.Save(s.accountID, tokenstore.FromToken(token), ""); err != nil {
			s.logger.Warn("failed to persist rotated token",
				logging.Account(s.accountID),
				logging.Err(err))
			s.metrics.RecordTokenRefresh(context.Background(), "persist_failure")
		} else {
			s.logger.Debug("persisted rotated access token",
				logging.Account(s.accountID))
			s.metrics.RecordTokenRefresh(context.Background(), "success")
		}
		s.lastAccess = token.AccessToken
	}

	return token, nil
}
