// Package banking implements the bank-data synchronization engine: token
// caching, customer provisioning, account reconciliation and paginated
// transaction ingestion against the aggregator.
package banking

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	// The aggregator issues tokens valid for two hours. The safety margin
	// keeps a token from expiring mid-pass.
	tokenLifetime     = 2 * time.Hour
	tokenSafetyMargin = 5 * time.Minute
)

// Authenticator is the slice of the aggregator client the token source needs.
type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
}

// TokenSource caches the single process-wide aggregator access token.
// Token is safe for concurrent use: the mutex is held across the refresh
// call, so racing callers observing an expired token trigger at most one
// authentication request per expiry event.
type TokenSource struct {
	auth Authenticator

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time // injectable clock for tests
}

// NewTokenSource creates a token source backed by the given authenticator.
func NewTokenSource(auth Authenticator) *TokenSource {
	return &TokenSource{
		auth: auth,
		now:  time.Now,
	}
}

// Token returns a usable access token, refreshing via the aggregator's
// partner-authentication endpoint when the cached one is missing or expired.
// A credentials-configuration error is returned as-is and must not be
// retried.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	token, err := s.auth.Authenticate(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to refresh aggregator token: %w", err)
	}

	s.token = token
	s.expiresAt = s.now().Add(tokenLifetime - tokenSafetyMargin)

	log.Printf("Aggregator token refreshed, valid until %s", s.expiresAt.Format(time.RFC3339))

	return s.token, nil
}
