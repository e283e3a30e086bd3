package banking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"fresco/internal/infrastructure/bankfeed"
)

func TestTokenReuse(t *testing.T) {
	ctx := context.Background()

	client := &MockClient{
		AuthenticateFunc: func(ctx context.Context) (string, error) {
			return "tok-1", nil
		},
	}

	source := NewTokenSource(client)

	first, err := source.Token(ctx)
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}
	second, err := source.Token(ctx)
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("tokens differ: %q vs %q", first, second)
	}
	if client.AuthenticateCalls != 1 {
		t.Errorf("Authenticate calls = %d, want 1", client.AuthenticateCalls)
	}
}

func TestTokenRefreshAfterExpiry(t *testing.T) {
	ctx := context.Background()

	calls := 0
	client := &MockClient{
		AuthenticateFunc: func(ctx context.Context) (string, error) {
			calls++
			return fmt.Sprintf("tok-%d", calls), nil
		},
	}

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	source := NewTokenSource(client)
	source.now = func() time.Time { return now }

	first, err := source.Token(ctx)
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}

	// Advance past issueTime + lifetime - margin
	now = now.Add(tokenLifetime - tokenSafetyMargin + time.Second)

	second, err := source.Token(ctx)
	if err != nil {
		t.Fatalf("Token() unexpected error: %v", err)
	}

	if first == second {
		t.Errorf("token not refreshed after expiry: %q", second)
	}
	if client.AuthenticateCalls != 2 {
		t.Errorf("Authenticate calls = %d, want 2", client.AuthenticateCalls)
	}
}

func TestTokenMissingCredentialsNotCached(t *testing.T) {
	ctx := context.Background()

	client := &MockClient{
		AuthenticateFunc: func(ctx context.Context) (string, error) {
			return "", bankfeed.ErrMissingCredentials
		},
	}

	source := NewTokenSource(client)

	_, err := source.Token(ctx)
	if !errors.Is(err, bankfeed.ErrMissingCredentials) {
		t.Fatalf("Token() error = %v, want ErrMissingCredentials", err)
	}
}

func TestTokenConcurrentRefreshCollapses(t *testing.T) {
	ctx := context.Background()

	client := &MockClient{
		AuthenticateFunc: func(ctx context.Context) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "tok-1", nil
		},
	}

	source := NewTokenSource(client)

	done := make(chan string, 2)
	for i := 0; i < 2; i++ {
		go func() {
			tok, err := source.Token(ctx)
			if err != nil {
				t.Errorf("Token() unexpected error: %v", err)
			}
			done <- tok
		}()
	}

	a, b := <-done, <-done
	if a != b {
		t.Errorf("concurrent tokens differ: %q vs %q", a, b)
	}
	if client.AuthenticateCalls != 1 {
		t.Errorf("Authenticate calls = %d, want 1 (refreshes must collapse)", client.AuthenticateCalls)
	}
}
