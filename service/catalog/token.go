package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrMissingCredentials means SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET
	// were never configured. Distinct from a network failure.
	ErrMissingCredentials = errors.New("missing Spotify client credentials")

	// ErrUnavailable means the token exchange itself failed.
	ErrUnavailable = errors.New("failed to get Spotify access token")
)

// Refresh early once fewer than 30 seconds of validity remain.
const tokenLeeway = 30 * time.Second

// tokenSource caches a client-credentials bearer token behind a mutex.
// The cache outlives individual analysis runs; last successful refresh
// wins.
type tokenSource struct {
	conf clientcredentials.Config

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func newTokenSource(clientID, clientSecret, tokenURL string) *tokenSource {
	return &tokenSource{
		conf: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		},
	}
}

// accessToken returns the cached token while it still has more than 30
// seconds of validity, refreshing synchronously otherwise.
func (t *tokenSource) accessToken(ctx context.Context) (string, error) {
	if t.conf.ClientID == "" || t.conf.ClientSecret == "" {
		return "", ErrMissingCredentials
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Until(t.expiresAt) > tokenLeeway {
		return t.token, nil
	}

	tok, err := t.conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	t.token = tok.AccessToken
	t.expiresAt = tok.Expiry
	return t.token, nil
}
