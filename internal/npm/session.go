package npm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rokelvisar/npm-agent/internal/logging"
)

// tokenRefreshMargin is how long before the reported expiry the session
// re-authenticates, to avoid a token expiring mid-request. The boundary is
// inclusive: a token exactly at the margin is refreshed.
const tokenRefreshMargin = 5 * time.Minute

// Session manages authentication and requests to the Nginx Proxy Manager API.
// It is safe for concurrent use; the dashboard and the sync loop share one
// instance.
type Session struct {
	logger   *logging.Logger
	client   *http.Client
	baseURL  string
	identity string
	secret   string

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewSession creates a session against the given NPM base URL. No request is
// made until the first call needs a token.
func NewSession(baseURL, identity, secret string) *Session {
	return &Session{
		logger:   logging.GetGlobalLogger(),
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  baseURL,
		identity: identity,
		secret:   secret,
	}
}

type tokenResponse struct {
	Token   string `json:"token"`
	Expires string `json:"expires"`
}

// Login exchanges the configured identity/secret for a bearer token.
func (s *Session) Login(ctx context.Context) error {
	s.logger.Info("Authenticating with NPM API at %s...", s.baseURL)

	payload, err := json.Marshal(map[string]string{
		"identity": s.identity,
		"secret":   s.secret,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/tokens", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach NPM API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("authentication failed (%d): %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	// NPM reports expiry as ISO-8601 with a trailing Z.
	expiresAt, err := time.Parse(time.RFC3339, tr.Expires)
	if err != nil {
		return fmt.Errorf("failed to parse token expiry %q: %w", tr.Expires, err)
	}

	s.mu.Lock()
	s.token = tr.Token
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.logger.Info("Authentication successful. Token expires at %s", expiresAt.Format(time.RFC3339))
	return nil
}

// EnsureValidToken guarantees the session holds a non-expired token,
// re-authenticating when none exists or expiry is within the refresh margin.
func (s *Session) EnsureValidToken(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	expiresAt := s.expiresAt
	s.mu.Unlock()

	if token == "" || !time.Now().Before(expiresAt.Add(-tokenRefreshMargin)) {
		return s.Login(ctx)
	}
	return nil
}

// Do issues an authenticated request against the NPM API. On a 401 it forces
// exactly one re-authentication and one retry of the same call. The caller
// owns the response body on success.
func (s *Session) Do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if err := s.EnsureValidToken(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	resp, err := s.send(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		s.logger.Warn("Token rejected unexpectedly, refreshing...")
		if err := s.Login(ctx); err != nil {
			return nil, err
		}
		resp, err = s.send(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("API request failed (%s %s): status %d: %s", method, path, resp.StatusCode, string(body))
	}

	return resp, nil
}

func (s *Session) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+s.token)
	s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed (%s %s): %w", method, path, err)
	}
	return resp, nil
}
