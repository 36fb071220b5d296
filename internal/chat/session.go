package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Gate resolves the authenticated identity before any chat activity is
// permitted.
type Gate struct {
	base string
	http *http.Client
}

// NewGate builds a gate against the backend base URL. The http client
// must carry the login session cookie (use a cookie jar shared with the
// login flow).
func NewGate(baseURL string, client *http.Client) *Gate {
	return &Gate{base: baseURL, http: client}
}

type sessionCheck struct {
	LoggedIn bool      `json:"logged_in"`
	User     *Identity `json:"user,omitempty"`
}

// Authenticate asks the backend who owns the current session. It returns
// ErrUnauthenticated when no valid session exists; the caller must run
// its login flow and stop.
func (g *Gate) Authenticate(ctx context.Context) (Identity, error) {
	var check sessionCheck
	if err := getJSON(ctx, g.http, g.base+"/auth/check-session", &check); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !check.LoggedIn || check.User == nil {
		return Identity{}, ErrUnauthenticated
	}
	return *check.User, nil
}

// Session is the per-connection chat state: one immutable identity and
// the single active scope. It is created after authentication and shared
// by the router, the reconciler and the renderer glue, so every decision
// reads the same scope snapshot.
type Session struct {
	identity Identity

	mu    sync.RWMutex
	scope Scope
}

func NewSession(identity Identity) *Session {
	return &Session{identity: identity}
}

func (s *Session) Identity() Identity { return s.identity }

// Scope returns the active scope snapshot.
func (s *Session) Scope() Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scope
}

func (s *Session) setScope(scope Scope) {
	s.mu.Lock()
	s.scope = scope
	s.mu.Unlock()
}

// getJSON performs a GET and decodes the JSON body. Non-200 statuses are
// errors; callers wrap with their own taxonomy sentinel.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	return nil
}

// postJSON posts a JSON body and decodes the JSON response. 4xx/5xx are
// not errors here: the backend reports failures in the body envelope.
func postJSON(ctx context.Context, client *http.Client, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	return nil
}
