package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// State describes what the client currently knows about its session.
// It starts at StateUnknown and only ever reports StateAuthenticated
// after the server has confirmed the stored token.
type State string

const (
	StateUnknown         State = "unknown"
	StateChecking        State = "checking"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// ErrUnauthenticated is returned when the server rejects the credentials
// or the stored session token.
var ErrUnauthenticated = errors.New("admin: unauthenticated")

// Profile is the signed-in admin as reported by the server.
type Profile struct {
	AdminID  string `json:"adminId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Client signs an operator in against the admin API and tracks the session
// across restarts through a TokenStore. All state transitions are
// server-driven: a token is only trusted after the server accepts it, and
// any rejection clears it.
type Client struct {
	baseURL    string
	store      TokenStore
	httpClient *http.Client

	mu      sync.Mutex
	state   State
	token   string
	profile *Profile
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// NewClient creates a session client for the admin API at baseURL.
// The store may be nil, in which case the session lives only in memory.
func NewClient(baseURL string, store TokenStore, opts ...Option) *Client {
	if store == nil {
		store = NewMemoryTokenStore()
	}
	c := &Client{
		baseURL: baseURL,
		store:   store,
		state:   StateUnknown,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current session state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Profile returns the signed-in admin, or nil when not authenticated.
func (c *Client) Profile() *Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated || c.profile == nil {
		return nil
	}
	p := *c.profile
	return &p
}

// Token returns the current session token, or empty when not authenticated.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthenticated {
		return ""
	}
	return c.token
}

// Restore checks a previously persisted token against the server. With no
// stored token it settles on StateUnauthenticated immediately. A rejected
// token is purged from the store; a transport failure leaves the token in
// place for a later retry but still reports unauthenticated.
func (c *Client) Restore(ctx context.Context) (State, error) {
	token, err := c.store.Load()
	if err != nil {
		c.setUnauthenticated()
		return StateUnauthenticated, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		c.setUnauthenticated()
		return StateUnauthenticated, nil
	}

	c.mu.Lock()
	c.state = StateChecking
	c.mu.Unlock()

	profile, err := c.fetchProfile(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			// The server no longer recognizes this token.
			_ = c.store.Clear()
		}
		c.setUnauthenticated()
		return StateUnauthenticated, err
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.token = token
	c.profile = profile
	c.mu.Unlock()

	return StateAuthenticated, nil
}

// SignIn exchanges credentials for a fresh session. On success the token is
// persisted and the client becomes authenticated. Any failure leaves the
// client unauthenticated with no stored token.
func (c *Client) SignIn(ctx context.Context, adminID, password string) (*Profile, error) {
	body, err := json.Marshal(map[string]string{
		"adminId":  adminID,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setUnauthenticated()
		return nil, fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.setUnauthenticated()
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		c.setUnauthenticated()
		return nil, fmt.Errorf("sign in: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Token string   `json:"token"`
		Admin *Profile `json:"admin"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.setUnauthenticated()
		return nil, fmt.Errorf("sign in: decode response: %w", err)
	}
	if result.Token == "" || result.Admin == nil || !profileComplete(result.Admin) {
		c.setUnauthenticated()
		return nil, fmt.Errorf("sign in: malformed response")
	}

	if err := c.store.Save(result.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	c.mu.Lock()
	c.state = StateAuthenticated
	c.token = result.Token
	c.profile = result.Admin
	c.mu.Unlock()

	p := *result.Admin
	return &p, nil
}

// SignOut revokes the session on the server before clearing local state, so
// a crash between the two steps leaves a dead local token rather than a
// live server session. Signing out twice, or with no session, is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token == "" {
		if stored, err := c.store.Load(); err == nil {
			token = stored
		}
	}
	if token == "" {
		c.setUnauthenticated()
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/api/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	c.setUnauthenticated()
	return nil
}

func (c *Client) setUnauthenticated() {
	c.mu.Lock()
	c.state = StateUnauthenticated
	c.token = ""
	c.profile = nil
	c.mu.Unlock()
}

func (c *Client) fetchProfile(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/api/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("check session: unexpected status %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("check session: decode response: %w", err)
	}
	if !profileComplete(&profile) {
		return nil, fmt.Errorf("check session: malformed profile")
	}

	return &profile, nil
}

// profileComplete rejects a profile missing any required field rather than
// letting a partial shape propagate into the application.
func profileComplete(p *Profile) bool {
	return p.AdminID != "" && p.FullName != "" && p.Email != ""
}
