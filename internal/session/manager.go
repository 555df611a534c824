// Package session owns the authenticated identity: exactly one current
// Session (or none), kept identical between memory and the durable token
// store on every mutation.
package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/danaam/danaam-go/domain"
)

// Manager maintains the current Session and implements the api.TokenSource
// contract for the HTTP transport. All mutations hold mu, so readers never
// observe a partially written session.
type Manager struct {
	store domain.TokenStore
	auth  domain.AuthGateway

	mu      sync.Mutex
	current *domain.Session

	// group serializes concurrent refresh attempts: any number of requests
	// hitting 401 at once results in a single refresh call whose outcome
	// every waiter shares.
	group singleflight.Group

	// onExpire, when set, runs after a forced logout (missing refresh token
	// or failed refresh). The CLI uses it to tell the user to log in again;
	// a browser shell would navigate to the login page.
	onExpire func()
}

// NewManager creates a Manager over the given store and auth gateway.
func NewManager(store domain.TokenStore, auth domain.AuthGateway) *Manager {
	return &Manager{store: store, auth: auth}
}

// OnSessionExpired registers the hook invoked after a forced logout.
func (m *Manager) OnSessionExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// Initialize loads persisted credentials. A complete set reconstructs the
// session; anything partial or unreadable is treated as logged out and
// cleaned up. Initialize never fails.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.Load(ctx)
	if err != nil || !sess.Complete() {
		m.current = nil
		m.store.Clear(ctx)
		return
	}
	m.current = sess
}

// Login authenticates a contractor or supplier account. On success the
// session is persisted and armed before Login returns. On failure the
// existing session, if any, is left untouched.
func (m *Manager) Login(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.Session, error) {
	result, err := m.auth.LoginUser(ctx, email, password, keepLoggedIn)
	if err != nil {
		return nil, err
	}
	return m.install(ctx, result)
}

// LoginAdmin authenticates a platform administrator.
func (m *Manager) LoginAdmin(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.Session, error) {
	result, err := m.auth.LoginAdmin(ctx, email, password, keepLoggedIn)
	if err != nil {
		return nil, err
	}
	return m.install(ctx, result)
}

func (m *Manager) install(ctx context.Context, result *domain.LoginResult) (*domain.Session, error) {
	sess := &domain.Session{
		UserID:       result.UserID,
		Role:         result.Role,
		UserClass:    result.UserClass,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		FirstName:    result.FirstName,
		LastName:     result.LastName,
		CompanyName:  result.CompanyName,
	}
	if !sess.Complete() {
		return nil, fmt.Errorf("login response missing required fields")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	m.current = sess
	out := *sess
	return &out, nil
}

// Logout clears the persisted and in-memory session and, when redirect is
// set, fires the expiry hook. Calling Logout with no active session is a
// no-op apart from the hook.
func (m *Manager) Logout(ctx context.Context, redirect bool) {
	m.mu.Lock()
	m.current = nil
	m.store.Clear(ctx)
	hook := m.onExpire
	m.mu.Unlock()

	if redirect && hook != nil {
		hook()
	}
}

// Current returns a copy of the active session, or nil when logged out.
func (m *Manager) Current() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	out := *m.current
	return &out
}

// AccessToken implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

// RefreshAccessToken exchanges the stored refresh token for a new access
// token, rotating it in place. Concurrent callers share one refresh call.
// A missing refresh token or a failed refresh tears the session down.
func (m *Manager) RefreshAccessToken(ctx context.Context) (string, error) {
	// The outcome is shared by every concurrent waiter, so the call must not
	// die with whichever caller happened to start it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.refresh(shared)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.current == nil || m.current.RefreshToken == "" {
		m.mu.Unlock()
		m.Logout(ctx, true)
		return "", domain.ErrRefreshTokenMissing
	}
	userID := m.current.UserID
	refreshToken := m.current.RefreshToken
	m.mu.Unlock()

	result, err := m.auth.RefreshToken(ctx, userID, refreshToken)
	if err != nil {
		m.Logout(ctx, true)
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		// Logged out while the refresh call was in flight.
		return "", domain.ErrSessionNotFound
	}
	updated := *m.current
	updated.AccessToken = result.AccessToken
	if result.RefreshToken != "" {
		updated.RefreshToken = result.RefreshToken
	}
	if err := m.store.Save(ctx, &updated); err != nil {
		return "", fmt.Errorf("persist refreshed session: %w", err)
	}
	m.current = &updated
	return updated.AccessToken, nil
}
