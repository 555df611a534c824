package mocks

import (
	"context"
	"sync"

	"github.com/danaam/danaam-go/domain"
)

// MockTokenStore implements domain.TokenStore in memory for testing. It
// records the persisted session so tests can assert the persisted copy
// matches the in-memory one.
type MockTokenStore struct {
	LoadFunc  func(ctx context.Context) (*domain.Session, error)
	SaveFunc  func(ctx context.Context, session *domain.Session) error
	ClearFunc func(ctx context.Context) error

	mu         sync.Mutex
	persisted  *domain.Session
	SaveCalls  int
	ClearCalls int
}

// NewMockTokenStore creates a MockTokenStore with default in-memory behavior.
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{}
}

// Load returns the persisted session, or an empty one when nothing is stored.
func (m *MockTokenStore) Load(ctx context.Context) (*domain.Session, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persisted == nil {
		return &domain.Session{}, nil
	}
	out := *m.persisted
	return &out, nil
}

// Save stores a copy of the session.
func (m *MockTokenStore) Save(ctx context.Context, session *domain.Session) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.persisted = &cp
	m.SaveCalls++
	return nil
}

// Clear drops the persisted session.
func (m *MockTokenStore) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persisted = nil
	m.ClearCalls++
	return nil
}

// Persisted returns a copy of what is currently stored, or nil.
func (m *MockTokenStore) Persisted() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.persisted == nil {
		return nil
	}
	out := *m.persisted
	return &out
}

// Seed pre-populates the store, bypassing Save accounting.
func (m *MockTokenStore) Seed(session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *session
	m.persisted = &cp
}

// Compile-time interface compliance verification
var _ domain.TokenStore = (*MockTokenStore)(nil)
