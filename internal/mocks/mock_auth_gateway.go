package mocks

import (
	"context"

	"github.com/danaam/danaam-go/domain"
)

// MockAuthGateway implements domain.AuthGateway for testing.
type MockAuthGateway struct {
	LoginUserFunc     func(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.LoginResult, error)
	LoginAdminFunc    func(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.LoginResult, error)
	RefreshTokenFunc  func(ctx context.Context, userID, refreshToken string) (*domain.RefreshResult, error)
	ResetPasswordFunc func(ctx context.Context, otpSuccessToken, newPassword string) error

	RefreshCalls int
}

// NewMockAuthGateway creates a new MockAuthGateway.
func NewMockAuthGateway() *MockAuthGateway {
	return &MockAuthGateway{}
}

func (m *MockAuthGateway) LoginUser(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.LoginResult, error) {
	if m.LoginUserFunc != nil {
		return m.LoginUserFunc(ctx, email, password, keepLoggedIn)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthGateway) LoginAdmin(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.LoginResult, error) {
	if m.LoginAdminFunc != nil {
		return m.LoginAdminFunc(ctx, email, password, keepLoggedIn)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthGateway) RefreshToken(ctx context.Context, userID, refreshToken string) (*domain.RefreshResult, error) {
	m.RefreshCalls++
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, userID, refreshToken)
	}
	return nil, domain.ErrTokenInvalid
}

func (m *MockAuthGateway) ResetPassword(ctx context.Context, otpSuccessToken, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, otpSuccessToken, newPassword)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.AuthGateway = (*MockAuthGateway)(nil)
