package mocks

import (
	"context"

	"github.com/danaam/danaam-go/domain"
)

// MockOTPGateway implements domain.OTPGateway for testing.
type MockOTPGateway struct {
	SendOTPFunc   func(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallengeState, error)
	VerifyOTPFunc func(ctx context.Context, requesterToken string, purpose domain.OTPPurpose, code string) (*domain.OTPVerifyResult, error)
	ResendOTPFunc func(ctx context.Context, requesterToken string, purpose domain.OTPPurpose) (*domain.OTPChallengeState, error)

	SendCalls   int
	VerifyCalls int
	ResendCalls int
}

// NewMockOTPGateway creates a new MockOTPGateway.
func NewMockOTPGateway() *MockOTPGateway {
	return &MockOTPGateway{}
}

func (m *MockOTPGateway) SendOTP(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallengeState, error) {
	m.SendCalls++
	if m.SendOTPFunc != nil {
		return m.SendOTPFunc(ctx, email, purpose)
	}
	return &domain.OTPChallengeState{RequesterToken: "req-token", AttemptsLeft: 5, ResendTimesLeft: 3}, nil
}

func (m *MockOTPGateway) VerifyOTP(ctx context.Context, requesterToken string, purpose domain.OTPPurpose, code string) (*domain.OTPVerifyResult, error) {
	m.VerifyCalls++
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, requesterToken, purpose, code)
	}
	return &domain.OTPVerifyResult{SuccessToken: "success-token"}, nil
}

func (m *MockOTPGateway) ResendOTP(ctx context.Context, requesterToken string, purpose domain.OTPPurpose) (*domain.OTPChallengeState, error) {
	m.ResendCalls++
	if m.ResendOTPFunc != nil {
		return m.ResendOTPFunc(ctx, requesterToken, purpose)
	}
	return &domain.OTPChallengeState{RequesterToken: "req-token-2", AttemptsLeft: 5, ResendTimesLeft: 2}, nil
}

// Compile-time interface compliance verification
var _ domain.OTPGateway = (*MockOTPGateway)(nil)

// MockRegistrationGateway implements domain.RegistrationGateway for testing.
type MockRegistrationGateway struct {
	SubmitFunc func(ctx context.Context, draft *domain.RegistrationDraft) error

	SubmitCalls int
	LastDraft   *domain.RegistrationDraft
}

// NewMockRegistrationGateway creates a new MockRegistrationGateway.
func NewMockRegistrationGateway() *MockRegistrationGateway {
	return &MockRegistrationGateway{}
}

func (m *MockRegistrationGateway) SubmitRegistration(ctx context.Context, draft *domain.RegistrationDraft) error {
	m.SubmitCalls++
	cp := *draft
	m.LastDraft = &cp
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, draft)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.RegistrationGateway = (*MockRegistrationGateway)(nil)
