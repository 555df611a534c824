package api

import (
	"context"
	"net/http"

	"github.com/danaam/danaam-go/domain"
)

type loginRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	KeepLoggedIn bool   `json:"keepLoggedIn"`
}

// LoginUser authenticates a contractor or supplier account.
func (c *Client) LoginUser(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/user/login", nil, loginRequest{email, password, keepLoggedIn}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginAdmin authenticates a platform administrator. The admin endpoint
// returns tokens and the user id only; role defaults to Admin.
func (c *Client) LoginAdmin(ctx context.Context, email, password string, keepLoggedIn bool) (*domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/admin/login", nil, loginRequest{email, password, keepLoggedIn}, &out)
	if err != nil {
		return nil, err
	}
	if out.Role == "" {
		out.Role = domain.RoleAdmin
	}
	if out.UserClass == "" {
		out.UserClass = domain.ClassAdmin
	}
	return &out, nil
}

type refreshRequest struct {
	UserID       string `json:"userId"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken exchanges the stored refresh token for a new access token.
func (c *Client) RefreshToken(ctx context.Context, userID, refreshToken string) (*domain.RefreshResult, error) {
	var out domain.RefreshResult
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, refreshRequest{userID, refreshToken}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type sendOTPRequest struct {
	Email   string            `json:"email"`
	Purpose domain.OTPPurpose `json:"purpose"`
}

// SendOTP starts an OTP exchange for the given email and purpose.
func (c *Client) SendOTP(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallengeState, error) {
	var out domain.OTPChallengeState
	err := c.do(ctx, http.MethodPost, "/auth/otp", nil, sendOTPRequest{email, purpose}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type verifyOTPRequest struct {
	RequesterToken string            `json:"otpRequesterToken"`
	Purpose        domain.OTPPurpose `json:"purpose"`
	OTPNumber      string            `json:"otpNumber"`
}

// VerifyOTP checks a code against an in-flight exchange. Success yields the
// one-time success token; the requester token is dead afterwards.
func (c *Client) VerifyOTP(ctx context.Context, requesterToken string, purpose domain.OTPPurpose, code string) (*domain.OTPVerifyResult, error) {
	var out domain.OTPVerifyResult
	err := c.do(ctx, http.MethodPost, "/auth/otp/verify", nil, verifyOTPRequest{requesterToken, purpose, code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type resendOTPRequest struct {
	OTPToken string            `json:"otpToken"`
	Purpose  domain.OTPPurpose `json:"purpose"`
}

// ResendOTP asks the backend to mint a fresh code for an existing exchange,
// replacing the requester token.
func (c *Client) ResendOTP(ctx context.Context, requesterToken string, purpose domain.OTPPurpose) (*domain.OTPChallengeState, error) {
	var out domain.OTPChallengeState
	err := c.do(ctx, http.MethodPost, "/auth/resend-otp", nil, resendOTPRequest{requesterToken, purpose}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type resetPasswordRequest struct {
	OTPSuccessToken string `json:"otpSuccessToken"`
	NewPassword     string `json:"newPassword"`
}

// ResetPassword sets a new password using a success token minted by a
// PasswordReset OTP verification.
func (c *Client) ResetPassword(ctx context.Context, otpSuccessToken, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/password-reset", nil, resetPasswordRequest{otpSuccessToken, newPassword}, nil)
}

var _ domain.AuthGateway = (*Client)(nil)
var _ domain.OTPGateway = (*Client)(nil)
