package domain

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserInactive       = errors.New("user account is inactive")
)

// OTP errors
var (
	ErrOTPInvalid         = errors.New("invalid otp code")
	ErrOTPInvalidFormat   = errors.New("otp code must be exactly 6 digits")
	ErrOTPMaxAttempts     = errors.New("maximum otp attempts exceeded")
	ErrOTPExpired         = errors.New("otp has expired")
	ErrOTPResendLimit     = errors.New("otp resend limit exceeded")
	ErrOTPResendThrottled = errors.New("otp resend not allowed yet")
	ErrOTPChallengeClosed = errors.New("otp challenge is closed")
)

// Session errors
var (
	ErrSessionNotFound     = errors.New("no session found")
	ErrRefreshTokenMissing = errors.New("no refresh token available")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrTokenMalformed      = errors.New("malformed token")
)

// Wizard errors
var (
	ErrWizardValidation     = errors.New("step validation failed")
	ErrWizardStep           = errors.New("operation not valid for current step")
	ErrOTPTokenRequired     = errors.New("otp success token required before submission")
	ErrRegistrationRejected = errors.New("registration request rejected")
)

// Backend error codes matched by the client. The misspelling in
// CodeOTPIncorrect is the backend's, not ours.
const (
	CodeOTPIncorrect    = "Auth.otp.OptNumberIsNotCorrect"
	CodeOTPAttemptLimit = "Auth.otp.OTPAttemptLimitReached"
	CodeOTPNotFound     = "Auth.otp.OtpTokenNotFound"
	CodeOTPResendLimit  = "Auth.otp.OtpResendLimitReached"
	CodeOTPResendWait   = "Auth.otp.OtpResendNotAllowedYet"
	CodeBadCredentials  = "Auth.login.InvalidCredentials"
	CodeUserNotFound    = "Auth.user.UserNotFound"
)

// APIError is a structured error payload returned by the backend. Code and
// Detail mirror the wire format; FieldErrors carries per-field validation
// messages keyed by the backend's PascalCase field names. AttemptsLeft is set
// when the backend reports a remaining OTP attempt count as a structured
// field rather than buried in Detail.
type APIError struct {
	Status       int                 `json:"-"`
	Code         string              `json:"code,omitempty"`
	Detail       string              `json:"detail,omitempty"`
	FieldErrors  map[string][]string `json:"errors,omitempty"`
	AttemptsLeft *int                `json:"attemptsLeft,omitempty"`
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Detail != "":
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Detail)
	case e.Detail != "":
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	case e.Code != "":
		return fmt.Sprintf("api error %d (%s)", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Is maps well-known backend codes onto sentinel errors so callers can use
// errors.Is without inspecting codes themselves.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrOTPInvalid:
		return e.Code == CodeOTPIncorrect
	case ErrOTPMaxAttempts:
		return e.Code == CodeOTPAttemptLimit
	case ErrOTPExpired:
		return e.Code == CodeOTPNotFound
	case ErrOTPResendLimit:
		return e.Code == CodeOTPResendLimit
	case ErrOTPResendThrottled:
		return e.Code == CodeOTPResendWait
	case ErrInvalidCredentials:
		return e.Code == CodeBadCredentials
	case ErrUserNotFound:
		return e.Code == CodeUserNotFound
	}
	return false
}

// AsAPIError unwraps err to an *APIError if one is present.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
