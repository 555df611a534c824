package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorSentinelMapping(t *testing.T) {
	tests := []struct {
		code     string
		sentinel error
	}{
		{CodeOTPIncorrect, ErrOTPInvalid},
		{CodeOTPAttemptLimit, ErrOTPMaxAttempts},
		{CodeOTPNotFound, ErrOTPExpired},
		{CodeOTPResendLimit, ErrOTPResendLimit},
		{CodeOTPResendWait, ErrOTPResendThrottled},
		{CodeBadCredentials, ErrInvalidCredentials},
		{CodeUserNotFound, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &APIError{Status: 400, Code: tt.code}
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.False(t, errors.Is(err, ErrSessionNotFound))
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "code and detail",
			err:  &APIError{Status: 400, Code: CodeOTPIncorrect, Detail: "nope"},
			want: "api error 400 (Auth.otp.OptNumberIsNotCorrect): nope",
		},
		{
			name: "detail only",
			err:  &APIError{Status: 502, Detail: "upstream exploded"},
			want: "api error 502: upstream exploded",
		},
		{
			name: "bare status",
			err:  &APIError{Status: 500},
			want: "api error 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAsAPIErrorUnwrapsChains(t *testing.T) {
	inner := &APIError{Status: 401, Code: CodeBadCredentials}
	wrapped := fmt.Errorf("login: %w", inner)

	got, ok := AsAPIError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
}
