package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionComplete(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		want    bool
	}{
		{
			name: "all required fields",
			session: &Session{
				UserID: "u1", Role: RoleUser,
				AccessToken: "a", RefreshToken: "r",
			},
			want: true,
		},
		{
			name: "missing refresh token",
			session: &Session{
				UserID: "u1", Role: RoleUser, AccessToken: "a",
			},
			want: false,
		},
		{
			name: "missing role",
			session: &Session{
				UserID: "u1", AccessToken: "a", RefreshToken: "r",
			},
			want: false,
		},
		{name: "empty", session: &Session{}, want: false},
		{name: "nil", session: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.session.Complete())
		})
	}
}

func TestOTPChallengeStateWireNames(t *testing.T) {
	// The attempsLeft spelling is part of the wire contract.
	var state OTPChallengeState
	payload := `{"otpRequesterToken":"req-1","attempsLeft":4,"resendTimesLeft":2}`
	require.NoError(t, json.Unmarshal([]byte(payload), &state))

	assert.Equal(t, "req-1", state.RequesterToken)
	assert.Equal(t, 4, state.AttemptsLeft)
	assert.Equal(t, 2, state.ResendTimesLeft)
}

func TestRegistrationEnums(t *testing.T) {
	assert.Equal(t, "Contractor", TypeContractor.String())
	assert.Equal(t, "Supplier", TypeSupplier.String())
	assert.Equal(t, "Pending", StatusPending.String())
	assert.Equal(t, "Approved", StatusApproved.String())
	assert.Equal(t, "Denied", StatusDenied.String())
	assert.Equal(t, 1, int(StatusPending))
	assert.Equal(t, 0, int(TypeContractor))
}
