// Package otp drives one OTP verification to completion or cancellation.
// The same machine backs the registration wizard and the password-reset
// flow; only the purpose differs.
package otp

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/danaam/danaam-go/domain"
)

const (
	defaultAttempts = 5
	defaultResends  = 3
	resendCooldown  = 60 * time.Second
	codeLength      = 6
)

// attemptsLeftRe extracts the remaining attempt count from the backend's
// human-readable detail text, misspelling included. Used only when the
// structured attemptsLeft field is absent.
var attemptsLeftRe = regexp.MustCompile(`Attemps Left: (\d+)`)

// Challenge is one in-flight OTP exchange. It owns the requester token, the
// local attempt/resend accounting and the resend cooldown. A successful
// Verify terminates the challenge; afterwards only the returned success
// token matters and the requester token is discarded.
type Challenge struct {
	gw      domain.OTPGateway
	email   string
	purpose domain.OTPPurpose
	now     func() time.Time

	mu              sync.Mutex
	token           string
	attemptsLeft    int
	resendTimesLeft int
	resendNotBefore time.Time
	closed          bool

	tickStop chan struct{}
}

// NewChallenge seeds a challenge from the state returned by the send-OTP
// call. Zero server-supplied counters fall back to the defaults (5 attempts,
// 3 resends).
func NewChallenge(gw domain.OTPGateway, email string, purpose domain.OTPPurpose, state *domain.OTPChallengeState) *Challenge {
	c := &Challenge{
		gw:              gw,
		email:           email,
		purpose:         purpose,
		now:             time.Now,
		token:           state.RequesterToken,
		attemptsLeft:    defaultAttempts,
		resendTimesLeft: defaultResends,
	}
	if state.AttemptsLeft > 0 {
		c.attemptsLeft = state.AttemptsLeft
	}
	if state.ResendTimesLeft > 0 {
		c.resendTimesLeft = state.ResendTimesLeft
	}
	if !state.AllowedRetryAt.IsZero() {
		c.resendNotBefore = state.AllowedRetryAt
	}
	return c
}

// Email returns the address this challenge was sent to.
func (c *Challenge) Email() string { return c.email }

// AttemptsLeft returns the locally tracked remaining verify attempts.
func (c *Challenge) AttemptsLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attemptsLeft
}

// ResendTimesLeft returns the remaining resend budget.
func (c *Challenge) ResendTimesLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resendTimesLeft
}

// ResendCountdown returns whole seconds until the next resend is allowed,
// or 0 when a resend is possible now.
func (c *Challenge) ResendCountdown() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countdownLocked()
}

func (c *Challenge) countdownLocked() int {
	remaining := c.resendNotBefore.Sub(c.now())
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds() + 0.999)
}

// Verify checks a code against the backend. Codes that are not exactly six
// digits are rejected locally without a network call. Backend rejections
// update the local attempt accounting: a structured attempts-left field
// wins, then the detail-text fallback, then a plain local decrement.
func (c *Challenge) Verify(ctx context.Context, code string) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", domain.ErrOTPChallengeClosed
	}
	token := c.token
	c.mu.Unlock()

	if !validCode(code) {
		return "", domain.ErrOTPInvalidFormat
	}

	result, err := c.gw.VerifyOTP(ctx, token, c.purpose, code)
	if err != nil {
		return "", c.verifyFailed(err)
	}

	c.mu.Lock()
	c.closed = true
	c.token = ""
	c.mu.Unlock()
	c.stopCountdown()
	return result.SuccessToken, nil
}

func (c *Challenge) verifyFailed(err error) error {
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		return err
	}

	switch apiErr.Code {
	case domain.CodeOTPIncorrect:
		c.mu.Lock()
		c.attemptsLeft = remainingAttempts(apiErr, c.attemptsLeft)
		left := c.attemptsLeft
		c.mu.Unlock()
		return fmt.Errorf("invalid code, %d attempts left: %w", left, err)
	case domain.CodeOTPAttemptLimit:
		return fmt.Errorf("too many attempts: %w", err)
	case domain.CodeOTPNotFound:
		return fmt.Errorf("code expired, request a new one: %w", err)
	}
	return err
}

// remainingAttempts resolves the post-failure attempt count: structured
// field first, detail-text parse second, local decrement last. Never
// negative.
func remainingAttempts(apiErr *domain.APIError, current int) int {
	if apiErr.AttemptsLeft != nil {
		return max(*apiErr.AttemptsLeft, 0)
	}
	if m := attemptsLeftRe.FindStringSubmatch(apiErr.Detail); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return max(n, 0)
		}
	}
	return max(current-1, 0)
}

// Resend asks the backend for a fresh code. It is a strict no-op, with no
// network call, while the cooldown is running or the resend budget is
// exhausted. A successful resend replaces the requester token, resets the
// attempt budget and restarts the 60-second cooldown.
func (c *Challenge) Resend(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrOTPChallengeClosed
	}
	if c.countdownLocked() > 0 {
		c.mu.Unlock()
		return domain.ErrOTPResendThrottled
	}
	if c.resendTimesLeft <= 0 {
		c.mu.Unlock()
		return domain.ErrOTPResendLimit
	}
	token := c.token
	c.mu.Unlock()

	state, err := c.gw.ResendOTP(ctx, token, c.purpose)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.token = state.RequesterToken
	c.attemptsLeft = defaultAttempts
	if state.AttemptsLeft > 0 {
		c.attemptsLeft = state.AttemptsLeft
	}
	c.resendTimesLeft--
	c.resendNotBefore = c.now().Add(resendCooldown)
	if !state.AllowedRetryAt.IsZero() {
		c.resendNotBefore = state.AllowedRetryAt
	}
	c.mu.Unlock()
	return nil
}

// StartCountdown emits the remaining cooldown seconds to onTick once per
// second until the cooldown reaches zero or the challenge is closed. It
// replaces any previous ticker.
func (c *Challenge) StartCountdown(onTick func(secondsLeft int)) {
	c.stopCountdown()

	stop := make(chan struct{})
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.tickStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				left := c.ResendCountdown()
				onTick(left)
				if left == 0 {
					return
				}
			}
		}
	}()
}

func (c *Challenge) stopCountdown() {
	c.mu.Lock()
	stop := c.tickStop
	c.tickStop = nil
	c.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

// Close dismisses the challenge and cancels any running countdown. The
// exchange may still exist server-side; the caller simply walks away.
func (c *Challenge) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.stopCountdown()
}

// Closed reports whether the challenge has terminated.
func (c *Challenge) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func validCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
