// Package handlers implements the stub backend's HTTP surface. Response and
// error shapes follow the production API contract, including its quirks
// (the "Attemps Left" detail wording among them), because client code is
// tested against this stub.
package handlers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danaam/danaam-go/domain"
)

// OTPConfig bounds the stub's OTP exchanges.
type OTPConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendLimit  int
	ResendWindow time.Duration
}

// AuthHandlers serves the /auth route group.
type AuthHandlers struct {
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	challenges  domain.ChallengeStore
	notifier    domain.NotificationService
	otpCfg      OTPConfig
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	challenges domain.ChallengeStore,
	notifier domain.NotificationService,
	otpCfg OTPConfig,
) *AuthHandlers {
	return &AuthHandlers{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		challenges:  challenges,
		notifier:    notifier,
		otpCfg:      otpCfg,
	}
}

type loginRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	KeepLoggedIn bool   `json:"keepLoggedIn"`
}

// LoginUser handles POST /auth/user/login.
func (h *AuthHandlers) LoginUser(c *gin.Context) {
	h.login(c, false)
}

// LoginAdmin handles POST /auth/admin/login. Admin responses carry tokens
// and the user id only.
func (h *AuthHandlers) LoginAdmin(c *gin.Context) {
	h.login(c, true)
}

func (h *AuthHandlers) login(c *gin.Context, admin bool) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !h.passwordSvc.Verify(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":   domain.CodeBadCredentials,
			"detail": "Email or password is incorrect",
		})
		return
	}
	if admin != (user.UserClass == domain.ClassAdmin) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":   domain.CodeBadCredentials,
			"detail": "Email or password is incorrect",
		})
		return
	}
	if !user.Enabled {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Account is disabled"})
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.Role, user.UserClass)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}
	refreshToken, err := h.tokenSvc.GenerateRefreshToken(user.ID, user.Role, user.UserClass)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}

	if admin {
		c.JSON(http.StatusOK, gin.H{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
			"userId":       user.ID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
		"userId":       user.ID,
		"role":         user.Role,
		"userClass":    user.UserClass,
		"firstName":    user.FirstName,
		"lastName":     user.LastName,
		"companyName":  user.CompanyName,
	})
}

type refreshRequest struct {
	UserID       string `json:"userId" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	claims, err := h.tokenSvc.ValidateRefreshToken(req.RefreshToken)
	if err != nil || claims.UserID != req.UserID {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired refresh token"})
		return
	}
	user, err := h.userRepo.FindByID(c.Request.Context(), claims.UserID)
	if err != nil || !user.Enabled {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired refresh token"})
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(user.ID, user.Role, user.UserClass)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

type sendOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required"`
}

// SendOTP handles POST /auth/otp.
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	purpose := domain.OTPPurpose(req.Purpose)

	if purpose == domain.PurposePasswordReset {
		if _, err := h.userRepo.FindByEmail(c.Request.Context(), req.Email); err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":   domain.CodeUserNotFound,
				"detail": "No account found for this email",
			})
			return
		}
	}

	state, err := h.mintChallenge(c, req.Email, purpose)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to send OTP"})
		return
	}
	c.JSON(http.StatusOK, state)
}

// mintChallenge creates and stores a fresh challenge, delivers the code and
// returns the wire state.
func (h *AuthHandlers) mintChallenge(c *gin.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallengeState, error) {
	code, err := h.generateCode()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	rec := &domain.OTPChallengeRecord{
		Email:           email,
		Purpose:         purpose,
		Code:            code,
		AttemptsLeft:    h.otpCfg.MaxAttempts,
		ResendTimesLeft: h.otpCfg.ResendLimit,
		AllowedRetryAt:  now.Add(h.otpCfg.ResendWindow),
		ExpiresAt:       now.Add(h.otpCfg.TTL),
	}
	token := uuid.NewString()
	if err := h.challenges.Put(c.Request.Context(), token, rec); err != nil {
		return nil, err
	}

	subject := "Your DANAAM verification code"
	body := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(h.otpCfg.TTL.Minutes()))
	if err := h.notifier.SendEmail(email, subject, body); err != nil {
		h.challenges.Delete(c.Request.Context(), token)
		return nil, err
	}

	return &domain.OTPChallengeState{
		RequesterToken:  token,
		AllowedRetryAt:  rec.AllowedRetryAt,
		TokenExpireAt:   rec.ExpiresAt,
		AttemptsLeft:    rec.AttemptsLeft,
		ResendTimesLeft: rec.ResendTimesLeft,
	}, nil
}

type verifyOTPRequest struct {
	RequesterToken string `json:"otpRequesterToken" binding:"required"`
	Purpose        string `json:"purpose" binding:"required"`
	OTPNumber      string `json:"otpNumber" binding:"required"`
}

// VerifyOTP handles POST /auth/otp/verify. Wrong codes decrement the
// attempt budget; the remaining count goes out both as a structured field
// and in the detail text older clients parse.
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	rec, err := h.challenges.Get(c.Request.Context(), req.RequesterToken)
	if err != nil || rec.Purpose != domain.OTPPurpose(req.Purpose) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":   domain.CodeOTPNotFound,
			"detail": "OTP token not found or expired",
		})
		return
	}

	if rec.AttemptsLeft <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   domain.CodeOTPAttemptLimit,
			"detail": "OTP attempt limit reached",
		})
		return
	}

	if rec.Code != req.OTPNumber {
		rec.AttemptsLeft--
		h.challenges.Put(c.Request.Context(), req.RequesterToken, rec)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":         domain.CodeOTPIncorrect,
			"detail":       fmt.Sprintf("OTP number is not correct. Attemps Left: %d", rec.AttemptsLeft),
			"attemptsLeft": rec.AttemptsLeft,
		})
		return
	}

	h.challenges.Delete(c.Request.Context(), req.RequesterToken)
	successToken := uuid.NewString()
	if err := h.challenges.PutSuccess(c.Request.Context(), successToken, rec.Email, rec.Purpose); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to complete verification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"otpSuccessToken":         successToken,
		"otpSuccessTokenExpireAt": time.Now().Add(10 * time.Minute),
	})
}

type resendOTPRequest struct {
	OTPToken string `json:"otpToken" binding:"required"`
	Purpose  string `json:"purpose" binding:"required"`
}

// ResendOTP handles POST /auth/resend-otp. The old requester token is
// retired and a fresh challenge minted with a full attempt budget and one
// less resend.
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	rec, err := h.challenges.Get(c.Request.Context(), req.OTPToken)
	if err != nil || rec.Purpose != domain.OTPPurpose(req.Purpose) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":   domain.CodeOTPNotFound,
			"detail": "OTP token not found or expired",
		})
		return
	}
	if rec.ResendTimesLeft <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   domain.CodeOTPResendLimit,
			"detail": "OTP resend limit reached",
		})
		return
	}
	if time.Now().Before(rec.AllowedRetryAt) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   domain.CodeOTPResendWait,
			"detail": fmt.Sprintf("Resend allowed at %s", rec.AllowedRetryAt.Format(time.RFC3339)),
		})
		return
	}

	code, err := h.generateCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to resend OTP"})
		return
	}
	now := time.Now()
	fresh := &domain.OTPChallengeRecord{
		Email:           rec.Email,
		Purpose:         rec.Purpose,
		Code:            code,
		AttemptsLeft:    h.otpCfg.MaxAttempts,
		ResendTimesLeft: rec.ResendTimesLeft - 1,
		AllowedRetryAt:  now.Add(h.otpCfg.ResendWindow),
		ExpiresAt:       now.Add(h.otpCfg.TTL),
	}
	token := uuid.NewString()
	if err := h.challenges.Put(c.Request.Context(), token, fresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to resend OTP"})
		return
	}
	subject := "Your DANAAM verification code"
	body := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, int(h.otpCfg.TTL.Minutes()))
	if err := h.notifier.SendEmail(rec.Email, subject, body); err != nil {
		h.challenges.Delete(c.Request.Context(), token)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to resend OTP"})
		return
	}
	// The old token stays valid until the new code was actually delivered.
	h.challenges.Delete(c.Request.Context(), req.OTPToken)

	c.JSON(http.StatusOK, &domain.OTPChallengeState{
		RequesterToken:  token,
		AllowedRetryAt:  fresh.AllowedRetryAt,
		TokenExpireAt:   fresh.ExpiresAt,
		AttemptsLeft:    fresh.AttemptsLeft,
		ResendTimesLeft: fresh.ResendTimesLeft,
	})
}

type resetPasswordRequest struct {
	OTPSuccessToken string `json:"otpSuccessToken" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ResetPassword handles POST /auth/password-reset.
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	email, err := h.challenges.TakeSuccess(c.Request.Context(), req.OTPSuccessToken, domain.PurposePasswordReset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   domain.CodeOTPNotFound,
			"detail": "Invalid or expired success token",
		})
		return
	}

	user, err := h.userRepo.FindByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":   domain.CodeUserNotFound,
			"detail": "No account found for this email",
		})
		return
	}
	hash, err := h.passwordSvc.Hash(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to reset password"})
		return
	}
	user.PasswordHash = hash
	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to reset password"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandlers) generateCode() (string, error) {
	digits := make([]byte, h.otpCfg.Length)
	for i := range digits {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}
