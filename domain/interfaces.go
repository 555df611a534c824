package domain

import (
	"context"
	"time"
)

// TokenStore persists session credentials across process restarts. Load may
// return an incomplete session; callers decide what to do with it. Clear is
// idempotent.
type TokenStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Clear(ctx context.Context) error
}

// AuthGateway talks to the backend's authentication endpoints.
type AuthGateway interface {
	LoginUser(ctx context.Context, email, password string, keepLoggedIn bool) (*LoginResult, error)
	LoginAdmin(ctx context.Context, email, password string, keepLoggedIn bool) (*LoginResult, error)
	RefreshToken(ctx context.Context, userID, refreshToken string) (*RefreshResult, error)
	ResetPassword(ctx context.Context, otpSuccessToken, newPassword string) error
}

// OTPGateway talks to the backend's OTP lifecycle endpoints.
type OTPGateway interface {
	SendOTP(ctx context.Context, email string, purpose OTPPurpose) (*OTPChallengeState, error)
	VerifyOTP(ctx context.Context, requesterToken string, purpose OTPPurpose, code string) (*OTPVerifyResult, error)
	ResendOTP(ctx context.Context, requesterToken string, purpose OTPPurpose) (*OTPChallengeState, error)
}

// RegistrationGateway submits a completed registration draft.
type RegistrationGateway interface {
	SubmitRegistration(ctx context.Context, draft *RegistrationDraft) error
}

// ProfileGateway reads and updates profiles.
type ProfileGateway interface {
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) error
	GetUserProfile(ctx context.Context, userID string) (*Profile, error)
}

// UserDirectory is the admin-facing user management surface.
type UserDirectory interface {
	ListUsers(ctx context.Context, page, pageSize int, filter UserFilter) (*Page[UserListItem], error)
	ActivateUser(ctx context.Context, userID string) error
	DeactivateUser(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// RegistrationReview is the admin-facing registration request surface.
type RegistrationReview interface {
	ListRegistrationRequests(ctx context.Context, page, pageSize int, filter RegistrationRequestFilter) (*Page[RegistrationRequest], error)
	GetRegistrationRequest(ctx context.Context, id string) (*RegistrationRequest, error)
	ApproveRegistrationRequest(ctx context.Context, id string) error
	DenyRegistrationRequest(ctx context.Context, id string) error
}

// Interfaces below are implemented by the development stub backend, which
// stands in for the production API in local runs and integration tests.

// StubUser is a user record as the stub backend stores it.
type StubUser struct {
	ID                      string
	Email                   string
	PasswordHash            string
	Role                    Role
	UserClass               UserClass
	FirstName               string
	LastName                string
	JobTitle                string
	CompanyName             string
	Country                 string
	City                    string
	CommercialLicenseNumber string
	Website                 string
	PhoneNumber             string
	Enabled                 bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// StubRegistrationRequest is a registration request as the stub stores it.
type StubRegistrationRequest struct {
	ID                         string
	CompanyName                string
	Country                    string
	City                       string
	CommercialLicenseNumber    string
	Website                    string
	CommercialLicenseObjectKey string
	TaxLicenseObjectKey        string
	FirstName                  string
	LastName                   string
	JobTitle                   string
	Email                      string
	PhoneNumber                string
	PasswordHash               string
	Type                       RegistrationType
	CurrentStatus              RegistrationStatus
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// UserRepository defines user data access for the stub backend.
type UserRepository interface {
	Create(ctx context.Context, user *StubUser) error
	FindByEmail(ctx context.Context, email string) (*StubUser, error)
	FindByID(ctx context.Context, id string) (*StubUser, error)
	Update(ctx context.Context, user *StubUser) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, pageSize int, filter UserFilter) ([]StubUser, int64, error)
}

// RegistrationRequestRepository defines registration-request data access for
// the stub backend.
type RegistrationRequestRepository interface {
	Create(ctx context.Context, req *StubRegistrationRequest) error
	FindByID(ctx context.Context, id string) (*StubRegistrationRequest, error)
	FindPendingByEmail(ctx context.Context, email string) (*StubRegistrationRequest, error)
	UpdateStatus(ctx context.Context, id string, status RegistrationStatus) error
	List(ctx context.Context, page, pageSize int, filter RegistrationRequestFilter) ([]StubRegistrationRequest, int64, error)
}

// TokenClaims are the JWT claims minted by the stub backend.
type TokenClaims struct {
	UserID    string
	Role      Role
	UserClass UserClass
	IssuedAt  int64
	ExpiresAt int64
}

// TokenService defines token operations for the stub backend.
type TokenService interface {
	GenerateAccessToken(userID string, role Role, class UserClass) (string, error)
	GenerateRefreshToken(userID string, role Role, class UserClass) (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
	ValidateRefreshToken(token string) (*TokenClaims, error)
}

// PasswordService defines password hashing for the stub backend.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// NotificationService delivers OTP codes and account notices.
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// OTPChallengeRecord is the stub backend's state for one OTP exchange.
type OTPChallengeRecord struct {
	Email           string     `json:"email"`
	Purpose         OTPPurpose `json:"purpose"`
	Code            string     `json:"code"`
	AttemptsLeft    int        `json:"attemptsLeft"`
	ResendTimesLeft int        `json:"resendTimesLeft"`
	AllowedRetryAt  time.Time  `json:"allowedRetryAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
}

// ChallengeStore persists OTP challenges and minted success tokens.
type ChallengeStore interface {
	Put(ctx context.Context, requesterToken string, rec *OTPChallengeRecord) error
	Get(ctx context.Context, requesterToken string) (*OTPChallengeRecord, error)
	Delete(ctx context.Context, requesterToken string) error
	PutSuccess(ctx context.Context, successToken, email string, purpose OTPPurpose) error
	TakeSuccess(ctx context.Context, successToken string, purpose OTPPurpose) (string, error)
}
