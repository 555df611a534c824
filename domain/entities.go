package domain

import "time"

// Role is the platform-level role reported by the backend.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleUser       Role = "User"
	RoleSuperAdmin Role = "SuperAdmin"
)

// UserClass identifies which population a user belongs to.
type UserClass string

const (
	ClassAdmin       UserClass = "Admin"
	ClassContractors UserClass = "Contractors"
	ClassSuppliers   UserClass = "Suppliers"
)

// Session represents the authenticated identity. A Session is either fully
// present (ID, role and both tokens set) or absent; partial sessions are
// never persisted.
type Session struct {
	UserID       string
	Role         Role
	UserClass    UserClass
	AccessToken  string
	RefreshToken string

	// Display-only fields, populated for non-admin logins.
	FirstName   string
	LastName    string
	CompanyName string
}

// Complete reports whether every required field is set.
func (s *Session) Complete() bool {
	if s == nil {
		return false
	}
	return s.UserID != "" && s.Role != "" && s.AccessToken != "" && s.RefreshToken != ""
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	UserID       string    `json:"userId"`
	Role         Role      `json:"role,omitempty"`
	UserClass    UserClass `json:"userClass,omitempty"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	CompanyName  string    `json:"companyName,omitempty"`
}

// RefreshResult is the backend's answer to a token refresh. The backend may
// rotate the refresh token; an empty RefreshToken means "keep the old one".
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// OTPPurpose tags an OTP exchange with the flow that requested it.
type OTPPurpose string

const (
	PurposeRegistration  OTPPurpose = "Registration"
	PurposePasswordReset OTPPurpose = "PasswordReset"
)

// OTPChallengeState is the server-side view of one in-flight OTP exchange,
// returned by both the send and resend endpoints. The attempsLeft wire name
// is a backend misspelling we have to live with.
type OTPChallengeState struct {
	RequesterToken  string    `json:"otpRequesterToken"`
	AllowedRetryAt  time.Time `json:"allowedRetryAt"`
	TokenExpireAt   time.Time `json:"tokenExpireAt"`
	AttemptsLeft    int       `json:"attempsLeft"`
	ResendTimesLeft int       `json:"resendTimesLeft"`
}

// OTPVerifyResult carries the one-time success token minted on a correct code.
type OTPVerifyResult struct {
	SuccessToken string    `json:"otpSuccessToken"`
	ExpireAt     time.Time `json:"otpSuccessTokenExpireAt"`
}

// RegistrationType distinguishes the two registrant populations.
type RegistrationType int

const (
	TypeContractor RegistrationType = 0
	TypeSupplier   RegistrationType = 1
)

func (t RegistrationType) String() string {
	switch t {
	case TypeContractor:
		return "Contractor"
	case TypeSupplier:
		return "Supplier"
	}
	return "Unknown"
}

// FileAttachment is an uploaded document carried inside a registration draft.
type FileAttachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// RegistrationDraft is the accumulated, not-yet-submitted multi-step form
// state. It cannot be submitted until OTPSuccessToken is set.
type RegistrationDraft struct {
	Type RegistrationType

	CompanyName             string
	Country                 string
	City                    string
	CommercialLicenseNumber string
	Website                 string
	CommercialLicenseFile   *FileAttachment
	TaxLicenseFile          *FileAttachment

	FirstName   string
	LastName    string
	JobTitle    string
	Email       string
	PhoneNumber string

	Password      string
	RetryPassword string

	OTPSuccessToken string
}

// RegistrationStatus is the review status of a submitted registration request.
type RegistrationStatus int

const (
	StatusPending  RegistrationStatus = 1
	StatusApproved RegistrationStatus = 2
	StatusDenied   RegistrationStatus = 3
)

func (s RegistrationStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusDenied:
		return "Denied"
	}
	return "Unknown"
}

// Profile is the current user's (or, for admins, any user's) profile.
type Profile struct {
	ID                      string     `json:"id"`
	Email                   string     `json:"email"`
	FirstName               string     `json:"firstName"`
	LastName                string     `json:"lastName"`
	Role                    Role       `json:"role"`
	UserClass               UserClass  `json:"userClass"`
	Enabled                 bool       `json:"enabled"`
	PhoneNumber             string     `json:"phoneNumber"`
	CompanyName             string     `json:"companyName"`
	Country                 string     `json:"country"`
	City                    string     `json:"city"`
	CommercialLicenseNumber string     `json:"commercialLicenseNumber"`
	Website                 string     `json:"website"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               *time.Time `json:"updatedAt"`
}

// ProfileUpdate is the subset of profile fields a user may change.
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	City      string `json:"city"`
}

// UserListItem is one row of the admin user directory.
type UserListItem struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        Role       `json:"role"`
	UserClass   UserClass  `json:"userClass"`
	Enabled     bool       `json:"enabled"`
	PhoneNumber string     `json:"phoneNumber"`
	City        string     `json:"city"`
	CompanyName string     `json:"companyName"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// RegistrationRequest is one submitted registration awaiting review.
type RegistrationRequest struct {
	ID                      string             `json:"id"`
	CompanyName             string             `json:"companyName"`
	Country                 string             `json:"country"`
	City                    string             `json:"city"`
	CommercialLicenseNumber string             `json:"commercialLicenseNumber"`
	Website                 string             `json:"website"`
	FirstName               string             `json:"firstName"`
	LastName                string             `json:"lastName"`
	JobTitle                string             `json:"jobTitle"`
	Email                   string             `json:"email"`
	PhoneNumber             string             `json:"phoneNumber"`
	CurrentStatus           RegistrationStatus `json:"currentStatus"`
	Type                    RegistrationType   `json:"type"`
	CommercialLicenseURL    *string            `json:"commercialLicenseUrl"`
	TaxLicenseURL           *string            `json:"taxLicenseUrl"`
	CreatedAt               time.Time          `json:"createdAt"`
	UpdatedAt               *time.Time         `json:"updatedAt"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// UserFilter narrows and orders the admin user listing.
type UserFilter struct {
	City           string
	NameSearch     string
	EmailSearch    string
	SortBy         string
	SortDescending bool
}

// RegistrationRequestFilter narrows the registration-request listing.
type RegistrationRequestFilter struct {
	Status                  *RegistrationStatus
	Email                   string
	CommercialLicenseNumber string
}
