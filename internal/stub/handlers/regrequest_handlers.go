package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danaam/danaam-go/domain"
)

const maxLicenseFileSize = 10 << 20

var submitEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationHandlers serves registration submission and admin review.
type RegistrationHandlers struct {
	regRepo     domain.RegistrationRequestRepository
	userRepo    domain.UserRepository
	passwordSvc domain.PasswordService
	challenges  domain.ChallengeStore
	notifier    domain.NotificationService
}

// NewRegistrationHandlers creates new registration handlers.
func NewRegistrationHandlers(
	regRepo domain.RegistrationRequestRepository,
	userRepo domain.UserRepository,
	passwordSvc domain.PasswordService,
	challenges domain.ChallengeStore,
	notifier domain.NotificationService,
) *RegistrationHandlers {
	return &RegistrationHandlers{
		regRepo:     regRepo,
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		challenges:  challenges,
		notifier:    notifier,
	}
}

// Submit handles POST /registration-requests. The payload is multipart form
// data; validation failures come back as per-field message lists keyed by
// PascalCase field names, matching the production API.
func (h *RegistrationHandlers) Submit(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxLicenseFileSize); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid multipart payload"})
		return
	}
	form := c.Request.MultipartForm

	value := func(name string) string {
		if vs := form.Value[name]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	draft := &domain.StubRegistrationRequest{
		CompanyName:             value("companyName"),
		Country:                 value("country"),
		City:                    value("city"),
		CommercialLicenseNumber: value("commercialLicenseNumber"),
		Website:                 value("website"),
		FirstName:               value("firstName"),
		LastName:                value("lastName"),
		JobTitle:                value("jobTitle"),
		Email:                   value("email"),
		PhoneNumber:             value("phoneNumber"),
	}

	fieldErrors := map[string][]string{}
	addErr := func(field, msg string) {
		fieldErrors[field] = append(fieldErrors[field], msg)
	}

	required := []struct{ field, val string }{
		{"CompanyName", draft.CompanyName},
		{"Country", draft.Country},
		{"City", draft.City},
		{"CommercialLicenseNumber", draft.CommercialLicenseNumber},
		{"FirstName", draft.FirstName},
		{"LastName", draft.LastName},
		{"JobTitle", draft.JobTitle},
		{"Email", draft.Email},
		{"PhoneNumber", draft.PhoneNumber},
	}
	for _, r := range required {
		if r.val == "" {
			addErr(r.field, fmt.Sprintf("The %s field is required.", r.field))
		}
	}
	if draft.Email != "" && !submitEmailRe.MatchString(draft.Email) {
		addErr("Email", "The Email field is not a valid e-mail address.")
	}

	password := value("password")
	retryPassword := value("retryPassword")
	switch {
	case password == "":
		addErr("Password", "The Password field is required.")
	case len(password) < 8:
		addErr("Password", "Password must be at least 8 characters long.")
	case password != retryPassword:
		addErr("RetryPassword", "Passwords do not match.")
	}

	typeValue, err := strconv.Atoi(value("type"))
	if err != nil || (typeValue != int(domain.TypeContractor) && typeValue != int(domain.TypeSupplier)) {
		addErr("Type", "The Type field must be a valid registration type.")
	}
	draft.Type = domain.RegistrationType(typeValue)

	commercialFile, commercialKey, err := h.saveLicense(form, "commercialLicenseFile")
	if err != nil {
		addErr("CommercialLicenseFile", err.Error())
	}
	_, taxKey, err := h.saveLicense(form, "taxLicenseFile")
	if err != nil {
		addErr("TaxLicenseFile", err.Error())
	}
	if commercialFile == nil {
		addErr("CommercialLicenseFile", "The CommercialLicenseFile field is required.")
	}
	draft.CommercialLicenseObjectKey = commercialKey
	draft.TaxLicenseObjectKey = taxKey

	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	successToken := value("registerationSuccessToken")
	if successToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   domain.CodeOTPNotFound,
			"detail": "OTP success token is required",
		})
		return
	}
	verifiedEmail, err := h.challenges.TakeSuccess(c.Request.Context(), successToken, domain.PurposeRegistration)
	if err != nil || !strings.EqualFold(verifiedEmail, draft.Email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   domain.CodeOTPNotFound,
			"detail": "Invalid or expired success token",
		})
		return
	}

	if _, err := h.userRepo.FindByEmail(c.Request.Context(), draft.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"errors": map[string][]string{
			"Email": {"An account with this email already exists."},
		}})
		return
	}
	if _, err := h.regRepo.FindPendingByEmail(c.Request.Context(), draft.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"errors": map[string][]string{
			"Email": {"A registration request for this email is already pending review."},
		}})
		return
	}

	hash, err := h.passwordSvc.Hash(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to process registration"})
		return
	}
	draft.ID = uuid.NewString()
	draft.PasswordHash = hash
	draft.CurrentStatus = domain.StatusPending

	if err := h.regRepo.Create(c.Request.Context(), draft); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to process registration"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": draft.ID})
}

// saveLicense reads one optional uploaded license and returns a synthetic
// object key. The stub keeps no file contents, only the fact of the upload.
func (h *RegistrationHandlers) saveLicense(form *multipart.Form, field string) (*multipart.FileHeader, string, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, "", nil
	}
	header := files[0]
	if header.Size > maxLicenseFileSize {
		return nil, "", fmt.Errorf("The %s file exceeds the maximum allowed size.", field)
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("The %s file could not be read.", field)
	}
	defer f.Close()
	if _, err := io.Copy(io.Discard, f); err != nil {
		return nil, "", fmt.Errorf("The %s file could not be read.", field)
	}
	return header, "uploads/" + uuid.NewString() + "/" + header.Filename, nil
}

// List handles GET /registration-requests. Admin only.
func (h *RegistrationHandlers) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := domain.RegistrationRequestFilter{
		Email:                   c.Query("email"),
		CommercialLicenseNumber: c.Query("commercialLicenseNumber"),
	}
	if raw := c.Query("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid status filter"})
			return
		}
		status := domain.RegistrationStatus(n)
		filter.Status = &status
	}

	reqs, total, err := h.regRepo.List(c.Request.Context(), page, pageSize, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list registration requests"})
		return
	}
	items := make([]domain.RegistrationRequest, 0, len(reqs))
	for i := range reqs {
		items = append(items, toRegistrationRequest(&reqs[i]))
	}
	c.JSON(http.StatusOK, pageOf(items, total, page, pageSize))
}

// Get handles GET /registration-requests/:id. Admin only.
func (h *RegistrationHandlers) Get(c *gin.Context) {
	req, err := h.regRepo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Registration request not found"})
		return
	}
	c.JSON(http.StatusOK, toRegistrationRequest(req))
}

// Approve handles POST /registration-requests/:id/approve. Approval creates
// the user account from the stored request.
func (h *RegistrationHandlers) Approve(c *gin.Context) {
	req, err := h.regRepo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Registration request not found"})
		return
	}
	if req.CurrentStatus != domain.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"detail": "Registration request has already been reviewed"})
		return
	}

	class := domain.ClassContractors
	if req.Type == domain.TypeSupplier {
		class = domain.ClassSuppliers
	}
	user := &domain.StubUser{
		ID:                      uuid.NewString(),
		Email:                   req.Email,
		PasswordHash:            req.PasswordHash,
		Role:                    domain.RoleUser,
		UserClass:               class,
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		JobTitle:                req.JobTitle,
		CompanyName:             req.CompanyName,
		Country:                 req.Country,
		City:                    req.City,
		CommercialLicenseNumber: req.CommercialLicenseNumber,
		Website:                 req.Website,
		PhoneNumber:             req.PhoneNumber,
		Enabled:                 true,
		CreatedAt:               time.Now(),
	}
	if err := h.userRepo.Create(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to approve registration request"})
		return
	}
	if err := h.regRepo.UpdateStatus(c.Request.Context(), req.ID, domain.StatusApproved); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to approve registration request"})
		return
	}

	h.notifier.SendEmail(req.Email, "Your DANAAM registration was approved",
		"Your account has been approved. You can now log in with your registered email and password.")
	c.Status(http.StatusNoContent)
}

// Deny handles POST /registration-requests/:id/deny. Admin only.
func (h *RegistrationHandlers) Deny(c *gin.Context) {
	req, err := h.regRepo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Registration request not found"})
		return
	}
	if req.CurrentStatus != domain.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"detail": "Registration request has already been reviewed"})
		return
	}
	if err := h.regRepo.UpdateStatus(c.Request.Context(), req.ID, domain.StatusDenied); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to deny registration request"})
		return
	}

	h.notifier.SendEmail(req.Email, "Your DANAAM registration was denied",
		"Unfortunately your registration request was not approved. Contact support for details.")
	c.Status(http.StatusNoContent)
}

func toRegistrationRequest(r *domain.StubRegistrationRequest) domain.RegistrationRequest {
	out := domain.RegistrationRequest{
		ID:                      r.ID,
		CompanyName:             r.CompanyName,
		Country:                 r.Country,
		City:                    r.City,
		CommercialLicenseNumber: r.CommercialLicenseNumber,
		Website:                 r.Website,
		FirstName:               r.FirstName,
		LastName:                r.LastName,
		JobTitle:                r.JobTitle,
		Email:                   r.Email,
		PhoneNumber:             r.PhoneNumber,
		CurrentStatus:           r.CurrentStatus,
		Type:                    r.Type,
		CreatedAt:               r.CreatedAt,
	}
	if r.CommercialLicenseObjectKey != "" {
		url := "/files/" + r.CommercialLicenseObjectKey
		out.CommercialLicenseURL = &url
	}
	if r.TaxLicenseObjectKey != "" {
		url := "/files/" + r.TaxLicenseObjectKey
		out.TaxLicenseURL = &url
	}
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
