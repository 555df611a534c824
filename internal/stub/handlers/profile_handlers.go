package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danaam/danaam-go/domain"
)

// ProfileHandlers serves the /profile route group.
type ProfileHandlers struct {
	userRepo domain.UserRepository
}

// NewProfileHandlers creates new profile handlers.
func NewProfileHandlers(userRepo domain.UserRepository) *ProfileHandlers {
	return &ProfileHandlers{userRepo: userRepo}
}

// Get handles GET /profile, returning the caller's own profile.
func (h *ProfileHandlers) Get(c *gin.Context) {
	userID := c.GetString("user_id")
	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, toProfile(user))
}

// GetByID handles GET /profile/:id. Access is restricted to admins by the
// policy layer, not here.
func (h *ProfileHandlers) GetByID(c *gin.Context) {
	user, err := h.userRepo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, toProfile(user))
}

// Update handles PATCH /profile.
func (h *ProfileHandlers) Update(c *gin.Context) {
	var req domain.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	user, err := h.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.City != "" {
		user.City = req.City
	}
	if err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to update profile"})
		return
	}
	c.Status(http.StatusNoContent)
}

func toProfile(u *domain.StubUser) *domain.Profile {
	p := &domain.Profile{
		ID:                      u.ID,
		Email:                   u.Email,
		FirstName:               u.FirstName,
		LastName:                u.LastName,
		Role:                    u.Role,
		UserClass:               u.UserClass,
		Enabled:                 u.Enabled,
		PhoneNumber:             u.PhoneNumber,
		CompanyName:             u.CompanyName,
		Country:                 u.Country,
		City:                    u.City,
		CommercialLicenseNumber: u.CommercialLicenseNumber,
		Website:                 u.Website,
		CreatedAt:               u.CreatedAt,
	}
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}
