package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danaam/danaam-go/domain"
)

// UserHandlers serves the admin /users route group.
type UserHandlers struct {
	userRepo domain.UserRepository
}

// NewUserHandlers creates new user handlers.
func NewUserHandlers(userRepo domain.UserRepository) *UserHandlers {
	return &UserHandlers{userRepo: userRepo}
}

// List handles GET /users.
func (h *UserHandlers) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	filter := domain.UserFilter{
		City:           c.Query("city"),
		NameSearch:     c.Query("nameSearch"),
		EmailSearch:    c.Query("emailSearch"),
		SortBy:         c.Query("sortBy"),
		SortDescending: c.Query("sortDescending") == "true",
	}

	users, total, err := h.userRepo.List(c.Request.Context(), page, pageSize, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to list users"})
		return
	}

	items := make([]domain.UserListItem, 0, len(users))
	for i := range users {
		items = append(items, toUserListItem(&users[i]))
	}
	c.JSON(http.StatusOK, pageOf(items, total, page, pageSize))
}

// Activate handles PATCH /users/:id/activate.
func (h *UserHandlers) Activate(c *gin.Context) {
	h.setEnabled(c, true)
}

// Deactivate handles PATCH /users/:id/deactivate.
func (h *UserHandlers) Deactivate(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *UserHandlers) setEnabled(c *gin.Context, enabled bool) {
	if err := h.userRepo.SetEnabled(c.Request.Context(), c.Param("id"), enabled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /users/:id.
func (h *UserHandlers) Delete(c *gin.Context) {
	if err := h.userRepo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func toUserListItem(u *domain.StubUser) domain.UserListItem {
	item := domain.UserListItem{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		UserClass:   u.UserClass,
		Enabled:     u.Enabled,
		PhoneNumber: u.PhoneNumber,
		City:        u.City,
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt,
	}
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		item.UpdatedAt = &t
	}
	return item
}

// pageParams reads the page/pageSize query pair, clamped to sane bounds.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func pageOf[T any](items []T, total int64, page, pageSize int) domain.Page[T] {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return domain.Page[T]{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
