package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/danaam/danaam-go/domain"
)

// DBUser is the database model for a platform user.
type DBUser struct {
	ID                      string `gorm:"primaryKey;size:36"`
	Email                   string `gorm:"uniqueIndex;size:255"`
	PasswordHash            string `gorm:"column:password"`
	Role                    string `gorm:"index;size:32"`
	UserClass               string `gorm:"index;size:32"`
	FirstName               string `gorm:"size:128"`
	LastName                string `gorm:"size:128"`
	JobTitle                string `gorm:"size:128"`
	CompanyName             string `gorm:"size:255"`
	Country                 string `gorm:"size:128"`
	City                    string `gorm:"index;size:128"`
	CommercialLicenseNumber string `gorm:"size:64"`
	Website                 string `gorm:"size:255"`
	PhoneNumber             string `gorm:"size:32"`
	Enabled                 bool   `gorm:"index"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
	DeletedAt               gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM.
func (DBUser) TableName() string {
	return "users"
}

// UserRepository implements domain.UserRepository using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create implements domain.UserRepository.
func (r *UserRepository) Create(ctx context.Context, user *domain.StubUser) error {
	return r.db.WithContext(ctx).Create(domainToDB(user)).Error
}

// FindByEmail implements domain.UserRepository.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.StubUser, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return dbToDomain(&dbUser), nil
}

// FindByID implements domain.UserRepository.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.StubUser, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return dbToDomain(&dbUser), nil
}

// Update implements domain.UserRepository.
func (r *UserRepository) Update(ctx context.Context, user *domain.StubUser) error {
	return r.db.WithContext(ctx).Save(domainToDB(user)).Error
}

// SetEnabled implements domain.UserRepository.
func (r *UserRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete implements domain.UserRepository (soft delete).
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DBUser{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// sortColumns whitelists the sortBy values the listing accepts.
var sortColumns = map[string]string{
	"email":       "email",
	"firstName":   "first_name",
	"lastName":    "last_name",
	"city":        "city",
	"companyName": "company_name",
	"createdAt":   "created_at",
}

// List implements domain.UserRepository with paging, filtering and sorting.
func (r *UserRepository) List(ctx context.Context, page, pageSize int, filter domain.UserFilter) ([]domain.StubUser, int64, error) {
	q := r.db.WithContext(ctx).Model(&DBUser{})
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if filter.NameSearch != "" {
		like := "%" + filter.NameSearch + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ?", like, like)
	}
	if filter.EmailSearch != "" {
		q = q.Where("email LIKE ?", "%"+filter.EmailSearch+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := column
	if filter.SortDescending {
		order += " DESC"
	}

	var rows []DBUser
	err := q.Order(order).Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]domain.StubUser, len(rows))
	for i := range rows {
		users[i] = *dbToDomain(&rows[i])
	}
	return users, total, nil
}

func domainToDB(user *domain.StubUser) *DBUser {
	return &DBUser{
		ID:                      user.ID,
		Email:                   user.Email,
		PasswordHash:            user.PasswordHash,
		Role:                    string(user.Role),
		UserClass:               string(user.UserClass),
		FirstName:               user.FirstName,
		LastName:                user.LastName,
		JobTitle:                user.JobTitle,
		CompanyName:             user.CompanyName,
		Country:                 user.Country,
		City:                    user.City,
		CommercialLicenseNumber: user.CommercialLicenseNumber,
		Website:                 user.Website,
		PhoneNumber:             user.PhoneNumber,
		Enabled:                 user.Enabled,
		CreatedAt:               user.CreatedAt,
		UpdatedAt:               user.UpdatedAt,
	}
}

func dbToDomain(dbUser *DBUser) *domain.StubUser {
	return &domain.StubUser{
		ID:                      dbUser.ID,
		Email:                   dbUser.Email,
		PasswordHash:            dbUser.PasswordHash,
		Role:                    domain.Role(dbUser.Role),
		UserClass:               domain.UserClass(dbUser.UserClass),
		FirstName:               dbUser.FirstName,
		LastName:                dbUser.LastName,
		JobTitle:                dbUser.JobTitle,
		CompanyName:             dbUser.CompanyName,
		Country:                 dbUser.Country,
		City:                    dbUser.City,
		CommercialLicenseNumber: dbUser.CommercialLicenseNumber,
		Website:                 dbUser.Website,
		PhoneNumber:             dbUser.PhoneNumber,
		Enabled:                 dbUser.Enabled,
		CreatedAt:               dbUser.CreatedAt,
		UpdatedAt:               dbUser.UpdatedAt,
	}
}

// Compile-time interface compliance verification
var _ domain.UserRepository = (*UserRepository)(nil)
