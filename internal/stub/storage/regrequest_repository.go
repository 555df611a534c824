package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/danaam/danaam-go/domain"
)

// DBRegistrationRequest is the database model for a submitted registration.
type DBRegistrationRequest struct {
	ID                         string `gorm:"primaryKey;size:36"`
	CompanyName                string `gorm:"size:255"`
	Country                    string `gorm:"size:128"`
	City                       string `gorm:"size:128"`
	CommercialLicenseNumber    string `gorm:"index;size:64"`
	Website                    string `gorm:"size:255"`
	CommercialLicenseObjectKey string `gorm:"size:255"`
	TaxLicenseObjectKey        string `gorm:"size:255"`
	FirstName                  string `gorm:"size:128"`
	LastName                   string `gorm:"size:128"`
	JobTitle                   string `gorm:"size:128"`
	Email                      string `gorm:"index;size:255"`
	PhoneNumber                string `gorm:"size:32"`
	PasswordHash               string `gorm:"column:password"`
	Type                       int    `gorm:"index"`
	CurrentStatus              int    `gorm:"index"`
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// TableName returns the table name for GORM.
func (DBRegistrationRequest) TableName() string {
	return "registration_requests"
}

// RegistrationRequestRepository implements
// domain.RegistrationRequestRepository using GORM.
type RegistrationRequestRepository struct {
	db *gorm.DB
}

// NewRegistrationRequestRepository creates a new repository.
func NewRegistrationRequestRepository(db *gorm.DB) *RegistrationRequestRepository {
	return &RegistrationRequestRepository{db: db}
}

// Create implements domain.RegistrationRequestRepository.
func (r *RegistrationRequestRepository) Create(ctx context.Context, req *domain.StubRegistrationRequest) error {
	return r.db.WithContext(ctx).Create(reqToDB(req)).Error
}

// FindByID implements domain.RegistrationRequestRepository.
func (r *RegistrationRequestRepository) FindByID(ctx context.Context, id string) (*domain.StubRegistrationRequest, error) {
	var row DBRegistrationRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return dbToReq(&row), nil
}

// FindPendingByEmail implements domain.RegistrationRequestRepository.
func (r *RegistrationRequestRepository) FindPendingByEmail(ctx context.Context, email string) (*domain.StubRegistrationRequest, error) {
	var row DBRegistrationRequest
	err := r.db.WithContext(ctx).
		Where("email = ? AND current_status = ?", email, int(domain.StatusPending)).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return dbToReq(&row), nil
}

// UpdateStatus implements domain.RegistrationRequestRepository.
func (r *RegistrationRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus) error {
	res := r.db.WithContext(ctx).Model(&DBRegistrationRequest{}).
		Where("id = ?", id).Update("current_status", int(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List implements domain.RegistrationRequestRepository.
func (r *RegistrationRequestRepository) List(ctx context.Context, page, pageSize int, filter domain.RegistrationRequestFilter) ([]domain.StubRegistrationRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&DBRegistrationRequest{})
	if filter.Status != nil {
		q = q.Where("current_status = ?", int(*filter.Status))
	}
	if filter.Email != "" {
		q = q.Where("email LIKE ?", "%"+filter.Email+"%")
	}
	if filter.CommercialLicenseNumber != "" {
		q = q.Where("commercial_license_number = ?", filter.CommercialLicenseNumber)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DBRegistrationRequest
	err := q.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	out := make([]domain.StubRegistrationRequest, len(rows))
	for i := range rows {
		out[i] = *dbToReq(&rows[i])
	}
	return out, total, nil
}

func reqToDB(req *domain.StubRegistrationRequest) *DBRegistrationRequest {
	return &DBRegistrationRequest{
		ID:                         req.ID,
		CompanyName:                req.CompanyName,
		Country:                    req.Country,
		City:                       req.City,
		CommercialLicenseNumber:    req.CommercialLicenseNumber,
		Website:                    req.Website,
		CommercialLicenseObjectKey: req.CommercialLicenseObjectKey,
		TaxLicenseObjectKey:        req.TaxLicenseObjectKey,
		FirstName:                  req.FirstName,
		LastName:                   req.LastName,
		JobTitle:                   req.JobTitle,
		Email:                      req.Email,
		PhoneNumber:                req.PhoneNumber,
		PasswordHash:               req.PasswordHash,
		Type:                       int(req.Type),
		CurrentStatus:              int(req.CurrentStatus),
		CreatedAt:                  req.CreatedAt,
		UpdatedAt:                  req.UpdatedAt,
	}
}

func dbToReq(row *DBRegistrationRequest) *domain.StubRegistrationRequest {
	return &domain.StubRegistrationRequest{
		ID:                         row.ID,
		CompanyName:                row.CompanyName,
		Country:                    row.Country,
		City:                       row.City,
		CommercialLicenseNumber:    row.CommercialLicenseNumber,
		Website:                    row.Website,
		CommercialLicenseObjectKey: row.CommercialLicenseObjectKey,
		TaxLicenseObjectKey:        row.TaxLicenseObjectKey,
		FirstName:                  row.FirstName,
		LastName:                   row.LastName,
		JobTitle:                   row.JobTitle,
		Email:                      row.Email,
		PhoneNumber:                row.PhoneNumber,
		PasswordHash:               row.PasswordHash,
		Type:                       domain.RegistrationType(row.Type),
		CurrentStatus:              domain.RegistrationStatus(row.CurrentStatus),
		CreatedAt:                  row.CreatedAt,
		UpdatedAt:                  row.UpdatedAt,
	}
}

// Compile-time interface compliance verification
var _ domain.RegistrationRequestRepository = (*RegistrationRequestRepository)(nil)
