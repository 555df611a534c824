package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/danaam/danaam-go/domain"
)

// BcryptService implements domain.PasswordService.
type BcryptService struct {
	cost int
}

// NewPasswordService creates a new password service.
func NewPasswordService() *BcryptService {
	return &BcryptService{cost: bcrypt.DefaultCost}
}

// Hash implements domain.PasswordService.
func (p *BcryptService) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService.
func (p *BcryptService) Verify(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// Compile-time interface compliance verification
var _ domain.PasswordService = (*BcryptService)(nil)
