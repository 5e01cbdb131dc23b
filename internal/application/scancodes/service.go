package scancodes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sfms-backend/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const hashCost = 10

var ErrMissingFields = errors.New("email and pin are required")

type Service struct {
	DB *gorm.DB
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetScanCode creates the scan user or replaces its code.
func (s *Service) SetScanCode(ctx context.Context, email, pin, displayName string) (*domain.ScanUser, error) {
	email = normalizeEmail(email)
	if email == "" || pin == "" {
		return nil, ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash scan code: %w", err)
	}

	var u domain.ScanUser
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			u = domain.ScanUser{Email: email, DisplayName: strings.TrimSpace(displayName), ScanCodeHash: string(hash)}
			return tx.Create(&u).Error
		}
		if err != nil {
			return err
		}
		updates := map[string]interface{}{"scan_code_hash": string(hash)}
		if dn := strings.TrimSpace(displayName); dn != "" {
			updates["display_name"] = dn
		}
		return tx.Model(&u).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Verify checks email + pin. Unknown emails and wrong codes both return
// ErrInvalidScanCode.
func (s *Service) Verify(ctx context.Context, email, pin string) (*domain.ScanUser, error) {
	email = normalizeEmail(email)
	if email == "" || pin == "" {
		return nil, ErrMissingFields
	}
	var u domain.ScanUser
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidScanCode
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.ScanCodeHash), []byte(pin)); err != nil {
		return nil, domain.ErrInvalidScanCode
	}
	return &u, nil
}
