// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hacktowin/go-hacktowin-backend/internal/domain"
)

// CreateUser inserts a new user row. The caller supplies name, lowercase
// email, password hash, and role; the row ID and registration timestamp are
// assigned here. Duplicate emails surface the driver's unique constraint
// error (see IsDuplicate).
func CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash string, role domain.Role) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		RegisteredAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail fetches a user by email. If the record does not exist, it
// returns ErrNotFound.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}
