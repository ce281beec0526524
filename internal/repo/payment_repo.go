// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Payment model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a payment is not found, GetPayment returns gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - Inserting a duplicate correlation key surfaces the driver's unique
//     constraint error; callers detect it via IsDuplicate.
//
// Concurrency:
//   - UpdatePaymentStatus is a single UPDATE keyed on the unique correlation
//     key. It is atomic at the storage layer, so two concurrent webhook
//     deliveries for the same intent cannot interleave into an inconsistent
//     row. Callers are expected to apply only idempotent transitions.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hacktowin/go-hacktowin-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePayment inserts a new pending Payment row keyed by the gateway intent
// identifier. Exactly one row may exist per intent; a second insert for the
// same intentID fails with a unique constraint error (see IsDuplicate).
func CreatePayment(ctx context.Context, db *gorm.DB, intentID string, amount int64, currency string) (*domain.Payment, error) {
	p := &domain.Payment{
		StripePaymentID: intentID,
		Amount:          amount,
		Currency:        currency,
		Status:          domain.PaymentPending,
		CreatedAt:       time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPayment fetches a payment by its gateway intent identifier. If the
// record does not exist, it returns ErrNotFound.
func GetPayment(ctx context.Context, db *gorm.DB, intentID string) (*domain.Payment, error) {
	var p domain.Payment
	err := db.WithContext(ctx).
		Where("stripe_payment_id = ?", intentID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePaymentStatus sets the status of the payment keyed by intentID,
// update-if-exists semantics: it returns the number of rows affected (0 or 1)
// so callers can observe the missing-record case without treating it as a
// hard error. Re-applying the current status reports one affected row.
func UpdatePaymentStatus(ctx context.Context, db *gorm.DB, intentID string, status domain.PaymentStatus) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Where("stripe_payment_id = ?", intentID).
		Update("status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CountPayments returns the total number of payment rows. Used by tests and
// the webhook flow to assert that rejected events caused no writes.
func CountPayments(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Payment{}).Count(&total).Error
	return total, err
}

// IsDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
