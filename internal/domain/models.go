// Package domain defines the persistence models for payments and user
// accounts. These types are mapped with GORM and form the core data layer
// of the Hacktowin backend.
package domain

import (
	"time"
)

// PaymentStatus is the lifecycle state of a payment record.
//
// Valid transitions: pending → succeeded, pending → failed. Terminal states
// are never revisited, but re-applying the same terminal status is a no-op
// (the payment gateway delivers webhooks at-least-once).
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment represents one payment intent created with the gateway. The
// gateway-assigned intent ID is the correlation key that joins this local
// record with asynchronous webhook events.
//
// Fields:
//   - StripePaymentID: unique gateway intent identifier (correlation key).
//   - Amount: amount in minor currency units; immutable after creation.
//   - Currency: lowercase ISO currency code; immutable after creation.
//   - Status: pending, succeeded, or failed. Mutated only by the webhook
//     reconciliation flow.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Payment struct {
	ID              uint          `json:"-"                 gorm:"primaryKey"`
	StripePaymentID string        `json:"stripe_payment_id" gorm:"type:varchar(255);not null;uniqueIndex:ux_payments_intent"`
	Amount          int64         `json:"amount"            gorm:"not null"`
	Currency        string        `json:"currency"          gorm:"type:varchar(8);not null"`
	Status          PaymentStatus `json:"status"            gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','succeeded','failed')"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// TableName returns the database table name for Payment.
func (Payment) TableName() string { return "payments" }

// Role is the platform role assigned to a user account at registration.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleOrganizer   Role = "organizer"
	RoleJudge       Role = "judge"
)

// ValidRole reports whether r is one of the allowed platform roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleParticipant, RoleOrganizer, RoleJudge:
		return true
	}
	return false
}

// User represents a registered account. Created at registration, read at
// login, never mutated afterwards by this flow.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Name: display name provided at registration.
//   - Email: unique, stored lowercase.
//   - PasswordHash: bcrypt hash; the plaintext is never persisted.
//   - Role: participant, organizer, or judge.
//   - RegisteredAt: registration timestamp (UTC).
type User struct {
	ID           string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"          gorm:"type:varchar(255);not null"`
	Email        string    `json:"email"         gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"             gorm:"type:varchar(255);not null"`
	Role         Role      `json:"role"          gorm:"type:varchar(16);not null;check:role IN ('participant','organizer','judge')"`
	RegisteredAt time.Time `json:"registered_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }
