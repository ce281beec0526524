// Package services – PaymentService
//
// This file implements the PaymentService, which owns the payment status
// reconciliation flow: intent creation against the gateway, persistence of a
// pending record keyed by the gateway intent id, and idempotent application
// of asynchronous webhook events to that record. Service-level errors
// (e.g. ErrInvalidAmount, ErrBadSignature) are returned for predictable cases
// so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/hacktowin/go-hacktowin-backend/internal/domain"
	"github.com/hacktowin/go-hacktowin-backend/internal/gateway"
	"github.com/hacktowin/go-hacktowin-backend/internal/repo"
)

// reconcileMissing counts webhook events that referenced an intent id with no
// matching local record. A non-zero rate usually means orphaned intents from
// failed persistence, or out-of-order delivery.
var reconcileMissing = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "payment_reconcile_missing_total",
		Help: "Webhook events whose intent id matched no local payment record.",
	},
	[]string{"event_type"},
)

func init() {
	prometheus.MustRegister(reconcileMissing)
}

// Gateway defines the payment processor contract required by PaymentService.
// Implementations must verify webhook signatures over the exact raw bytes
// received.
type Gateway interface {
	// CreateIntent creates a payment intent upstream and returns its id and
	// client secret. The call is not idempotent.
	CreateIntent(ctx context.Context, amount int64, currency string) (gateway.Intent, error)

	// VerifyEvent authenticates a raw webhook payload against its signature
	// header and maps it to a typed event.
	VerifyEvent(payload []byte, sigHeader string) (gateway.Event, error)
}

// PaymentService implements intent creation and webhook reconciliation.
type PaymentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Gateway is the payment processor client.
	Gateway Gateway

	// DefaultCurrency is applied when a request omits the currency code.
	DefaultCurrency string
	// StrictReconcile escalates webhook events for unknown intent ids from a
	// benign debug log to an error-level anomaly report. The delivery is
	// acknowledged either way.
	StrictReconcile bool
}

// NewPaymentService constructs a PaymentService with the platform default
// currency.
func NewPaymentService(db *gorm.DB, gw Gateway) *PaymentService {
	return &PaymentService{
		DB:              db,
		Gateway:         gw,
		DefaultCurrency: "inr",
	}
}

// CreateIntent creates a payment intent upstream for amount minor units and
// persists a pending record keyed by the returned intent id. It returns the
// gateway client secret the caller needs to complete payment.
//
// Failure modes:
//   - amount <= 0: ErrInvalidAmount, nothing created anywhere.
//   - gateway failure: ErrGateway, no local state written.
//   - persistence failure after the upstream call: ErrPersistPayment. The
//     intent then exists upstream without a local record; it is logged with
//     its id so the orphan can be traced. A retry creates a new upstream
//     intent since the gateway call is not idempotent.
func (s *PaymentService) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = s.DefaultCurrency
	}

	intent, err := s.Gateway.CreateIntent(ctx, amount, currency)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGateway, err)
	}

	if _, err := repo.CreatePayment(ctx, s.DB, intent.ID, intent.Amount, intent.Currency); err != nil {
		log.Error().
			Err(err).
			Str("intent_id", intent.ID).
			Int64("amount", intent.Amount).
			Str("currency", intent.Currency).
			Msg("payment intent created upstream but local record insert failed; intent is orphaned")
		return "", fmt.Errorf("%w: %v", ErrPersistPayment, err)
	}

	return intent.ClientSecret, nil
}

// HandleEvent authenticates a webhook delivery and applies the resulting
// status transition to the matching payment record.
//
// Semantics:
//   - Signature failures return ErrBadSignature and change no state.
//   - Recognized events set the record status via a single atomic update
//     keyed on the intent id; re-delivery of the same event is a no-op
//     (last-write-wins), so processing is idempotent.
//   - Unknown event types are logged and dropped without error; the caller
//     must still acknowledge so the gateway stops retrying.
//   - A recognized event whose intent id matches no record is acknowledged.
//     It is counted, and logged at error level when StrictReconcile is set.
func (s *PaymentService) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	ev, err := s.Gateway.VerifyEvent(payload, sigHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	var status domain.PaymentStatus
	switch ev.Kind {
	case gateway.EventIntentSucceeded:
		status = domain.PaymentSucceeded
	case gateway.EventIntentFailed:
		status = domain.PaymentFailed
	default:
		log.Info().Str("event_type", ev.Type).Msg("unhandled webhook event type")
		return nil
	}

	rows, err := repo.UpdatePaymentStatus(ctx, s.DB, ev.IntentID, status)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistPayment, err)
	}
	if rows == 0 {
		reconcileMissing.WithLabelValues(ev.Type).Inc()
		lg := log.Debug()
		if s.StrictReconcile {
			lg = log.Error()
		}
		lg.Str("intent_id", ev.IntentID).
			Str("event_type", ev.Type).
			Msg("webhook referenced unknown payment intent")
		return nil
	}

	log.Info().
		Str("intent_id", ev.IntentID).
		Str("status", string(status)).
		Msg("payment status reconciled")
	return nil
}
