// Package gateway wraps the third-party payment processor. It exposes the
// two collaborator operations the backend needs: creating a payment intent
// and authenticating a signed webhook event. Everything vendor-specific
// (SDK types, signature scheme, event type strings) stays behind this
// package so the service layer works with a small, typed surface.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrBadSignature is returned by VerifyEvent when the payload does not carry
// a valid signature for the configured webhook secret. Malformed signature
// headers fail the same way as tampered payloads.
var ErrBadSignature = errors.New("webhook signature verification failed")

// Intent is the result of creating a payment intent upstream. The ID is the
// correlation key persisted locally; the ClientSecret is handed to the
// caller so they can complete payment directly with the gateway.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

// EventKind is the tagged variant over the finite set of webhook event kinds
// this backend reconciles. Anything else maps to EventUnknown, which callers
// must acknowledge without error so the gateway stops retransmitting.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventIntentSucceeded
	EventIntentFailed
)

// Event is an authenticated webhook notification. IntentID is only populated
// for recognized kinds; Type always carries the raw gateway event type for
// logging.
type Event struct {
	Kind     EventKind
	Type     string
	IntentID string
}

// Stripe event types recognized by the reconciliation flow.
const (
	eventTypeIntentSucceeded = "payment_intent.succeeded"
	eventTypeIntentFailed    = "payment_intent.payment_failed"
)

// StripeGateway talks to Stripe via the official SDK.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway builds a gateway client from the account's secret API key
// and the shared webhook signing secret.
func NewStripeGateway(apiKey, webhookSecret string) *StripeGateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret}
}

// CreateIntent creates a payment intent upstream for the given amount in
// minor units and currency code. Automatic payment methods are enabled so
// the frontend can offer whatever methods the account supports.
//
// This call is not idempotent: retrying after a downstream failure mints a
// new intent upstream.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string) (Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// VerifyEvent authenticates payload against sigHeader using the webhook
// signing secret and maps the event to the typed variant. Verification runs
// over the exact bytes received; callers must not re-serialize the body
// before passing it here.
func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	// Accounts configured with an older dashboard API version still deliver
	// valid events; only the signature decides authenticity here.
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	out := Event{Type: string(ev.Type)}
	switch out.Type {
	case eventTypeIntentSucceeded:
		out.Kind = EventIntentSucceeded
	case eventTypeIntentFailed:
		out.Kind = EventIntentFailed
	default:
		return out, nil
	}

	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(ev.Data.Raw, &obj); err != nil || obj.ID == "" {
		// Recognized type but unusable payload; treat as unknown rather
		// than bounce the delivery into a retry loop.
		return Event{Kind: EventUnknown, Type: out.Type}, nil
	}
	out.IntentID = obj.ID
	return out, nil
}
