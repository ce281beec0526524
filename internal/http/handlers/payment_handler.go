// Payment HTTP handlers.
//
// This file exposes the payment endpoints:
//   - POST /create-payment-intent  (create an intent, return its client secret)
//   - POST /stripe-webhook         (gateway event notifications)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. The webhook handler is the one
// place in the API that must see the raw request bytes: signature verification
// runs over the exact payload received, so the body is read here and never
// bound through JSON middleware.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hacktowin/go-hacktowin-backend/internal/http/middleware"
	"github.com/hacktowin/go-hacktowin-backend/internal/services"
)

// maxWebhookBytes caps webhook payload reads. Gateway events are small; a
// larger body is either misrouted traffic or abuse.
const maxWebhookBytes = 65536

// stripeSignatureHeader carries the signature the gateway computed over the
// raw payload.
const stripeSignatureHeader = "Stripe-Signature"

// PaymentService defines the payment operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PaymentService interface {
	// CreateIntent creates an intent upstream, persists a pending record,
	// and returns the gateway client secret.
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
	// HandleEvent authenticates a raw webhook payload and applies the
	// resulting status transition idempotently.
	HandleEvent(ctx context.Context, payload []byte, sigHeader string) error
}

// CreateIntentRequest is the JSON payload for creating a payment intent.
type CreateIntentRequest struct {
	// Amount to charge in minor currency units; must be positive.
	Amount *int64 `json:"amount" example:"500"`
	// Currency is an optional ISO code; defaults to the platform currency.
	Currency string `json:"currency" example:"inr"`
}

// CreateIntentResponse carries the client secret the frontend needs to
// complete payment directly with the gateway.
type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// CreatePaymentIntent godoc
// @ID          createPaymentIntent
// @Summary     Create a payment intent
// @Description Creates an intent with the payment gateway, records it locally as pending, and returns the client secret.
// @Tags        Payments
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateIntentRequest  true  "Amount and optional currency"
//
// @Success     200  {object}  handlers.CreateIntentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or non-positive amount"
// @Failure     500  {object}  handlers.ErrorResponse  "Gateway or persistence failure"
// @Router      /create-payment-intent [post]
func (h *Handlers) CreatePaymentIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Amount == nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidAmount, "amount is required")
		return
	}

	secret, err := h.paySvc.CreateIntent(c.Request.Context(), *req.Amount, req.Currency)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			fail(c, http.StatusBadRequest, ErrCodeInvalidAmount, services.ErrInvalidAmount.Error())
		case errors.Is(err, services.ErrGateway):
			fail(c, http.StatusInternalServerError, ErrCodeGatewayError, "payment gateway request failed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to create payment intent")
		}
		return
	}
	ok(c, http.StatusOK, CreateIntentResponse{ClientSecret: secret})
}

// StripeWebhook godoc
// @ID          stripeWebhook
// @Summary     Receive gateway events
// @Description Verifies the event signature over the raw body and reconciles the referenced payment record. Unknown event types are acknowledged.
// @Tags        Payments
// @Accept      json
//
// @Param       Stripe-Signature  header  string  true  "Gateway signature over the raw payload"
//
// @Success     200  {string}  string  ""
// @Failure     400  {object}  handlers.ErrorResponse  "Signature verification failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Persistence failure (gateway will retry)"
// @Router      /stripe-webhook [post]
func (h *Handlers) StripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read request body")
		return
	}

	err = h.paySvc.HandleEvent(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		if errors.Is(err, services.ErrBadSignature) {
			middleware.LoggerFrom(c).Warn().Msg("webhook signature verification failed")
			fail(c, http.StatusBadRequest, ErrCodeSignatureInvalid, "signature verification failed")
			return
		}
		// Answering non-2xx makes the gateway redeliver, which is what we
		// want when the status update did not land.
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "failed to process event")
		return
	}

	c.Status(http.StatusOK)
}
