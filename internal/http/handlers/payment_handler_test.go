package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hacktowin/go-hacktowin-backend/internal/domain"
	"github.com/hacktowin/go-hacktowin-backend/internal/services"
)

// ---------- flexible stubs ----------

type stubPaySvc struct {
	createFn func(ctx context.Context, amount int64, currency string) (string, error)
	handleFn func(ctx context.Context, payload []byte, sigHeader string) error
}

func (s stubPaySvc) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	if s.createFn != nil {
		return s.createFn(ctx, amount, currency)
	}
	return "cs_test", nil
}

func (s stubPaySvc) HandleEvent(ctx context.Context, payload []byte, sigHeader string) error {
	if s.handleFn != nil {
		return s.handleFn(ctx, payload, sigHeader)
	}
	return nil
}

type stubAuthSvc struct {
	registerFn func(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, error)
}

func (s stubAuthSvc) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, name, email, password, role)
	}
	return &domain.User{ID: "u1", Name: name, Email: email, Role: role}, nil
}

func (s stubAuthSvc) Login(ctx context.Context, email, password string) (string, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, email, password)
	}
	return "token", nil
}

func newPaymentRouter(pay PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(pay, stubAuthSvc{})
	r.POST("/create-payment-intent", h.CreatePaymentIntent)
	r.POST("/stripe-webhook", h.StripeWebhook)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- create-payment-intent ----------

func TestCreatePaymentIntent_Success(t *testing.T) {
	var gotAmount int64
	var gotCurrency string
	r := newPaymentRouter(stubPaySvc{
		createFn: func(_ context.Context, amount int64, currency string) (string, error) {
			gotAmount, gotCurrency = amount, currency
			return "cs_abc", nil
		},
	})

	w := postJSON(t, r, "/create-payment-intent", map[string]any{"amount": 500, "currency": "inr"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp CreateIntentResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ClientSecret != "cs_abc" {
		t.Fatalf("clientSecret = %q", resp.ClientSecret)
	}
	if gotAmount != 500 || gotCurrency != "inr" {
		t.Fatalf("service called with amount=%d currency=%q", gotAmount, gotCurrency)
	}
}

func TestCreatePaymentIntent_ResponseFieldName(t *testing.T) {
	r := newPaymentRouter(stubPaySvc{})
	w := postJSON(t, r, "/create-payment-intent", map[string]any{"amount": 500})

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["clientSecret"]; !ok {
		t.Fatalf("response missing clientSecret key: %s", w.Body.String())
	}
}

func TestCreatePaymentIntent_MissingAmount(t *testing.T) {
	called := false
	r := newPaymentRouter(stubPaySvc{
		createFn: func(context.Context, int64, string) (string, error) {
			called = true
			return "", nil
		},
	})

	w := postJSON(t, r, "/create-payment-intent", map[string]any{"currency": "inr"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if called {
		t.Fatal("service called despite missing amount")
	}
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != ErrCodeInvalidAmount {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestCreatePaymentIntent_NonPositiveAmount(t *testing.T) {
	r := newPaymentRouter(stubPaySvc{
		createFn: func(_ context.Context, amount int64, _ string) (string, error) {
			if amount > 0 {
				t.Fatalf("unexpected amount %d", amount)
			}
			return "", services.ErrInvalidAmount
		},
	})

	for _, amount := range []int{0, -5} {
		w := postJSON(t, r, "/create-payment-intent", map[string]any{"amount": amount})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("amount %d: status = %d", amount, w.Code)
		}
	}
}

func TestCreatePaymentIntent_InvalidJSON(t *testing.T) {
	r := newPaymentRouter(stubPaySvc{})
	req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreatePaymentIntent_GatewayError(t *testing.T) {
	r := newPaymentRouter(stubPaySvc{
		createFn: func(context.Context, int64, string) (string, error) {
			return "", services.ErrGateway
		},
	})

	w := postJSON(t, r, "/create-payment-intent", map[string]any{"amount": 500})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != ErrCodeGatewayError {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestCreatePaymentIntent_PersistErrorHidesDetail(t *testing.T) {
	r := newPaymentRouter(stubPaySvc{
		createFn: func(context.Context, int64, string) (string, error) {
			return "", errors.New("sqlite: disk I/O error at /var/db/app.db")
		},
	})

	w := postJSON(t, r, "/create-payment-intent", map[string]any{"amount": 500})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("/var/db")) {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}

// ---------- stripe-webhook ----------

func TestStripeWebhook_PassesRawBodyAndHeader(t *testing.T) {
	raw := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}  `) // trailing spaces must survive
	var gotPayload []byte
	var gotSig string
	r := newPaymentRouter(stubPaySvc{
		handleFn: func(_ context.Context, payload []byte, sig string) error {
			gotPayload, gotSig = payload, sig
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader(raw))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !bytes.Equal(gotPayload, raw) {
		t.Fatalf("payload altered in transit: %q", gotPayload)
	}
	if gotSig != "t=1,v1=abc" {
		t.Fatalf("signature header = %q", gotSig)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("acknowledgment body should be empty, got %q", w.Body.String())
	}
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	r := newPaymentRouter(stubPaySvc{
		handleFn: func(context.Context, []byte, string) error {
			return services.ErrBadSignature
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != ErrCodeSignatureInvalid {
		t.Fatalf("code = %q", resp.Code)
	}
}

func TestStripeWebhook_PersistFailureTriggersRetry(t *testing.T) {
	r := newPaymentRouter(stubPaySvc{
		handleFn: func(context.Context, []byte, string) error {
			return services.ErrPersistPayment
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	// Non-2xx makes the gateway redeliver.
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
