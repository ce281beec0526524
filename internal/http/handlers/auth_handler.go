// Auth HTTP handlers.
//
// This file exposes REST endpoints for account management:
//   - POST /api/auth/register  (create account)
//   - POST /api/auth/login     (issue token)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hacktowin/go-hacktowin-backend/internal/domain"
	"github.com/hacktowin/go-hacktowin-backend/internal/services"
)

// AuthService defines the account operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AuthService interface {
	// Register creates an account with a hashed password.
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	// Login verifies credentials and returns a signed token.
	Login(ctx context.Context, email, password string) (string, error)
}

// Handlers groups HTTP endpoints for payments and accounts. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	paySvc  PaymentService
	authSvc AuthService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(paySvc PaymentService, authSvc AuthService) *Handlers {
	return &Handlers{paySvc: paySvc, authSvc: authSvc}
}

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name"     example:"Ada Lovelace"`
	Email    string `json:"email"    example:"ada@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
	// Role is one of participant, organizer, judge.
	Role string `json:"role" example:"participant"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	Message string `json:"msg" example:"Account created successfully! Please log in."`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email"    example:"ada@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"msg" example:"Logged in successfully!"`
}

// Register godoc
// @ID          register
// @Summary     Register an account
// @Description Creates a new account with a hashed password and one of the platform roles.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.RegisterResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields or unknown role"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	_, err := h.authSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password, domain.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrMissingFields.Error())
		case errors.Is(err, services.ErrInvalidRole):
			fail(c, http.StatusBadRequest, ErrCodeInvalidRole, services.ErrInvalidRole.Error())
		case errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusConflict, ErrCodeEmailExists, services.ErrEmailTaken.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "registration failed")
		}
		return
	}
	ok(c, http.StatusCreated, RegisterResponse{Message: "Account created successfully! Please log in."})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFields):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrMissingFields.Error())
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, services.ErrInvalidCredentials.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "login failed")
		}
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, Message: "Logged in successfully!"})
}
