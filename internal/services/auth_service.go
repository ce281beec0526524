// Package services – AuthService
//
// This file implements the AuthService, which handles account registration
// (bcrypt password hashing, role validation, unique lowercase emails) and
// login (credential check plus HS256 token issuance). Signing is an
// operation that may fail and its error is propagated, never swallowed.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hacktowin/go-hacktowin-backend/internal/domain"
	"github.com/hacktowin/go-hacktowin-backend/internal/repo"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements the use-cases around account registration and login.
type AuthService struct {
	// DB is the database handle used for all account operations.
	DB *gorm.DB
	// JWTSecret signs and verifies issued tokens (HS256).
	JWTSecret []byte
	// TokenTTL bounds the lifetime of issued tokens.
	TokenTTL time.Duration

	// BcryptCost overrides the hashing cost; zero means bcrypt.DefaultCost.
	BcryptCost int
}

// NewAuthService constructs an AuthService issuing one-hour tokens.
func NewAuthService(db *gorm.DB, jwtSecret []byte) *AuthService {
	return &AuthService{
		DB:        db,
		JWTSecret: jwtSecret,
		TokenTTL:  time.Hour,
	}
}

// Register creates a new account.
//
// Validation:
//   - name, email, password, and role are all required (ErrMissingFields).
//   - role must be one of the platform roles (ErrInvalidRole).
//   - email is normalized to lowercase and must be unique (ErrEmailTaken).
//
// The password is hashed with bcrypt before it reaches the repository; the
// plaintext is never persisted.
func (s *AuthService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" || role == "" {
		return nil, ErrMissingFields
	}
	if !domain.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	cost := s.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}

	u, err := repo.CreateUser(ctx, s.DB, name, email, string(hash), role)
	if err != nil {
		if repo.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login checks the credentials for email and, on success, returns a signed
// token carrying the account's id, name, and role.
//
// Unknown emails and wrong passwords both return ErrInvalidCredentials so
// the response does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", ErrMissingFields
	}

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := Claims{
		Name: u.Name,
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.JWTSecret)
}

// ParseToken validates a token issued by Login and returns its claims.
func (s *AuthService) ParseToken(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}
