package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campusmarket/internal/domain"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"
)

var ErrBadCreds = Unauthorized("invalid email or password")

const tokenIssuer = "campusmarket"

type AuthService struct {
	*Env
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthService(env *Env, secret string, ttl time.Duration, cost int) *AuthService {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{Env: env, Secret: []byte(secret), TokenTTL: ttl, BcryptCost: cost}
}

func (s *AuthService) Register(ctx context.Context, email, name, phone, password string) (*domain.User, error) {
	email, okE := validate.Email(email)
	name, okN := validate.Name(name)
	phone, okP := validate.Phone(phone)
	switch {
	case !okE:
		return nil, Validation("invalid email")
	case !okN:
		return nil, Validation("invalid name")
	case !okP:
		return nil, Validation("invalid phone")
	case !validate.Password(password):
		return nil, Validation("password must be 8-64 chars with upper, lower, digit and symbol")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, Internal("auth.hash", err)
	}
	id := uuid.NewString()
	if err := s.Store.Users.Create(ctx, id, email, name, phone, string(h), domain.RoleUser, s.now()); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil, Conflict("email already registered")
		}
		return nil, Internal("auth.register", err)
	}
	u, err := s.Store.Users.ByID(ctx, id)
	if err != nil {
		return nil, Internal("auth.register", err)
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	u, err := s.Store.Users.ByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBadCreds
	}
	if err != nil {
		return nil, Internal("auth.login", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if sid != "" {
		if err := s.Store.Users.BindSession(ctx, sid, u.ID); err != nil {
			return nil, Internal("auth.bind", err)
		}
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if err := s.Store.Users.UnbindSession(ctx, sid); err != nil {
		return Internal("auth.logout", err)
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	u, err := s.Store.Users.SessionUser(ctx, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Unauthorized("not logged in")
	}
	if err != nil {
		return nil, Internal("auth.session", err)
	}
	return u, nil
}

// IssueToken signs an HS256 bearer token for API clients that do not keep
// cookies.
func (s *AuthService) IssueToken(u *domain.User) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.TokenTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, Internal("auth.token", err)
	}
	return signed, exp, nil
}

// UserFromToken verifies a bearer token and loads its subject.
func (s *AuthService) UserFromToken(ctx context.Context, raw string) (*domain.User, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return s.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Subject == "" {
		return nil, Unauthorized("invalid token")
	}
	u, err := s.Store.Users.ByID(ctx, claims.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Unauthorized("invalid token")
	}
	if err != nil {
		return nil, Internal("auth.token_user", err)
	}
	return u, nil
}
