package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keyxmakerx/portfolio/internal/apperror"
	"github.com/keyxmakerx/portfolio/internal/password"
)

// AuthService defines the business logic contract for admin authentication.
type AuthService interface {
	Login(ctx context.Context, plain string) (*TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*Claims, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// authService implements AuthService with HS256 tokens.
type authService struct {
	repo     CredentialRepository
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAuthService creates an auth service signing tokens with secret.
func NewAuthService(repo CredentialRepository, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Login checks plain against the stored hash and issues a token.
func (s *authService) Login(ctx context.Context, plain string) (*TokenResponse, error) {
	if plain == "" {
		return nil, apperror.NewBadRequest("password is required")
	}
	hash, err := s.repo.PasswordHash(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading password hash: %w", err))
	}
	if !password.Verify(plain, hash) {
		slog.Warn("failed admin login")
		return nil, apperror.NewUnauthorized("invalid password")
	}

	now := s.now().UTC()
	expires := now.Add(s.tokenTTL)
	claims := Claims{
		PasswordTag: passwordTag(hash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("signing token: %w", err))
	}

	slog.Info("admin logged in")
	return &TokenResponse{Token: signed, ExpiresAt: expires.Truncate(time.Second)}, nil
}

// ValidateToken parses token and checks it was issued under the current
// password.
func (s *authService) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.NewUnauthorized("session expired")
		}
		return nil, apperror.NewUnauthorized("invalid token")
	}

	hash, err := s.repo.PasswordHash(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading password hash: %w", err))
	}
	if subtle.ConstantTimeCompare([]byte(claims.PasswordTag), []byte(passwordTag(hash))) != 1 {
		return nil, apperror.NewUnauthorized("session revoked")
	}
	return claims, nil
}

// ChangePassword replaces the admin password after checking the current one.
func (s *authService) ChangePassword(ctx context.Context, current, next string) error {
	hash, err := s.repo.PasswordHash(ctx)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("reading password hash: %w", err))
	}
	if !password.Verify(current, hash) {
		return apperror.NewUnauthorized("current password is incorrect")
	}
	if len(next) < password.MinLength {
		return apperror.NewValidation(fmt.Sprintf("new password must be at least %d characters", password.MinLength))
	}

	newHash, err := password.Hash(next)
	if errors.Is(err, password.ErrTooLong) {
		return apperror.NewValidation("new password must be at most 72 bytes")
	}
	if err != nil {
		return apperror.NewInternal(err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, newHash); err != nil {
		return apperror.NewInternal(fmt.Errorf("saving password hash: %w", err))
	}

	slog.Info("admin password changed")
	return nil
}

// passwordTag is a short fingerprint of a password hash.
func passwordTag(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
