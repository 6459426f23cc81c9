// Package service implements worker sign-in and token lifecycle. Access
// tokens are short-lived JWTs; refresh tokens are opaque, stored hashed and
// rotated on every use.
package service

import (
	"context"
	"time"

	"genba_backend/internal/auth/profile"
	"genba_backend/internal/auth/password"
	"genba_backend/internal/auth/repository"
	"genba_backend/internal/auth/token"
	"genba_backend/platform/apperr"
	"genba_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const invalidCredentialsMsg = "invalid credentials"

// WorkerStore is the persistence boundary for worker accounts and
// refresh tokens.
type WorkerStore interface {
	GetWorkerByEmail(ctx context.Context, email string) (*repository.Worker, error)
	GetWorkerByID(ctx context.Context, id uuid.UUID) (*repository.Worker, error)
	CreateRefreshToken(ctx context.Context, workerID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, workerID uuid.UUID) error
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service provides authentication operations for the mobile app.
type Service struct {
	store WorkerStore
	cfg   config.AuthConfig
}

// New creates a new auth service.
func New(store WorkerStore, cfg config.AuthConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

// SignIn verifies the credentials and issues a token pair. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (*TokenPair, error) {
	worker, err := s.store.GetWorkerByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Unauthorized(invalidCredentialsMsg)
	}

	if err := password.Compare(worker.PasswordHash, plainPassword); err != nil {
		return nil, apperr.Unauthorized(invalidCredentialsMsg)
	}

	return s.issueTokens(ctx, worker)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair issued. Expired tokens are revoked and rejected.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	hash := token.HashSHA256(refreshToken)
	workerID, expiresAt, err := s.store.GetRefreshToken(ctx, hash)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}

	if time.Now().After(expiresAt) {
		_ = s.store.RevokeRefreshToken(ctx, hash)
		return nil, apperr.Unauthorized("refresh token expired")
	}

	if err := s.store.RevokeRefreshToken(ctx, hash); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to rotate refresh token", err)
	}

	worker, err := s.store.GetWorkerByID(ctx, workerID)
	if err != nil {
		return nil, apperr.Unauthorized("invalid refresh token")
	}
	return s.issueTokens(ctx, worker)
}

// SignOut revokes the presented refresh token.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.store.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

// GetMe returns the profile of the authenticated worker.
func (s *Service) GetMe(ctx context.Context, workerID uuid.UUID) (profile.Profile, error) {
	worker, err := s.store.GetWorkerByID(ctx, workerID)
	if err != nil {
		return profile.Profile{}, err
	}
	return toProfile(worker), nil
}

// GetWorkerByID implements profile.WorkerProvider for other domains.
func (s *Service) GetWorkerByID(ctx context.Context, workerID uuid.UUID) (profile.Profile, error) {
	return s.GetMe(ctx, workerID)
}

func (s *Service) issueTokens(ctx context.Context, worker *repository.Worker) (*TokenPair, error) {
	accessToken, err := s.signJWT(worker)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign access token", err)
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to generate refresh token", err)
	}

	hash := token.HashSHA256(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.store.CreateRefreshToken(ctx, worker.ID, hash, expiresAt); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store refresh token", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *Service) signJWT(worker *repository.Worker) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        worker.ID.String(),
		"company_id": worker.CompanyID.String(),
		"role":       worker.Role,
		"exp":        now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":        now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func toProfile(w *repository.Worker) profile.Profile {
	return profile.Profile{
		ID:          w.ID,
		CompanyID:   w.CompanyID,
		Email:       w.Email,
		DisplayName: w.DisplayName,
		Role:        w.Role,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

var _ profile.WorkerProvider = (*Service)(nil)
