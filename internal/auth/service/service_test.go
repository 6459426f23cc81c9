package service

import (
	"context"
	"testing"
	"time"

	"genba_backend/internal/auth/password"
	"genba_backend/internal/auth/repository"
	"genba_backend/internal/auth/token"
	"genba_backend/platform/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type stubConfig struct{}

func (stubConfig) GetJWTAccessSecret() string        { return "test-secret" }
func (stubConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (stubConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

type storedToken struct {
	workerID  uuid.UUID
	expiresAt time.Time
}

type stubStore struct {
	workers map[string]*repository.Worker
	tokens  map[string]storedToken
}

func newStubStore() *stubStore {
	return &stubStore{
		workers: make(map[string]*repository.Worker),
		tokens:  make(map[string]storedToken),
	}
}

func (s *stubStore) GetWorkerByEmail(_ context.Context, email string) (*repository.Worker, error) {
	if w, ok := s.workers[email]; ok {
		return w, nil
	}
	return nil, apperr.NotFound("worker not found")
}

func (s *stubStore) GetWorkerByID(_ context.Context, id uuid.UUID) (*repository.Worker, error) {
	for _, w := range s.workers {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, apperr.NotFound("worker not found")
}

func (s *stubStore) CreateRefreshToken(_ context.Context, workerID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	s.tokens[tokenHash] = storedToken{workerID: workerID, expiresAt: expiresAt}
	return nil
}

func (s *stubStore) GetRefreshToken(_ context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	if t, ok := s.tokens[tokenHash]; ok {
		return t.workerID, t.expiresAt, nil
	}
	return uuid.Nil, time.Time{}, apperr.NotFound("refresh token not found")
}

func (s *stubStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	delete(s.tokens, tokenHash)
	return nil
}

func (s *stubStore) RevokeAllRefreshTokens(_ context.Context, workerID uuid.UUID) error {
	for hash, t := range s.tokens {
		if t.workerID == workerID {
			delete(s.tokens, hash)
		}
	}
	return nil
}

func seedWorker(t *testing.T, store *stubStore, email, plain string) *repository.Worker {
	t.Helper()
	hash, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	w := &repository.Worker{
		ID:           uuid.New(),
		CompanyID:    uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "山田 太郎",
		Role:         "foreman",
	}
	store.workers[email] = w
	return w
}

func TestSignIn_IssuesTokenPair(t *testing.T) {
	store := newStubStore()
	worker := seedWorker(t, store, "taro@example.com", "kouji-genba-1")
	svc := New(store, stubConfig{})

	pair, err := svc.SignIn(context.Background(), "taro@example.com", "kouji-genba-1")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if len(store.tokens) != 1 {
		t.Fatalf("expected one stored refresh token, got %d", len(store.tokens))
	}
	for hash := range store.tokens {
		if hash == pair.RefreshToken {
			t.Fatal("refresh token must be stored hashed, not in the clear")
		}
	}

	parsed, err := jwt.Parse(pair.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("access token does not validate: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != worker.ID.String() {
		t.Fatalf("unexpected sub claim %v", claims["sub"])
	}
	if claims["company_id"] != worker.CompanyID.String() {
		t.Fatalf("unexpected company_id claim %v", claims["company_id"])
	}
}

func TestSignIn_WrongPasswordRejected(t *testing.T) {
	store := newStubStore()
	seedWorker(t, store, "taro@example.com", "correct")
	svc := New(store, stubConfig{})

	if _, err := svc.SignIn(context.Background(), "taro@example.com", "wrong"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.SignIn(context.Background(), "nobody@example.com", "whatever"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("unknown email must look identical, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	store := newStubStore()
	seedWorker(t, store, "taro@example.com", "secret")
	svc := New(store, stubConfig{})

	pair, err := svc.SignIn(context.Background(), "taro@example.com", "secret")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh must rotate the token")
	}

	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("replayed token must be rejected, got %v", err)
	}
}

func TestRefresh_ExpiredTokenRejected(t *testing.T) {
	store := newStubStore()
	worker := seedWorker(t, store, "taro@example.com", "secret")
	svc := New(store, stubConfig{})

	store.tokens[token.HashSHA256("stale-token")] = storedToken{
		workerID:  worker.ID,
		expiresAt: time.Now().Add(-time.Hour),
	}

	if _, err := svc.Refresh(context.Background(), "stale-token"); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
	if len(store.tokens) != 0 {
		t.Fatal("expired token must be revoked on use")
	}
}

func TestSignOut_RevokesToken(t *testing.T) {
	store := newStubStore()
	seedWorker(t, store, "taro@example.com", "secret")
	svc := New(store, stubConfig{})

	pair, err := svc.SignIn(context.Background(), "taro@example.com", "secret")
	if err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	if err := svc.SignOut(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("sign out failed: %v", err)
	}
	if len(store.tokens) != 0 {
		t.Fatalf("expected token revoked, %d remain", len(store.tokens))
	}
}
