package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/bousala/bousala/internal/shared"
)

const sessionKeyPrefix = "session:"

// Service wraps authentication business rules. Sessions are opaque bearer
// tokens stored in redis with a TTL.
type Service struct {
	repo       Repository
	sessions   *redis.Client
	sessionTTL time.Duration
}

// NewService constructs auth service.
func NewService(repo Repository, sessions *redis.Client, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{repo: repo, sessions: sessions, sessionTTL: sessionTTL}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// OpenSession issues a bearer token for the user.
func (s *Service) OpenSession(ctx context.Context, userID uuid.UUID) (Session, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	token := hex.EncodeToString(buf)
	if err := s.sessions.Set(ctx, sessionKeyPrefix+token, userID.String(), s.sessionTTL).Err(); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	return Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}, nil
}

// ResolveSession maps a bearer token back to the owning user id.
func (s *Service) ResolveSession(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := s.sessions.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return uuid.Nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve session: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.ErrInvalidCredentials
	}
	return id, nil
}

// CloseSession revokes a bearer token.
func (s *Service) CloseSession(ctx context.Context, token string) error {
	return s.sessions.Del(ctx, sessionKeyPrefix+token).Err()
}
