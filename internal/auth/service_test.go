package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bousala/bousala/internal/shared"
)

type memoryUsers struct {
	byEmail map[string]*User
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) Create(ctx context.Context, u User) error {
	m.byEmail[u.Email] = &u
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryUsers) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := &memoryUsers{byEmail: make(map[string]*User)}
	return NewService(repo, client, time.Hour), repo
}

func seedUser(t *testing.T, repo *memoryUsers, password string, active bool) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &User{
		ID:           uuid.New(),
		Email:        "owner@shop.example",
		Name:         "Owner",
		PasswordHash: string(hash),
		IsActive:     active,
	}
	repo.byEmail[u.Email] = u
	return u
}

func TestAuthenticate(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, "correct-horse", true)

	got, err := svc.Authenticate(context.Background(), u.Email, "correct-horse")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), u.Email, "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@shop.example", "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	svc, repo := newTestService(t)
	u := seedUser(t, repo, "correct-horse", false)

	_, err := svc.Authenticate(context.Background(), u.Email, "correct-horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	userID := uuid.New()

	session, err := svc.OpenSession(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	resolved, err := svc.ResolveSession(context.Background(), session.Token)
	require.NoError(t, err)
	require.Equal(t, userID, resolved)

	require.NoError(t, svc.CloseSession(context.Background(), session.Token))
	_, err = svc.ResolveSession(context.Background(), session.Token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestResolveSessionUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.ResolveSession(context.Background(), "not-a-token")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, repo := newTestService(t)

	u, err := svc.Register(context.Background(), "new@shop.example", "New Owner", "s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", u.PasswordHash)

	stored := repo.byEmail["new@shop.example"]
	require.NotNil(t, stored)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}
