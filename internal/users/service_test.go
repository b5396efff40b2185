package users

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

// Create mirrors the database's case-insensitive unique index.

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[uuid.UUID]*User)}
}

func (m *memoryRepo) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrEmailTaken
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := m.GetByEmail(ctx, email)
	return u != nil, err
}

func TestService_EmailIsCaseInsensitive(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "  Ana@Example.COM ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)

	exists, err := svc.ExistsByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := svc.GetByEmail(ctx, "ana@EXAMPLE.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	byID, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.PasswordHash)
}

func TestService_UnknownUser(t *testing.T) {
	svc := NewService(newMemoryRepo())
	got, err := svc.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_CreateRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "sam@example.com", "hash")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "SAM@example.com ", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}
