package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byID    map[string]*User
	byEmail map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, NewHMACHasher([]byte("pepper"))), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Bob@Example.COM ", "hunter2", "Bob")
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "hunter2", u.PasswordHash)
	assert.Contains(t, repo.byEmail, "bob@example.com")
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "not-an-email", "pw", "")
	assert.ErrorIs(t, err, ErrEmailInvalid)

	_, err = svc.Register(ctx, "a@b.co", "", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)
}

func TestRegister_EmailTaken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.co", "pw", "")
	require.NoError(t, err)

	// Same address with different case still collides.
	_, err = svc.Register(ctx, "A@B.CO", "pw2", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@b.co", "hunter2", "")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "A@b.co", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)
}

func TestAuthenticate_BadCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.co", "hunter2", "")
	require.NoError(t, err)

	// Wrong password and unknown email are indistinguishable.
	_, err = svc.Authenticate(ctx, "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Authenticate(ctx, "ghost@b.co", "hunter2")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestHMACHasher(t *testing.T) {
	h := NewHMACHasher([]byte("pepper"))

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	require.NoError(t, h.Verify("secret", hash))
	assert.Error(t, h.Verify("other", hash))

	// Different pepper invalidates existing hashes.
	assert.Error(t, NewHMACHasher([]byte("other")).Verify("secret", hash))

	// Salted: hashing the same password twice differs.
	hash2, err := h.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}
