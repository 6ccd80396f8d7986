package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID    map[string]User
	byEmail map[string]string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}, byEmail: map[string]string{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return ErrEmailTaken
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, errRepoNotFound
	}
	return r.byID[id], nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestSignUp_ThenAuthenticate(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "a@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.False(t, u.HasAccess)
	assert.NotEqual(t, "p", u.HashedPassword, "password must be stored hashed")

	// credenciales correctas => sesión posible
	got, err := svc.Authenticate(ctx, "a@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// password equivocado => una sola señal, sin sesión
	_, err = svc.Authenticate(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// email desconocido => misma señal
	_, err = svc.Authenticate(ctx, "nobody@x.com", "p")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUp_NormalizesEmail(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "  A@X.com ", "p")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = svc.Authenticate(ctx, "A@X.COM", "p")
	require.NoError(t, err)
}

func TestSignUp_InvalidInput(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "p")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SignUp(ctx, "a@x.com", "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "a@x.com", "p")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "a@x.com", "other")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestGrantAccess(t *testing.T) {
	svc := NewService(newTestRepo())
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "a@x.com", "p")
	require.NoError(t, err)

	require.NoError(t, svc.GrantAccess(ctx, "a@x.com"))

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasAccess)

	// idempotente
	require.NoError(t, svc.GrantAccess(ctx, "a@x.com"))

	// email desconocido => explícito
	err = svc.GrantAccess(ctx, "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}
