package pets

import (
	"context"
	"errors"
	"testing"
	"time"

	"petsoft/internal/platform/viewcache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory, cuenta llamadas de persistencia)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Pet

	createCalls int
	updateCalls int
	deleteCalls int

	failCreate bool
	failUpdate bool
	failDelete bool
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.createCalls++
	if r.failCreate {
		return errors.New("repo: constraint violation")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	r.updateCalls++
	if r.failUpdate {
		return errors.New("repo: connection error")
	}
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.deleteCalls++
	if r.failDelete {
		return errors.New("repo: connection error")
	}
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	out := make([]Pet, 0)
	for _, p := range r.byID {
		if p.OwnerUserID == ownerUserID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) mutations() int {
	return r.createCalls + r.updateCalls + r.deleteCalls
}

func newTestService(repo *testRepo) *Service {
	// delay 0: los tests no pagan el pacing
	return NewService(repo, viewcache.NewMemory(), nil, 0)
}

func validForm() Form {
	return Form{Name: "Rex", Species: "dog", Age: 3}
}

// -------------------------
// Tests
// -------------------------

func TestAdd_MalformedPayload_NoPersistenceCall(t *testing.T) {
	cases := map[string]Form{
		"missing name":    {Species: "dog", Age: 3},
		"missing species": {Name: "Rex", Age: 3},
		"negative age":    {Name: "Rex", Species: "dog", Age: -1},
		"absurd age":      {Name: "Rex", Species: "dog", Age: 400},
		"bad image url":   {Name: "Rex", Species: "dog", ImageURL: "not a url"},
	}

	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newTestRepo()
			svc := newTestService(repo)

			_, err := svc.Add(context.Background(), "user-1", form)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Zero(t, repo.mutations(), "no persistence call may happen on validation failure")
		})
	}
}

func TestActions_WithoutSession_AuthenticationRequired(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// payload perfectamente válido: igual corta en authenticating
	_, err := svc.Add(ctx, "", validForm())
	require.ErrorIs(t, err, ErrUnauthenticated)

	// id válido para que la validación no corte antes
	p, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)
	before := repo.mutations()

	_, err = svc.Edit(ctx, "", p.ID, validForm())
	require.ErrorIs(t, err, ErrUnauthenticated)

	err = svc.Delete(ctx, "  ", p.ID)
	require.ErrorIs(t, err, ErrUnauthenticated)

	assert.Equal(t, before, repo.mutations(), "no persistence call may happen without a session")
}

func TestEdit_OwnershipOutcomes(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)

	// recurso inexistente -> not found (id bien formado pero ausente)
	_, err = svc.Edit(ctx, "user-1", "b1a6e0f0-0000-4000-8000-000000000000", validForm())
	require.ErrorIs(t, err, ErrNotFound)

	// dueño equivocado -> not authorized (y el recurso queda intacto)
	_, err = svc.Edit(ctx, "user-2", p.ID, Form{Name: "Rex2", Species: "dog", Age: 3})
	require.ErrorIs(t, err, ErrNotAuthorized)

	got, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name)

	// dueño correcto -> éxito, owner inmutable
	updated, err := svc.Edit(ctx, "user-1", p.ID, Form{Name: "Rex2", Species: "dog", Age: 4})
	require.NoError(t, err)
	assert.Equal(t, "Rex2", updated.Name)
	assert.Equal(t, "user-1", updated.OwnerUserID)
}

func TestEdit_BadIDAndBadPayload_SingleInvalidSignal(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// ambas validaciones fallan a la vez: una sola señal de invalid
	_, err := svc.Edit(ctx, "user-1", "not-a-uuid", Form{})
	require.ErrorIs(t, err, ErrInvalidInput)

	// id malo + payload bueno
	_, err = svc.Edit(ctx, "user-1", "not-a-uuid", validForm())
	require.ErrorIs(t, err, ErrInvalidInput)

	// id bueno + payload malo
	_, err = svc.Edit(ctx, "user-1", "b1a6e0f0-0000-4000-8000-000000000000", Form{})
	require.ErrorIs(t, err, ErrInvalidInput)

	assert.Zero(t, repo.mutations())
}

func TestDelete_Idempotence_SecondDeleteIsNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", p.ID))

	// segundo delete: not found, no crash
	err = svc.Delete(ctx, "user-1", p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_OwnershipOutcomes(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)

	err = svc.Delete(ctx, "user-2", p.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	err = svc.Delete(ctx, "user-1", "b1a6e0f0-0000-4000-8000-000000000001")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "user-1", p.ID))
}

func TestAdd_NotIdempotent_TwoIdenticalPayloadsTwoResources(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p1, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)
	p2, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)

	assert.NotEqual(t, p1.ID, p2.ID)

	items, err := svc.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestMutationFailure_OpaqueSignal(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)

	repo.failCreate = true
	_, err = svc.Add(ctx, "user-1", validForm())
	require.ErrorIs(t, err, ErrMutationFailed)

	repo.failUpdate = true
	_, err = svc.Edit(ctx, "user-1", p.ID, validForm())
	require.ErrorIs(t, err, ErrMutationFailed)

	repo.failDelete = true
	err = svc.Delete(ctx, "user-1", p.ID)
	require.ErrorIs(t, err, ErrMutationFailed)
}

func TestListByOwner_UsesViewCacheUntilInvalidated(t *testing.T) {
	repo := newTestRepo()
	views := viewcache.NewMemory()
	svc := NewService(repo, views, nil, 0)
	ctx := context.Background()

	p, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)

	// primer read recomputa y cachea
	items, err := svc.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	// mutamos por debajo del cache: el read sigue sirviendo la vista vieja
	delete(repo.byID, p.ID)
	items, err = svc.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, items, 1, "stale view until invalidation")

	// una mutación real invalida; el siguiente read es autoritativo
	p2, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)
	items, err = svc.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p2.ID, items[0].ID)
}

func TestPace_AppliesConfiguredDelayFloor(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil, 30*time.Millisecond)

	start := time.Now()
	_, err := svc.Add(context.Background(), "user-1", validForm())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestPace_CancelledContextSkipsWait(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, _ = svc.Add(ctx, "user-1", validForm())
	assert.Less(t, time.Since(start), time.Second)
}

func TestOwnerOf(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	p, err := svc.Add(ctx, "user-1", validForm())
	require.NoError(t, err)

	owner, err := svc.OwnerOf(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", owner)

	_, err = svc.OwnerOf(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
