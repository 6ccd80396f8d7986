package client

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"petsoft/internal/platform/httpclient"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Fake API (server simulado)
// -------------------------

type fakeAPI struct {
	mu   sync.Mutex
	pets []Pet

	addErr    error
	editErr   error
	deleteErr error

	// si addGate != nil, AddPet se queda esperando ahí (round trip en vuelo)
	addGate chan struct{}
}

func (f *fakeAPI) ListPets(ctx context.Context) ([]Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Pet, len(f.pets))
	copy(out, f.pets)
	return out, nil
}

func (f *fakeAPI) AddPet(ctx context.Context, form PetForm) (Pet, error) {
	if f.addGate != nil {
		<-f.addGate
	}
	if f.addErr != nil {
		return Pet{}, f.addErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p := Pet{
		ID:      uuid.NewString(),
		Name:    form.Name,
		Species: form.Species,
		Age:     form.Age,
	}
	f.pets = append(f.pets, p)
	return p, nil
}

func (f *fakeAPI) EditPet(ctx context.Context, petID string, form PetForm) (Pet, error) {
	if f.editErr != nil {
		return Pet{}, f.editErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pets {
		if p.ID == petID {
			f.pets[i].Name = form.Name
			f.pets[i].Species = form.Species
			f.pets[i].Age = form.Age
			return f.pets[i], nil
		}
	}
	return Pet{}, &httpclient.HTTPError{StatusCode: http.StatusNotFound, Body: `{"message":"Pet not found."}`}
}

func (f *fakeAPI) DeletePet(ctx context.Context, petID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pets {
		if p.ID == petID {
			f.pets = append(f.pets[:i], f.pets[i+1:]...)
			return nil
		}
	}
	return &httpclient.HTTPError{StatusCode: http.StatusNotFound, Body: `{"message":"Pet not found."}`}
}

type notifications struct {
	mu       sync.Mutex
	messages []string
}

func (n *notifications) notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *notifications) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	copy(out, n.messages)
	return out
}

// -------------------------
// Tests
// -------------------------

func TestStore_AddPet_SpeculativeEntryDuringRoundTrip(t *testing.T) {
	api := &fakeAPI{addGate: make(chan struct{})}
	store := NewStore(api, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- store.AddPet(ctx, PetForm{Name: "Rex", Species: "dog", Age: 3})
	}()

	// con el round trip en vuelo, la entrada especulativa ya es visible
	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
	visible := store.Pets()
	require.Len(t, visible, 1)
	assert.Equal(t, "Rex", visible[0].Name)
	placeholderID := visible[0].ID

	// llega la confirmación: placeholder afuera, entrada autoritativa adentro
	close(api.addGate)
	require.NoError(t, <-done)

	visible = store.Pets()
	require.Len(t, visible, 1)
	assert.Equal(t, "Rex", visible[0].Name)
	assert.NotEqual(t, placeholderID, visible[0].ID, "authoritative id replaces the placeholder")
}

func TestStore_AddPet_FailureRollsBackByCorrelationID(t *testing.T) {
	api := &fakeAPI{}
	notes := &notifications{}
	store := NewStore(api, notes.notify)
	ctx := context.Background()

	// una mascota autoritativa preexistente que no debe tocarse
	require.NoError(t, store.AddPet(ctx, PetForm{Name: "Milo", Species: "cat", Age: 2}))
	require.Equal(t, 1, store.Len())

	api.addErr = &httpclient.HTTPError{StatusCode: http.StatusBadRequest, Body: `{"message":"Invalid pet data."}`}
	err := store.AddPet(ctx, PetForm{Species: "dog"})
	require.Error(t, err)

	// sale exactamente la entrada fallida; lo autoritativo queda
	visible := store.Pets()
	require.Len(t, visible, 1)
	assert.Equal(t, "Milo", visible[0].Name)

	// y la falla se muestra con el mensaje del server
	assert.Equal(t, []string{"Invalid pet data."}, notes.all())
}

func TestStore_EditPet_NoSpeculation(t *testing.T) {
	api := &fakeAPI{}
	notes := &notifications{}
	store := NewStore(api, notes.notify)
	ctx := context.Background()

	require.NoError(t, store.AddPet(ctx, PetForm{Name: "Rex", Species: "dog", Age: 3}))
	petID := store.Pets()[0].ID

	require.NoError(t, store.EditPet(ctx, petID, PetForm{Name: "Rex2", Species: "dog", Age: 4}))
	assert.Equal(t, "Rex2", store.Pets()[0].Name)

	// falla: la vista no cambia, solo se notifica
	api.editErr = &httpclient.HTTPError{StatusCode: http.StatusForbidden, Body: `{"message":"Not authorized."}`}
	err := store.EditPet(ctx, petID, PetForm{Name: "Hacked", Species: "dog", Age: 4})
	require.Error(t, err)
	assert.Equal(t, "Rex2", store.Pets()[0].Name)
	assert.Contains(t, notes.all(), "Not authorized.")
}

func TestStore_DeletePet_ClearsSelectionRegardlessOfOutcome(t *testing.T) {
	api := &fakeAPI{}
	notes := &notifications{}
	store := NewStore(api, notes.notify)
	ctx := context.Background()

	require.NoError(t, store.AddPet(ctx, PetForm{Name: "Rex", Species: "dog", Age: 3}))
	petID := store.Pets()[0].ID

	store.Select(petID)
	_, ok := store.Selected()
	require.True(t, ok)

	// falla el delete: la selección se limpia igual
	api.deleteErr = &httpclient.HTTPError{StatusCode: http.StatusForbidden, Body: `{"message":"Not authorized."}`}
	err := store.DeletePet(ctx, petID)
	require.Error(t, err)
	assert.Empty(t, store.SelectedID())
	require.Equal(t, 1, store.Len())

	// ahora sí
	api.deleteErr = nil
	store.Select(petID)
	require.NoError(t, store.DeletePet(ctx, petID))
	assert.Empty(t, store.SelectedID())
	assert.Zero(t, store.Len())
}

func TestStore_Selection(t *testing.T) {
	api := &fakeAPI{}
	store := NewStore(api, nil)
	ctx := context.Background()

	require.NoError(t, store.AddPet(ctx, PetForm{Name: "Rex", Species: "dog", Age: 3}))
	petID := store.Pets()[0].ID

	_, ok := store.Selected()
	assert.False(t, ok)

	store.Select(petID)
	p, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, "Rex", p.Name)

	store.Select("missing")
	_, ok = store.Selected()
	assert.False(t, ok)
}
