package client

import (
	"context"
	"errors"
	"sync"

	"petsoft/internal/platform/httpclient"

	"github.com/google/uuid"
)

// API es lo que el Store necesita del server (Client la implementa).
type API interface {
	ListPets(ctx context.Context) ([]Pet, error)
	AddPet(ctx context.Context, f PetForm) (Pet, error)
	EditPet(ctx context.Context, petID string, f PetForm) (Pet, error)
	DeletePet(ctx context.Context, petID string) error
}

// Notifier recibe los mensajes de falla para mostrarlos al usuario
// (el equivalente del toast warning). Los éxitos son silenciosos.
type Notifier func(message string)

// pendingPet es una mutación especulativa en vuelo, identificada por su
// correlation id. El placeholder usa ese id como ID visible hasta que
// llegue el resultado autoritativo.
type pendingPet struct {
	correlationID string
	pet           Pet
}

// Store mantiene la lista visible de pets con estado especulativo:
// - AddPet proyecta la entrada de inmediato (read-your-write) y la
//   reconcilia al volver el server; si falla, se remueve exactamente esa
//   entrada por correlation id (nunca por posición).
// - EditPet/DeletePet no especulan: esperan el round trip y refrescan.
// No coordina acciones concurrentes entre sí: last-write-wins, igual que
// el server.
type Store struct {
	mu sync.Mutex

	api    API
	notify Notifier

	pets     []Pet // último estado autoritativo conocido
	pending  []pendingPet
	selected string
}

func NewStore(api API, notify Notifier) *Store {
	if notify == nil {
		notify = func(string) {}
	}
	return &Store{api: api, notify: notify}
}

// Refresh recomputa la lista autoritativa desde el server.
func (s *Store) Refresh(ctx context.Context) error {
	items, err := s.api.ListPets(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.pets = items
	s.mu.Unlock()
	return nil
}

// Pets devuelve la proyección visible: autoritativo + especulativo.
func (s *Store) Pets() []Pet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Pet, 0, len(s.pets)+len(s.pending))
	out = append(out, s.pets...)
	for _, p := range s.pending {
		out = append(out, p.pet)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pets) + len(s.pending)
}

// Select marca la mascota enfocada. Estado puramente local.
func (s *Store) Select(petID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = petID
}

func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *Store) Selected() (Pet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pets {
		if p.ID == s.selected {
			return p, true
		}
	}
	for _, p := range s.pending {
		if p.pet.ID == s.selected {
			return p.pet, true
		}
	}
	return Pet{}, false
}

// AddPet proyecta la mutación de inmediato y luego reconcilia.
func (s *Store) AddPet(ctx context.Context, f PetForm) error {
	cid := uuid.NewString()

	s.mu.Lock()
	s.pending = append(s.pending, pendingPet{
		correlationID: cid,
		pet: Pet{
			ID:       cid, // placeholder local hasta el resultado real
			Name:     f.Name,
			Species:  f.Species,
			Age:      f.Age,
			ImageURL: f.ImageURL,
			Notes:    f.Notes,
		},
	})
	s.mu.Unlock()

	_, err := s.api.AddPet(ctx, f)
	if err != nil {
		// rollback puntual: sale solo la entrada de esta acción
		s.removePending(cid)
		s.notify(failureMessage(err))
		return err
	}

	// el server ya invalidó su vista; acá la refrescamos y soltamos
	// el placeholder
	if rerr := s.Refresh(ctx); rerr != nil {
		s.removePending(cid)
		return rerr
	}
	s.removePending(cid)
	return nil
}

// EditPet espera el round trip; la vista se actualiza con el refresh.
func (s *Store) EditPet(ctx context.Context, petID string, f PetForm) error {
	if _, err := s.api.EditPet(ctx, petID, f); err != nil {
		s.notify(failureMessage(err))
		return err
	}
	return s.Refresh(ctx)
}

// DeletePet espera el round trip. La selección se limpia pase lo que pase
// (comportamiento observado de la UI original).
func (s *Store) DeletePet(ctx context.Context, petID string) error {
	err := s.api.DeletePet(ctx, petID)

	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()

	if err != nil {
		s.notify(failureMessage(err))
		return err
	}
	return s.Refresh(ctx)
}

func (s *Store) removePending(correlationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pending[:0]
	for _, p := range s.pending {
		if p.correlationID != correlationID {
			kept = append(kept, p)
		}
	}
	s.pending = kept
}

// failureMessage extrae el mensaje {message} del server si lo hay.
func failureMessage(err error) string {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message()
	}
	return err.Error()
}
