package pets

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"petsoft/internal/platform/logger"
	"petsoft/internal/platform/viewcache"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrMutationFailed  = errors.New("mutation failed")
)

// Pasos del pipeline de mutación. Toda acción los recorre en este orden y
// cualquier falla aborta ahí mismo; nunca hay resultados parciales visibles.
type step string

const (
	stepValidating     step = "validating"
	stepAuthenticating step = "authenticating"
	stepAuthorizing    step = "authorizing"
	stepMutating       step = "mutating"
)

const listViewTTL = 10 * time.Minute

// Service coordina las mutaciones de pets:
// pacing -> validar -> autenticar -> (autorizar) -> mutar -> invalidar vista.
type Service struct {
	repo     Repository
	views    viewcache.Cache
	log      logger.Logger
	validate *validator.Validate
	now      func() time.Time

	// delay es el piso de latencia artificial por acción (pacing de UX).
	// Independiente del trabajo real; 0 lo desactiva.
	delay time.Duration
}

func NewService(repo Repository, views viewcache.Cache, log logger.Logger, delay time.Duration) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		views:    views,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
		delay:    delay,
	}
}

// Add inserta una mascota nueva del actor. No es idempotente: dos Add con el
// mismo payload crean dos recursos distintos.
func (s *Service) Add(ctx context.Context, actorUserID string, f Form) (Pet, error) {
	s.pace(ctx)

	if err := s.validateForm(f); err != nil {
		return Pet{}, s.abort("add", stepValidating, err)
	}
	if err := requireActor(actorUserID); err != nil {
		return Pet{}, s.abort("add", stepAuthenticating, err)
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: strings.TrimSpace(actorUserID),
		Name:        strings.TrimSpace(f.Name),
		Species:     strings.TrimSpace(f.Species),
		Age:         f.Age,
		ImageURL:    strings.TrimSpace(f.ImageURL),
		Notes:       strings.TrimSpace(f.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// la causa no viaja al caller: señal opaca de mutación fallida
		s.log.Error("add pet: create failed", map[string]any{"error": err.Error()})
		return Pet{}, s.abort("add", stepMutating, ErrMutationFailed)
	}

	s.invalidateView(ctx, p.OwnerUserID)
	return p, nil
}

// Edit aplica el payload sobre los atributos (nunca el owner).
// Las dos validaciones (id y payload) se evalúan siempre, recién después se corta.
func (s *Service) Edit(ctx context.Context, actorUserID, petID string, f Form) (Pet, error) {
	s.pace(ctx)

	idErr := validateID(petID)
	formErr := s.validateForm(f)
	if idErr != nil || formErr != nil {
		return Pet{}, s.abort("edit", stepValidating, ErrInvalidInput)
	}

	if err := requireActor(actorUserID); err != nil {
		return Pet{}, s.abort("edit", stepAuthenticating, err)
	}

	current, err := s.authorize(ctx, actorUserID, strings.TrimSpace(petID))
	if err != nil {
		return Pet{}, s.abort("edit", stepAuthorizing, err)
	}

	current.Name = strings.TrimSpace(f.Name)
	current.Species = strings.TrimSpace(f.Species)
	current.Age = f.Age
	current.ImageURL = strings.TrimSpace(f.ImageURL)
	current.Notes = strings.TrimSpace(f.Notes)
	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current); err != nil {
		s.log.Error("edit pet: update failed", map[string]any{"pet_id": current.ID, "error": err.Error()})
		return Pet{}, s.abort("edit", stepMutating, ErrMutationFailed)
	}

	s.invalidateView(ctx, current.OwnerUserID)
	return current, nil
}

// Delete elimina la mascota del actor. Borrar algo ya borrado da ErrNotFound.
func (s *Service) Delete(ctx context.Context, actorUserID, petID string) error {
	s.pace(ctx)

	if err := validateID(petID); err != nil {
		return s.abort("delete", stepValidating, err)
	}
	if err := requireActor(actorUserID); err != nil {
		return s.abort("delete", stepAuthenticating, err)
	}

	current, err := s.authorize(ctx, actorUserID, strings.TrimSpace(petID))
	if err != nil {
		return s.abort("delete", stepAuthorizing, err)
	}

	if err := s.repo.Delete(ctx, current.ID); err != nil {
		s.log.Error("delete pet: delete failed", map[string]any{"pet_id": current.ID, "error": err.Error()})
		return s.abort("delete", stepMutating, ErrMutationFailed)
	}

	s.invalidateView(ctx, current.OwnerUserID)
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

// ListByOwner sirve la vista cacheada si está fresca; si no, recomputa desde
// el storage autoritativo y la vuelve a cachear.
func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrUnauthenticated
	}

	if s.views != nil {
		if payload, ok := s.views.Get(ctx, ownerUserID); ok {
			var cached []Pet
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
			// payload corrupto: lo tratamos como miss
		}
	}

	items, err := s.repo.ListByOwner(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}

	if s.views != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.views.Set(ctx, ownerUserID, payload, listViewTTL); err != nil {
				s.log.Warn("list view: cache set failed", map[string]any{"error": err.Error()})
			}
		}
	}
	return items, nil
}

// invalidateView emite la señal de invalidación post-mutación.
// Si falla queda logueado y nada más: la mutación ya es autoritativa
// y no se compensa por una invalidación fallida.
func (s *Service) invalidateView(ctx context.Context, ownerUserID string) {
	if s.views == nil {
		return
	}
	if err := s.views.Invalidate(ctx, ownerUserID); err != nil {
		s.log.Warn("view invalidation failed", map[string]any{"owner": ownerUserID, "error": err.Error()})
	}
}

// pace aplica el piso de latencia configurado antes de validar.
func (s *Service) pace(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// abort deja registro del paso donde murió la acción y devuelve la señal.
// El error siempre vuelve como resultado normal, nunca como panic.
func (s *Service) abort(action string, st step, err error) error {
	s.log.Debug("pet action aborted", map[string]any{"action": action, "step": string(st), "reason": err.Error()})
	return err
}

func requireActor(actorUserID string) error {
	if strings.TrimSpace(actorUserID) == "" {
		return ErrUnauthenticated
	}
	return nil
}
