package pets

import "context"

// authorize confirma que la mascota existe y pertenece al actor.
// El orden importa: existencia primero, ownership después, para que
// "no existe" y "no es tuyo" queden como fallas distinguibles.
func (s *Service) authorize(ctx context.Context, actorUserID, petID string) (Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	if p.OwnerUserID != actorUserID {
		return Pet{}, ErrNotAuthorized
	}
	return p, nil
}

// OwnerOf expone el ownerUserID de una mascota sin cargar el resto del perfil
// en el caller. Útil para otros módulos sin crear ciclos de imports.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return "", ErrNotFound
	}
	return p.OwnerUserID, nil
}
