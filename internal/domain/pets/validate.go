package pets

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Form es el payload normalizado de add/edit.
// El schema corre antes de cualquier efecto: la validación es pura.
type Form struct {
	Name     string `validate:"required,max=100"`
	Species  string `validate:"required,max=100"`
	Age      int    `validate:"gte=0,lte=100"`
	ImageURL string `validate:"omitempty,url,max=500"`
	Notes    string `validate:"max=1000"`
}

// validateForm chequea shape y constraints del payload.
// Hacia afuera solo existe "invalid data": no distinguimos qué campo falló.
func (s *Service) validateForm(f Form) error {
	if err := s.validate.Struct(f); err != nil {
		return ErrInvalidInput
	}
	return nil
}

// validateID exige un identificador uuid bien formado.
func validateID(id string) error {
	if _, err := uuid.Parse(strings.TrimSpace(id)); err != nil {
		return ErrInvalidInput
	}
	return nil
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
