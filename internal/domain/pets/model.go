package pets

import "time"

// Pet representa una mascota alojada, siempre con exactamente un dueño.
// OwnerUserID se fija al crear y no cambia nunca (edit toca solo atributos).
type Pet struct {
	ID          string
	OwnerUserID string

	Name     string
	Species  string
	Age      int
	ImageURL string
	Notes    string

	CreatedAt time.Time
	UpdatedAt time.Time
}
