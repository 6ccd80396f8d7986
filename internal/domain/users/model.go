package users

import "time"

// User representa una cuenta con credencial propia.
// HasAccess es el flag de entitlement: lo prende solo el webhook de pagos.
type User struct {
	ID             string
	Email          string
	HashedPassword string
	HasAccess      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
