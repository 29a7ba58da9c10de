package entity

import "time"

// Role es un rol funcional definido por los administradores (distinto de los
// roles de autorización del sistema). Su nombre es único sin distinguir
// mayúsculas de minúsculas.
type Role struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}
