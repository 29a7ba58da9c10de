package entity

import "time"

// Roles de autorización reconocidos por las credenciales de acceso.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// CreatedBySystem marca documentos generados por el propio sistema
// (aprovisionamiento automático o reapuntado tras borrar a su autor).
const CreatedBySystem = "system"

// User es la cuenta de una persona dentro de la plataforma de onboarding.
// El correo es único sin distinguir mayúsculas de minúsculas. Roles y
// Profiles son los roles funcionales y perfiles de puesto asignados.
type User struct {
	ID        string    `json:"id,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	Profiles  []string  `json:"profiles"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
