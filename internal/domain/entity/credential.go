package entity

import "time"

// AuthCredential es el registro local de acceso de un usuario. Esta colección
// nunca se replica al backend remoto: vive solo en el almacén de archivos.
// UID apunta al documento User respaldado por la credencial.
type AuthCredential struct {
	ID           string    `json:"id,omitempty"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	UID          string    `json:"uid,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}
