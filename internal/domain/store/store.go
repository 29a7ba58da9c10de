// Package store define el contrato de persistencia de documentos del sistema:
// los nombres estables de colección y el puerto que implementan tanto el
// backend remoto como el almacén local de archivos.
package store

import (
	"context"
	"encoding/json"
)

// Nombres de colección. Son parte del contrato de almacenamiento: los archivos
// locales, las filas remotas y los canales de notificación los usan tal cual.
const (
	Users               = "users"
	Roles               = "roles"
	Profiles            = "profiles"
	ProfileTemplates    = "profile_templates"
	OnboardingInstances = "onboarding_instances"
	Templates           = "templates"
	Suggestions         = "suggestions"
	Activities          = "activities"
	AuthCredentials     = "auth_credentials"
	Experts             = "experts"
)

// All devuelve los nombres de colección conocidos.
func All() []string {
	return []string{
		Users, Roles, Profiles, ProfileTemplates, OnboardingInstances,
		Templates, Suggestions, Activities, AuthCredentials, Experts,
	}
}

// LocalOnly indica si la colección se persiste únicamente en el almacén local,
// sin replicarse jamás al backend remoto.
func LocalOnly(collection string) bool {
	return collection == AuthCredentials
}

// Snapshot es el contenido completo de una colección en un instante dado.
type Snapshot []json.RawMessage

// Store es el puerto de persistencia de documentos. Los documentos son objetos
// JSON con un campo "id" de tipo cadena asignado por el propio almacén.
type Store interface {
	// List devuelve todos los documentos de la colección.
	List(ctx context.Context, collection string) (Snapshot, error)
	// Get devuelve un documento por id. Error domain.ErrNotFound si no existe.
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	// Create inserta el documento (sin id) y devuelve la versión almacenada.
	Create(ctx context.Context, collection string, doc map[string]any) (json.RawMessage, error)
	// Update aplica un parche parcial sobre el documento indicado.
	Update(ctx context.Context, collection, id string, partial map[string]any) (json.RawMessage, error)
	// Delete elimina el documento indicado. Eliminar un id inexistente no es error.
	Delete(ctx context.Context, collection, id string) error
	// Query devuelve los documentos cuyo campo de primer nivel coincide con value.
	Query(ctx context.Context, collection, field, value string) (Snapshot, error)
	// Subscribe registra un observador de la colección y le entrega snapshots
	// completos ante cada cambio. Devuelve la función para cancelar la suscripción.
	Subscribe(ctx context.Context, collection string, fn func(Snapshot)) (func(), error)
}
