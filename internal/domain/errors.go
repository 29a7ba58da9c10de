package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
//
// Taxonomía: validación, no-encontrado y conflicto siempre llegan al caller
// con mensaje descriptivo; los errores de backend los absorbe la capa de
// datos (fallback a almacenamiento local) y no se propagan salvo que no
// exista fallback posible.
var (
	ErrValidation   = errors.New("entrada inválida")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
)

// NewValidation construye un error de validación que nombra el campo ofensivo.
func NewValidation(field, reason string) error {
	return fmt.Errorf("%w: campo %q: %s", ErrValidation, field, reason)
}

// NewNotFound construye un error de no-encontrado para un recurso con ID.
func NewNotFound(resource, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, id)
}

// NewConflict construye un error de conflicto (unicidad violada, recurso en uso).
func NewConflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}
