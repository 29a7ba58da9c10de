package domain

import (
	"regexp"
	"sort"
	"strings"
)

// emailShape valida la forma básica local@dominio.tld; no pretende cubrir el RFC completo.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail indica si el texto tiene forma de correo electrónico.
func ValidEmail(s string) bool {
	return emailShape.MatchString(strings.TrimSpace(s))
}

// SameEmail compara dos correos sin distinguir mayúsculas ni espacios sobrantes.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// RequireFields valida que cada campo requerido sea una cadena no vacía.
// Devuelve un error de validación nombrando el primer campo ofensivo
// (orden alfabético para que el mensaje sea estable).
func RequireFields(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(fields[name]) == "" {
			return NewValidation(name, "es requerido y no puede estar vacío")
		}
	}
	return nil
}
