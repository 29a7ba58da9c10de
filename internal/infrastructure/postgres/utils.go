package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Onboarding-api/internal/domain"
)

// Mensajes por índice único violado. Los nombres corresponden a los índices
// parciales del esquema de documentos.
var uniqueMessages = map[string]string{
	"documents_users_email_key": "ya existe un usuario con ese correo",
	"documents_roles_name_key":  "ya existe un rol con ese nombre",
}

// conflictError traduce una violación de unicidad (23505) al error de dominio,
// con el mensaje del índice violado cuando se conoce. Devuelve nil si err no
// es una violación de unicidad.
func conflictError(err error, collection string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != "23505" { // unique_violation
			return nil
		}
		if msg, ok := uniqueMessages[pgErr.ConstraintName]; ok {
			return domain.NewConflict(msg)
		}
		return domain.NewConflict("valor duplicado en " + collection)
	}
	if strings.Contains(err.Error(), "23505") {
		return domain.NewConflict("valor duplicado en " + collection)
	}
	return nil
}
