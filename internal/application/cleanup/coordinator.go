// Package cleanup implementa el borrado en cascada de un usuario: una lista
// declarativa de reglas (colección, filtro, acción) ejecutada por un único
// barrido genérico. Cada regla es tolerante a fallos por sí misma; el borrado
// del usuario se intenta siempre, aunque alguna regla haya fallado.
package cleanup

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

type action int

const (
	actionDelete action = iota
	actionRepoint
)

// rule describe qué documentos de una colección alcanza la cascada y qué
// hacer con ellos: eliminarlos o reapuntar su createdBy al centinela system.
type rule struct {
	collection string
	matches    func(doc map[string]any) bool
	act        action
}

// Coordinator ejecuta la cascada sobre la capa dual de documentos.
type Coordinator struct {
	store store.Store
	log   zerolog.Logger
}

// New construye el coordinador.
func New(s store.Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{store: s, log: log.With().Str("componente", "cleanup").Logger()}
}

// DeleteUser elimina al usuario y todo su rastro: instancias de onboarding,
// sugerencias, actividades y registros de experto asociados a su identidad, y
// reapunta a "system" las referencias createdBy que quedarían colgando.
// Un usuario inexistente es éxito sin efectos.
func (c *Coordinator) DeleteUser(ctx context.Context, userID string) error {
	raw, err := c.store.Get(ctx, store.Users, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	var user entity.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return err
	}

	sameIdentity := func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		return s == userID || domain.SameEmail(s, user.Email)
	}

	rules := []rule{
		{store.OnboardingInstances, func(d map[string]any) bool { return sameIdentity(d["employeeEmail"]) }, actionDelete},
		{store.Suggestions, func(d map[string]any) bool { return sameIdentity(d["author"]) }, actionDelete},
		{store.Activities, func(d map[string]any) bool { return sameIdentity(d["actor"]) }, actionDelete},
		{store.Experts, func(d map[string]any) bool { return sameIdentity(d["email"]) }, actionDelete},
		{store.Templates, func(d map[string]any) bool { return sameIdentity(d["createdBy"]) }, actionRepoint},
		{store.Roles, func(d map[string]any) bool { return sameIdentity(d["createdBy"]) }, actionRepoint},
		{store.Profiles, func(d map[string]any) bool { return sameIdentity(d["createdBy"]) }, actionRepoint},
		{store.ProfileTemplates, func(d map[string]any) bool { return sameIdentity(d["createdBy"]) }, actionRepoint},
	}
	for _, r := range rules {
		c.sweep(ctx, r)
	}

	// El borrado del usuario es el paso terminal y se intenta siempre.
	if err := c.store.Delete(ctx, store.Users, userID); err != nil {
		return err
	}

	c.removeCredential(ctx, user.Email)
	return nil
}

// sweep aplica la regla documento por documento; los fallos se registran y el
// barrido continúa.
func (c *Coordinator) sweep(ctx context.Context, r rule) {
	snap, err := c.store.List(ctx, r.collection)
	if err != nil {
		c.log.Warn().Err(err).Str("coleccion", r.collection).Msg("cascada: no se pudo listar la colección")
		return
	}
	for _, raw := range snap {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if !r.matches(doc) {
			continue
		}
		id, _ := doc["id"].(string)
		if id == "" {
			continue
		}
		switch r.act {
		case actionDelete:
			if err := c.store.Delete(ctx, r.collection, id); err != nil {
				c.log.Warn().Err(err).Str("coleccion", r.collection).Str("id", id).Msg("cascada: borrado fallido")
			}
		case actionRepoint:
			if _, err := c.store.Update(ctx, r.collection, id, map[string]any{"createdBy": entity.CreatedBySystem}); err != nil {
				c.log.Warn().Err(err).Str("coleccion", r.collection).Str("id", id).Msg("cascada: reapuntado fallido")
			}
		}
	}
}

// removeCredential quita la credencial local del correo, sin distinguir
// mayúsculas. No encontrarla no es error: la operación es idempotente.
func (c *Coordinator) removeCredential(ctx context.Context, email string) {
	snap, err := c.store.List(ctx, store.AuthCredentials)
	if err != nil {
		c.log.Warn().Err(err).Msg("cascada: no se pudieron listar las credenciales")
		return
	}
	for _, raw := range snap {
		var cred entity.AuthCredential
		if err := json.Unmarshal(raw, &cred); err != nil {
			continue
		}
		if !domain.SameEmail(cred.Email, email) {
			continue
		}
		if err := c.store.Delete(ctx, store.AuthCredentials, cred.ID); err != nil {
			c.log.Warn().Err(err).Str("id", cred.ID).Msg("cascada: no se pudo quitar la credencial")
		}
	}
}
