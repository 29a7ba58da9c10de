package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// ProfileUseCase administra los perfiles de puesto y sus vínculos con plantillas.
type ProfileUseCase struct {
	profiles  store.Records[entity.Profile]
	links     store.Records[entity.ProfileTemplate]
	templates store.Records[entity.Template]
	activity  *ActivityUseCase
}

// NewProfileUseCase construye el caso de uso.
func NewProfileUseCase(s store.Store, activity *ActivityUseCase) *ProfileUseCase {
	return &ProfileUseCase{
		profiles:  store.NewRecords[entity.Profile](s, store.Profiles),
		links:     store.NewRecords[entity.ProfileTemplate](s, store.ProfileTemplates),
		templates: store.NewRecords[entity.Template](s, store.Templates),
		activity:  activity,
	}
}

// List devuelve todos los perfiles.
func (uc *ProfileUseCase) List(ctx context.Context) ([]entity.Profile, error) {
	return uc.profiles.List(ctx)
}

// Get obtiene un perfil por ID.
func (uc *ProfileUseCase) Get(ctx context.Context, id string) (entity.Profile, error) {
	return uc.profiles.Get(ctx, id)
}

// Create da de alta un perfil de puesto.
func (uc *ProfileUseCase) Create(ctx context.Context, actor string, in dto.CreateProfileRequest) (entity.Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Profile{}, domain.NewValidation("name", "es obligatorio")
	}
	created, err := uc.profiles.Create(ctx, entity.Profile{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Roles:       orEmpty(in.Roles),
		CreatedBy:   actor,
	})
	if err != nil {
		return entity.Profile{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("creó el perfil %s", created.Name))
	return created, nil
}

// Update aplica un parche parcial al perfil.
func (uc *ProfileUseCase) Update(ctx context.Context, actor, id string, in dto.UpdateProfileRequest) (entity.Profile, error) {
	patch := in.Patch()
	if len(patch) == 0 {
		return entity.Profile{}, domain.NewValidation("parche", "no contiene campos")
	}
	updated, err := uc.profiles.Update(ctx, id, patch)
	if err != nil {
		return entity.Profile{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("actualizó el perfil %s", updated.Name))
	return updated, nil
}

// Delete elimina el perfil junto con sus vínculos perfil-plantilla.
func (uc *ProfileUseCase) Delete(ctx context.Context, actor, id string) error {
	profile, err := uc.profiles.Get(ctx, id)
	if err != nil {
		return err
	}
	links, err := uc.links.Query(ctx, "profileId", id)
	if err == nil {
		for _, l := range links {
			_ = uc.links.Delete(ctx, l.ID)
		}
	}
	if err := uc.profiles.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("eliminó el perfil %s", profile.Name))
	return nil
}

// ── Vínculos perfil ↔ plantilla ───────────────────────────────────────────

// ListLinks devuelve los vínculos; con profileID no vacío filtra por perfil.
func (uc *ProfileUseCase) ListLinks(ctx context.Context, profileID string) ([]entity.ProfileTemplate, error) {
	if profileID == "" {
		return uc.links.List(ctx)
	}
	return uc.links.Query(ctx, "profileId", profileID)
}

// CreateLink vincula un perfil con una plantilla. Ambos deben existir y el
// vínculo no puede duplicarse.
func (uc *ProfileUseCase) CreateLink(ctx context.Context, actor string, in dto.CreateProfileTemplateRequest) (entity.ProfileTemplate, error) {
	if err := domain.RequireFields(map[string]string{
		"profileId":  in.ProfileID,
		"templateId": in.TemplateID,
	}); err != nil {
		return entity.ProfileTemplate{}, err
	}
	if _, err := uc.profiles.Get(ctx, in.ProfileID); err != nil {
		return entity.ProfileTemplate{}, err
	}
	if _, err := uc.templates.Get(ctx, in.TemplateID); err != nil {
		return entity.ProfileTemplate{}, err
	}

	existing, err := uc.links.Query(ctx, "profileId", in.ProfileID)
	if err != nil {
		return entity.ProfileTemplate{}, err
	}
	for _, l := range existing {
		if l.TemplateID == in.TemplateID {
			return entity.ProfileTemplate{}, domain.NewConflict("el perfil ya está vinculado a esa plantilla")
		}
	}

	created, err := uc.links.Create(ctx, entity.ProfileTemplate{
		ProfileID:  in.ProfileID,
		TemplateID: in.TemplateID,
		CreatedBy:  actor,
	})
	if err != nil {
		return entity.ProfileTemplate{}, err
	}
	uc.activity.Record(ctx, actor, "vinculó un perfil con una plantilla")
	return created, nil
}

// DeleteLink elimina un vínculo perfil-plantilla.
func (uc *ProfileUseCase) DeleteLink(ctx context.Context, actor, id string) error {
	if err := uc.links.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, "eliminó un vínculo perfil-plantilla")
	return nil
}
