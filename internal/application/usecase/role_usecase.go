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

// RoleUseCase administra los roles funcionales definidos por los administradores.
type RoleUseCase struct {
	roles     store.Records[entity.Role]
	users     store.Records[entity.User]
	templates store.Records[entity.Template]
	activity  *ActivityUseCase
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(s store.Store, activity *ActivityUseCase) *RoleUseCase {
	return &RoleUseCase{
		roles:     store.NewRecords[entity.Role](s, store.Roles),
		users:     store.NewRecords[entity.User](s, store.Users),
		templates: store.NewRecords[entity.Template](s, store.Templates),
		activity:  activity,
	}
}

// List devuelve todos los roles.
func (uc *RoleUseCase) List(ctx context.Context) ([]entity.Role, error) {
	return uc.roles.List(ctx)
}

// Get obtiene un rol por ID.
func (uc *RoleUseCase) Get(ctx context.Context, id string) (entity.Role, error) {
	return uc.roles.Get(ctx, id)
}

// Create da de alta un rol. El nombre es único sin distinguir mayúsculas.
func (uc *RoleUseCase) Create(ctx context.Context, actor string, in dto.CreateRoleRequest) (entity.Role, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return entity.Role{}, domain.NewValidation("name", "es obligatorio")
	}
	if taken, err := uc.nameTaken(ctx, name, ""); err != nil {
		return entity.Role{}, err
	} else if taken {
		return entity.Role{}, domain.NewConflict("ya existe un rol con ese nombre")
	}

	created, err := uc.roles.Create(ctx, entity.Role{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   actor,
	})
	if err != nil {
		return entity.Role{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("creó el rol %s", created.Name))
	return created, nil
}

// Update aplica un parche parcial revalidando la unicidad del nombre.
func (uc *RoleUseCase) Update(ctx context.Context, actor, id string, in dto.UpdateRoleRequest) (entity.Role, error) {
	patch := in.Patch()
	if len(patch) == 0 {
		return entity.Role{}, domain.NewValidation("parche", "no contiene campos")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return entity.Role{}, domain.NewValidation("name", "es obligatorio")
		}
		if taken, err := uc.nameTaken(ctx, name, id); err != nil {
			return entity.Role{}, err
		} else if taken {
			return entity.Role{}, domain.NewConflict("ya existe un rol con ese nombre")
		}
		patch["name"] = name
	}

	updated, err := uc.roles.Update(ctx, id, patch)
	if err != nil {
		return entity.Role{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("actualizó el rol %s", updated.Name))
	return updated, nil
}

// Delete elimina el rol si ningún usuario ni plantilla lo referencia.
func (uc *RoleUseCase) Delete(ctx context.Context, actor, id string) error {
	role, err := uc.roles.Get(ctx, id)
	if err != nil {
		return err
	}
	inUse, err := uc.roleInUse(ctx, role.Name)
	if err != nil {
		return err
	}
	if inUse {
		return domain.NewConflict(fmt.Sprintf("el rol %s está en uso", role.Name))
	}
	if err := uc.roles.Delete(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("eliminó el rol %s", role.Name))
	return nil
}

func (uc *RoleUseCase) nameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	roles, err := uc.roles.List(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.ID != excludeID && strings.EqualFold(strings.TrimSpace(r.Name), name) {
			return true, nil
		}
	}
	return false, nil
}

// roleInUse revisa usuarios, plantillas y pasos que referencien el rol por nombre.
func (uc *RoleUseCase) roleInUse(ctx context.Context, name string) (bool, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		for _, r := range u.Roles {
			if strings.EqualFold(r, name) {
				return true, nil
			}
		}
	}
	templates, err := uc.templates.List(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range templates {
		if strings.EqualFold(t.Role, name) {
			return true, nil
		}
		for _, s := range t.Steps {
			if strings.EqualFold(s.Role, name) {
				return true, nil
			}
		}
	}
	return false, nil
}
