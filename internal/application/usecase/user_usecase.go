package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/Onboarding-api/internal/application/cleanup"
	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// UserUseCase aplica reglas de negocio para usuarios del directorio.
type UserUseCase struct {
	users    store.Records[entity.User]
	cleanup  *cleanup.Coordinator
	activity *ActivityUseCase
}

// NewUserUseCase construye el caso de uso con la capa de documentos y la cascada.
func NewUserUseCase(s store.Store, coordinator *cleanup.Coordinator, activity *ActivityUseCase) *UserUseCase {
	return &UserUseCase{
		users:    store.NewRecords[entity.User](s, store.Users),
		cleanup:  coordinator,
		activity: activity,
	}
}

// List devuelve todos los usuarios.
func (uc *UserUseCase) List(ctx context.Context) ([]entity.User, error) {
	return uc.users.List(ctx)
}

// Get obtiene un usuario por ID.
func (uc *UserUseCase) Get(ctx context.Context, id string) (entity.User, error) {
	return uc.users.Get(ctx, id)
}

// Create da de alta un usuario. El correo es obligatorio, con forma válida y
// único sin distinguir mayúsculas.
func (uc *UserUseCase) Create(ctx context.Context, actor string, in dto.CreateUserRequest) (entity.User, error) {
	if err := domain.RequireFields(map[string]string{
		"name":  in.Name,
		"email": in.Email,
	}); err != nil {
		return entity.User{}, err
	}
	email := strings.TrimSpace(in.Email)
	if !domain.ValidEmail(email) {
		return entity.User{}, domain.NewValidation("email", "forma de correo inválida")
	}
	if taken, err := uc.emailTaken(ctx, email, ""); err != nil {
		return entity.User{}, err
	} else if taken {
		return entity.User{}, domain.NewConflict("ya existe un usuario con ese correo")
	}

	user := entity.User{
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Roles:     orEmpty(in.Roles),
		Profiles:  orEmpty(in.Profiles),
		CreatedBy: actor,
	}
	created, err := uc.users.Create(ctx, user)
	if err != nil {
		return entity.User{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("creó al usuario %s", created.Name))
	return created, nil
}

// Update aplica un parche parcial. Si cambia el correo se revalida forma y unicidad.
func (uc *UserUseCase) Update(ctx context.Context, actor, id string, in dto.UpdateUserRequest) (entity.User, error) {
	patch := in.Patch()
	if len(patch) == 0 {
		return entity.User{}, domain.NewValidation("parche", "no contiene campos")
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !domain.ValidEmail(email) {
			return entity.User{}, domain.NewValidation("email", "forma de correo inválida")
		}
		if taken, err := uc.emailTaken(ctx, email, id); err != nil {
			return entity.User{}, err
		} else if taken {
			return entity.User{}, domain.NewConflict("ya existe un usuario con ese correo")
		}
		patch["email"] = email
	}

	updated, err := uc.users.Update(ctx, id, patch)
	if err != nil {
		return entity.User{}, err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("actualizó al usuario %s", updated.Name))
	return updated, nil
}

// Delete elimina al usuario con su cascada completa.
func (uc *UserUseCase) Delete(ctx context.Context, actor, id string) error {
	name := id
	if user, err := uc.users.Get(ctx, id); err == nil {
		name = user.Name
	}
	if err := uc.cleanup.DeleteUser(ctx, id); err != nil {
		return err
	}
	uc.activity.Record(ctx, actor, fmt.Sprintf("eliminó al usuario %s", name))
	return nil
}

// emailTaken indica si otro usuario (distinto de excludeID) ya usa el correo,
// sin distinguir mayúsculas de minúsculas.
func (uc *UserUseCase) emailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	users, err := uc.users.List(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID != excludeID && domain.SameEmail(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// orEmpty normaliza nil a lista vacía para que el documento siempre lleve el campo.
func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
