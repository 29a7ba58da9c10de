// Package auth contiene los casos de uso de autenticación: registro, login y
// aprovisionamiento automático de accesos para empleados en onboarding.
//
// Las credenciales viven en la colección auth_credentials, que es local por
// diseño: nunca se replica al backend remoto.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
	"github.com/jhoicas/Onboarding-api/pkg/jwt"
)

// defaultProvisionPassword se usa cuando AUTH_DEFAULT_PASSWORD no está definida.
// El empleado debe cambiarla en su primer acceso.
const defaultProvisionPassword = "onboarding123"

// Config configuración para generación de tokens y aprovisionamiento.
type Config struct {
	Secret          string
	ExpMinutes      int
	Issuer          string
	DefaultPassword string
}

// UseCase casos de uso de autenticación.
type UseCase struct {
	credentials store.Records[entity.AuthCredential]
	users       store.Records[entity.User]
	cfg         Config
	log         zerolog.Logger
}

var _ usecase.Provisioner = (*UseCase)(nil)

// NewUseCase construye el caso de uso de auth.
func NewUseCase(s store.Store, cfg Config, log zerolog.Logger) *UseCase {
	return &UseCase{
		credentials: store.NewRecords[entity.AuthCredential](s, store.AuthCredentials),
		users:       store.NewRecords[entity.User](s, store.Users),
		cfg:         cfg,
		log:         log.With().Str("componente", "auth").Logger(),
	}
}

// Register crea una credencial nueva: hashea la contraseña con bcrypt,
// garantiza que exista el documento User del correo y enlaza ambos.
// Devuelve conflicto si el correo ya tiene credencial (sin distinguir mayúsculas).
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterRequest) (dto.SessionUser, error) {
	email := strings.TrimSpace(in.Email)
	if !domain.ValidEmail(email) {
		return dto.SessionUser{}, domain.NewValidation("email", "no es un correo válido")
	}
	if len(in.Password) < 8 {
		return dto.SessionUser{}, domain.NewValidation("password", "debe tener al menos 8 caracteres")
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return dto.SessionUser{}, err
	}

	if existing, err := uc.findCredential(ctx, email); err != nil {
		return dto.SessionUser{}, err
	} else if existing != nil {
		return dto.SessionUser{}, domain.NewConflict(fmt.Sprintf("ya existe una credencial para %s", email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.SessionUser{}, fmt.Errorf("generando hash de contraseña: %w", err)
	}

	user, err := uc.ensureUser(ctx, email, strings.TrimSpace(in.Name), role)
	if err != nil {
		return dto.SessionUser{}, err
	}

	if _, err := uc.credentials.Create(ctx, entity.AuthCredential{
		Email:        email,
		Role:         role,
		UID:          user.ID,
		PasswordHash: string(hash),
	}); err != nil {
		return dto.SessionUser{}, err
	}

	return dto.SessionUser{ID: user.ID, Email: email, Name: user.Name, Role: role}, nil
}

// Login verifica email/contraseña contra las credenciales locales y genera el
// token JWT. Correo inexistente y contraseña incorrecta devuelven el mismo
// error para no revelar qué cuentas existen.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (dto.LoginResponse, error) {
	email := strings.TrimSpace(in.Email)
	cred, err := uc.findCredential(ctx, email)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	if cred == nil {
		return dto.LoginResponse{}, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(in.Password)); err != nil {
		return dto.LoginResponse{}, fmt.Errorf("%w: credenciales inválidas", domain.ErrUnauthorized)
	}

	session := dto.SessionUser{ID: cred.UID, Email: cred.Email, Name: cred.Email, Role: cred.Role}
	if user := uc.lookupUser(ctx, cred); user != nil {
		session.ID = user.ID
		session.Name = user.Name
	}

	token, err := jwt.Generate(uc.cfg.Secret, session.ID, cred.Email, cred.Role, uc.cfg.Issuer, uc.cfg.ExpMinutes)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("generando token: %w", err)
	}
	return dto.LoginResponse{Token: token, User: session}, nil
}

// EnsureAccess aprovisiona el acceso de un empleado que entra a onboarding:
// garantiza el documento User y una credencial con la contraseña inicial.
// Es idempotente: si ambos existen no toca nada; si la credencial antigua no
// está enlazada al usuario, repara el enlace.
func (uc *UseCase) EnsureAccess(ctx context.Context, email, name string) error {
	email = strings.TrimSpace(email)
	if !domain.ValidEmail(email) {
		return domain.NewValidation("email", "no es un correo válido")
	}

	user, err := uc.ensureUser(ctx, email, strings.TrimSpace(name), entity.RoleEmployee)
	if err != nil {
		return err
	}

	cred, err := uc.findCredential(ctx, email)
	if err != nil {
		return err
	}
	if cred != nil {
		if cred.UID == "" {
			if _, err := uc.credentials.Update(ctx, cred.ID, map[string]any{"uid": user.ID}); err != nil {
				return fmt.Errorf("enlazando credencial existente: %w", err)
			}
		}
		return nil
	}

	password := uc.cfg.DefaultPassword
	if password == "" {
		password = defaultProvisionPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("generando hash de contraseña: %w", err)
	}
	if _, err := uc.credentials.Create(ctx, entity.AuthCredential{
		Email:        email,
		Role:         entity.RoleEmployee,
		UID:          user.ID,
		PasswordHash: string(hash),
	}); err != nil {
		return err
	}
	uc.log.Info().Str("email", email).Msg("acceso aprovisionado para empleado en onboarding")
	return nil
}

// ensureUser devuelve el usuario del correo, creándolo como usuario de sistema
// si todavía no existe.
func (uc *UseCase) ensureUser(ctx context.Context, email, name, role string) (entity.User, error) {
	all, err := uc.users.List(ctx)
	if err != nil {
		return entity.User{}, fmt.Errorf("consultando usuarios: %w", err)
	}
	for _, u := range all {
		if domain.SameEmail(u.Email, email) {
			return u, nil
		}
	}
	if name == "" {
		name = email
	}
	created, err := uc.users.Create(ctx, entity.User{
		Email:     email,
		Name:      name,
		Roles:     []string{role},
		Profiles:  []string{},
		CreatedBy: entity.CreatedBySystem,
	})
	if err != nil {
		return entity.User{}, err
	}
	return created, nil
}

// findCredential busca la credencial del correo sin distinguir mayúsculas.
// Devuelve nil sin error cuando no existe.
func (uc *UseCase) findCredential(ctx context.Context, email string) (*entity.AuthCredential, error) {
	all, err := uc.credentials.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("consultando credenciales: %w", err)
	}
	for i := range all {
		if domain.SameEmail(all[i].Email, email) {
			return &all[i], nil
		}
	}
	return nil, nil
}

// lookupUser resuelve el documento User de una credencial: primero por el
// enlace uid, después por correo. Devuelve nil si no hay documento.
func (uc *UseCase) lookupUser(ctx context.Context, cred *entity.AuthCredential) *entity.User {
	if cred.UID != "" {
		if u, err := uc.users.Get(ctx, cred.UID); err == nil {
			return &u
		}
	}
	all, err := uc.users.List(ctx)
	if err != nil {
		return nil
	}
	for i := range all {
		if domain.SameEmail(all[i].Email, cred.Email) {
			return &all[i]
		}
	}
	return nil
}

// normalizeRole valida el rol de acceso; vacío queda como employee.
func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case "":
		return entity.RoleEmployee, nil
	case entity.RoleAdmin, entity.RoleManager, entity.RoleEmployee:
		return role, nil
	default:
		return "", domain.NewValidation("role", "debe ser admin, manager o employee")
	}
}
