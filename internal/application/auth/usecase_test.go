package auth_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Onboarding-api/internal/application/auth"
	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/bus"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/localstore"
	pkgjwt "github.com/jhoicas/Onboarding-api/pkg/jwt"
)

const (
	testSecret = "secret-de-pruebas-auth"
	testIssuer = "onboarding-test"
)

func newAuthUC(t *testing.T) (*auth.UseCase, store.Store) {
	t.Helper()
	s, err := localstore.New(t.TempDir(), bus.New(), zerolog.Nop())
	require.NoError(t, err)
	uc := auth.NewUseCase(s, auth.Config{Secret: testSecret, ExpMinutes: 60, Issuer: testIssuer}, zerolog.Nop())
	return uc, s
}

func TestRegisterYLoginIdaYVuelta(t *testing.T) {
	uc, _ := newAuthUC(t)
	ctx := context.Background()

	sesion, err := uc.Register(ctx, dto.RegisterRequest{
		Email:    "ana@acme.com",
		Password: "super-secreta",
		Name:     "Ana",
		Role:     "manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "manager", sesion.Role)
	assert.NotEmpty(t, sesion.ID, "el registro enlaza un documento User")

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@acme.com", Password: "super-secreta"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", out.User.Name)

	userID, email, role, err := pkgjwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, sesion.ID, userID)
	assert.Equal(t, "ana@acme.com", email)
	assert.Equal(t, "manager", role)
}

func TestLoginNoRevelaQueCuentasExisten(t *testing.T) {
	uc, _ := newAuthUC(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{Email: "ana@acme.com", Password: "super-secreta"})
	require.NoError(t, err)

	_, errPass := uc.Login(ctx, dto.LoginRequest{Email: "ana@acme.com", Password: "equivocada"})
	require.ErrorIs(t, errPass, domain.ErrUnauthorized)

	_, errCuenta := uc.Login(ctx, dto.LoginRequest{Email: "nadie@acme.com", Password: "lo-que-sea"})
	require.ErrorIs(t, errCuenta, domain.ErrUnauthorized)

	assert.Equal(t, errPass.Error(), errCuenta.Error(),
		"contraseña incorrecta y cuenta inexistente deben ser indistinguibles")
}

func TestRegisterValidaYRechazaDuplicados(t *testing.T) {
	uc, _ := newAuthUC(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, dto.RegisterRequest{Email: "no-es-correo", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.Register(ctx, dto.RegisterRequest{Email: "ana@acme.com", Password: "corta"})
	assert.ErrorIs(t, err, domain.ErrValidation, "mínimo 8 caracteres")

	_, err = uc.Register(ctx, dto.RegisterRequest{Email: "ana@acme.com", Password: "12345678", Role: "superusuario"})
	assert.ErrorIs(t, err, domain.ErrValidation, "rol fuera del catálogo")

	_, err = uc.Register(ctx, dto.RegisterRequest{Email: "ana@acme.com", Password: "12345678"})
	require.NoError(t, err)

	_, err = uc.Register(ctx, dto.RegisterRequest{Email: "ANA@ACME.COM", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrConflict, "la credencial es única sin distinguir mayúsculas")
}

func TestRegisterCreaElUsuarioDeDirectorio(t *testing.T) {
	uc, s := newAuthUC(t)
	ctx := context.Background()

	sesion, err := uc.Register(ctx, dto.RegisterRequest{Email: "luis@acme.com", Password: "12345678", Name: "Luis"})
	require.NoError(t, err)

	users := store.NewRecords[entity.User](s, store.Users)
	u, err := users.Get(ctx, sesion.ID)
	require.NoError(t, err)
	assert.Equal(t, "luis@acme.com", u.Email)
	assert.Equal(t, entity.CreatedBySystem, u.CreatedBy)
	assert.Equal(t, []string{entity.RoleEmployee}, u.Roles, "sin rol explícito queda como employee")
}

func TestEnsureAccessEsIdempotente(t *testing.T) {
	uc, s := newAuthUC(t)
	ctx := context.Background()

	require.NoError(t, uc.EnsureAccess(ctx, "eva@acme.com", "Eva"))
	require.NoError(t, uc.EnsureAccess(ctx, "EVA@acme.com", "Eva"), "repetir no duplica nada")

	creds := store.NewRecords[entity.AuthCredential](s, store.AuthCredentials)
	allCreds, err := creds.List(ctx)
	require.NoError(t, err)
	require.Len(t, allCreds, 1)
	assert.NotEmpty(t, allCreds[0].UID, "la credencial queda enlazada al usuario")

	users := store.NewRecords[entity.User](s, store.Users)
	allUsers, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, allUsers, 1)

	// El acceso aprovisionado entra con la contraseña inicial por defecto.
	out, err := uc.Login(ctx, dto.LoginRequest{Email: "eva@acme.com", Password: "onboarding123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleEmployee, out.User.Role)
}

func TestEnsureAccessUsaLaContrasenaConfigurada(t *testing.T) {
	st, err := localstore.New(t.TempDir(), bus.New(), zerolog.Nop())
	require.NoError(t, err)
	uc := auth.NewUseCase(st, auth.Config{
		Secret:          testSecret,
		ExpMinutes:      60,
		Issuer:          testIssuer,
		DefaultPassword: "clave-corporativa",
	}, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, uc.EnsureAccess(ctx, "mar@acme.com", "Mar"))

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "mar@acme.com", Password: "clave-corporativa"})
	assert.NoError(t, err)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "mar@acme.com", Password: "onboarding123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureAccessReparaElEnlaceConElUsuario(t *testing.T) {
	uc, s := newAuthUC(t)
	ctx := context.Background()

	// Credencial heredada sin uid, como las que existían antes del enlace.
	creds := store.NewRecords[entity.AuthCredential](s, store.AuthCredentials)
	vieja, err := creds.Create(ctx, entity.AuthCredential{
		Email:        "leo@acme.com",
		Role:         entity.RoleEmployee,
		PasswordHash: "$2a$10$invalido-para-login-pero-da-igual",
	})
	require.NoError(t, err)
	require.Empty(t, vieja.UID)

	require.NoError(t, uc.EnsureAccess(ctx, "leo@acme.com", "Leo"))

	reparada, err := creds.Get(ctx, vieja.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, reparada.UID, "el enlace con el documento User queda reparado")

	users := store.NewRecords[entity.User](s, store.Users)
	u, err := users.Get(ctx, reparada.UID)
	require.NoError(t, err)
	assert.Equal(t, "leo@acme.com", u.Email)
}
