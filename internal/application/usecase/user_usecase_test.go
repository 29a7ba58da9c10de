package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Onboarding-api/internal/application/cleanup"
	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

func newUserUC(s store.Store) *usecase.UserUseCase {
	return usecase.NewUserUseCase(s, cleanup.New(s, zerolog.Nop()), newActivity(s))
}

func TestCrearUsuarioCorreoUnicoSinDistinguirMayusculas(t *testing.T) {
	s := newTestStore(t)
	uc := newUserUC(s)
	ctx := context.Background()

	_, err := uc.Create(ctx, "tester", dto.CreateUserRequest{Email: "Ana@Acme.com", Name: "Ana"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, "tester", dto.CreateUserRequest{Email: "ana@acme.com", Name: "Otra Ana"})
	assert.ErrorIs(t, err, domain.ErrConflict, "el mismo correo con otra caja es duplicado")

	_, err = uc.Create(ctx, "tester", dto.CreateUserRequest{Email: "sin-arroba", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestActualizarUsuarioPermiteConservarSuCorreo(t *testing.T) {
	s := newTestStore(t)
	uc := newUserUC(s)
	ctx := context.Background()

	ana, err := uc.Create(ctx, "tester", dto.CreateUserRequest{Email: "ana@acme.com", Name: "Ana"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "tester", dto.CreateUserRequest{Email: "luis@acme.com", Name: "Luis"})
	require.NoError(t, err)

	// Reenviar el propio correo (aun con otra caja) no es conflicto.
	_, err = uc.Update(ctx, "tester", ana.ID, dto.UpdateUserRequest{Email: ptr("ANA@acme.com"), Name: ptr("Ana María")})
	require.NoError(t, err)

	// Tomar el correo de otro usuario sí lo es.
	_, err = uc.Update(ctx, "tester", ana.ID, dto.UpdateUserRequest{Email: ptr("luis@acme.com")})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestEliminarUsuarioBarreTodoSuRastro(t *testing.T) {
	s := newTestStore(t)
	uc := newUserUC(s)
	ctx := context.Background()

	ana, err := uc.Create(ctx, "tester", dto.CreateUserRequest{Email: "ana@acme.com", Name: "Ana"})
	require.NoError(t, err)

	// Rastro de Ana repartido por las colecciones, con cajas distintas para
	// verificar que la identidad no distingue mayúsculas.
	instancias := store.NewRecords[entity.OnboardingInstance](s, store.OnboardingInstances)
	_, err = instancias.Create(ctx, entity.OnboardingInstance{EmployeeName: "Ana", EmployeeEmail: "ANA@acme.com", TemplateID: "t-1", Status: entity.InstanceActive})
	require.NoError(t, err)

	sugerencias := store.NewRecords[entity.Suggestion](s, store.Suggestions)
	_, err = sugerencias.Create(ctx, entity.Suggestion{Author: "ana@acme.com", Text: "mejorar el paso 2", Status: entity.SuggestionPending})
	require.NoError(t, err)
	_, err = sugerencias.Create(ctx, entity.Suggestion{Author: "luis@acme.com", Text: "de otra persona", Status: entity.SuggestionPending})
	require.NoError(t, err)

	actividades := store.NewRecords[entity.Activity](s, store.Activities)
	_, err = actividades.Create(ctx, entity.Activity{Actor: "ana@acme.com", Action: "completó el paso 1"})
	require.NoError(t, err)

	expertos := store.NewRecords[entity.Expert](s, store.Experts)
	_, err = expertos.Create(ctx, entity.Expert{Name: "Ana", Email: "ana@acme.com", Area: "QA"})
	require.NoError(t, err)

	plantillas := store.NewRecords[entity.Template](s, store.Templates)
	tpl, err := plantillas.Create(ctx, entity.Template{Name: "De Ana", CreatedBy: ana.ID, IsActive: true})
	require.NoError(t, err)

	credenciales := store.NewRecords[entity.AuthCredential](s, store.AuthCredentials)
	_, err = credenciales.Create(ctx, entity.AuthCredential{Email: "Ana@Acme.com", Role: entity.RoleEmployee, PasswordHash: "x"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, "admin@acme.com", ana.ID))

	_, err = uc.Get(ctx, ana.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "el usuario desaparece")

	quedanInst, err := instancias.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, quedanInst, "sus onboardings desaparecen")

	quedanSug, err := sugerencias.List(ctx)
	require.NoError(t, err)
	require.Len(t, quedanSug, 1, "solo sobrevive la sugerencia ajena")
	assert.Equal(t, "luis@acme.com", quedanSug[0].Author)

	quedanExp, err := expertos.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, quedanExp)

	tplDespues, err := plantillas.Get(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CreatedBySystem, tplDespues.CreatedBy, "lo que creó se reapunta a system, no se borra")

	quedanCred, err := credenciales.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, quedanCred, "su credencial local también se retira")

	// Las actividades de Ana se fueron; la anotación del borrado (hecha por el
	// admin) sí queda en el historial.
	quedanAct, err := actividades.List(ctx)
	require.NoError(t, err)
	for _, a := range quedanAct {
		assert.NotEqual(t, "ana@acme.com", a.Actor)
	}
}

func TestEliminarUsuarioInexistenteEsExitoSinEfectos(t *testing.T) {
	s := newTestStore(t)
	uc := newUserUC(s)

	err := uc.Delete(context.Background(), "tester", "no-existe")
	assert.NoError(t, err, "borrar a quien no está es idempotente")
}
