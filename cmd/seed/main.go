// seed puebla el catálogo inicial de la herramienta de onboarding: los roles
// funcionales por defecto y una plantilla de arranque. Opcionalmente registra
// la primera credencial de administrador.
//
// Uso: go run ./cmd/seed [admin-email admin-password]
//
// Es idempotente: los registros que ya existen se saltan y se puede ejecutar
// las veces que haga falta. Escribe a través de la misma capa de datos que la
// API (remoto si está disponible, archivos locales si no).
package main

import (
	"context"
	"errors"
	"os"

	"github.com/jhoicas/Onboarding-api/internal/application/auth"
	"github.com/jhoicas/Onboarding-api/internal/application/dto"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
	"github.com/jhoicas/Onboarding-api/internal/bus"
	"github.com/jhoicas/Onboarding-api/internal/domain"
	"github.com/jhoicas/Onboarding-api/internal/domain/entity"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/dualstore"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/localstore"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Onboarding-api/pkg/config"
	"github.com/jhoicas/Onboarding-api/pkg/logger"
)

var defaultRoles = []dto.CreateRoleRequest{
	{Name: "Desarrollo Backend", Description: "Servicios, APIs y capa de datos"},
	{Name: "Desarrollo Frontend", Description: "Interfaces web y experiencia de usuario"},
	{Name: "QA", Description: "Pruebas y calidad"},
	{Name: "DevOps", Description: "Infraestructura, despliegues y observabilidad"},
	{Name: "Producto", Description: "Gestión de producto y roadmap"},
}

var starterTemplate = dto.CreateTemplateRequest{
	Name:        "Onboarding general",
	Description: "Recorrido base para cualquier puesto; duplícala y ajústala por rol.",
	Steps: []dto.StepPayload{
		{ID: 1, Title: "Bienvenida y recorrido por la oficina", Owner: "People"},
		{ID: 2, Title: "Alta de cuentas y accesos", Owner: "IT"},
		{ID: 3, Title: "Lectura del manual del empleado", Owner: "People"},
		{ID: 4, Title: "Configuración del entorno de desarrollo", Owner: "Equipo"},
		{ID: 5, Title: "Primera tarea guiada", Owner: "Equipo"},
		{ID: 6, Title: "Formación de seguridad", Owner: "IT"},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	lg := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	log := lg.Zerolog()

	ctx := context.Background()

	b := bus.New()
	local, err := localstore.New(cfg.Store.DataDir, b, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializando almacén local")
	}

	var remote store.Store
	if pool, pErr := postgres.NewPool(ctx, cfg.DB); pErr != nil {
		log.Warn().Err(pErr).Msg("PostgreSQL no disponible; sembrando en modo solo-local")
	} else {
		docs := postgres.NewDocStore(pool, log)
		if sErr := docs.EnsureSchema(ctx); sErr != nil {
			log.Warn().Err(sErr).Msg("esquema remoto no disponible; sembrando en modo solo-local")
			pool.Close()
		} else {
			remote = docs
			defer pool.Close()
		}
	}

	dual := dualstore.New(remote, local, cfg.Store.RecencyWindow(), log)
	activityUC := usecase.NewActivityUseCase(dual, nil, log)
	roleUC := usecase.NewRoleUseCase(dual, activityUC)
	templateUC := usecase.NewTemplateUseCase(dual, activityUC, log)

	created := 0
	for _, r := range defaultRoles {
		if _, err := roleUC.Create(ctx, entity.CreatedBySystem, r); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				log.Info().Str("rol", r.Name).Msg("el rol ya existe, se omite")
				continue
			}
			log.Fatal().Err(err).Str("rol", r.Name).Msg("sembrando rol")
		}
		created++
	}

	if exists, err := templateExists(ctx, dual, starterTemplate.Name); err != nil {
		log.Fatal().Err(err).Msg("consultando plantillas")
	} else if exists {
		log.Info().Str("plantilla", starterTemplate.Name).Msg("la plantilla ya existe, se omite")
	} else {
		if _, err := templateUC.Create(ctx, entity.CreatedBySystem, starterTemplate); err != nil {
			log.Fatal().Err(err).Msg("sembrando plantilla")
		}
		created++
	}

	if len(os.Args) > 2 {
		authUC := auth.NewUseCase(dual, auth.Config{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}, log)
		_, err := authUC.Register(ctx, dto.RegisterRequest{
			Email:    os.Args[1],
			Password: os.Args[2],
			Name:     "Administración",
			Role:     entity.RoleAdmin,
		})
		switch {
		case err == nil:
			log.Info().Str("email", os.Args[1]).Msg("credencial de administrador creada")
			created++
		case errors.Is(err, domain.ErrConflict):
			log.Info().Str("email", os.Args[1]).Msg("la credencial ya existe, se omite")
		default:
			log.Fatal().Err(err).Msg("creando credencial de administrador")
		}
	}

	log.Info().Int("creados", created).Bool("remoto", remote != nil).Msg("siembra completada")
}

func templateExists(ctx context.Context, s store.Store, name string) (bool, error) {
	templates, err := store.NewRecords[entity.Template](s, store.Templates).List(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range templates {
		if t.Name == name {
			return true, nil
		}
	}
	return false, nil
}
