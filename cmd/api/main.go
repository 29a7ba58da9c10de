package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Onboarding-api/internal/application/auth"
	"github.com/jhoicas/Onboarding-api/internal/application/cleanup"
	"github.com/jhoicas/Onboarding-api/internal/application/reports"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
	"github.com/jhoicas/Onboarding-api/internal/bus"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/dualstore"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/localstore"
	infrapdf "github.com/jhoicas/Onboarding-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/queue"
	"github.com/jhoicas/Onboarding-api/internal/infrastructure/relay"
	httpRouter "github.com/jhoicas/Onboarding-api/internal/interfaces/http"
	"github.com/jhoicas/Onboarding-api/pkg/config"
	"github.com/jhoicas/Onboarding-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	lg := logger.New(logger.Config{
		Env:        cfg.App.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	log := lg.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// ── Capa de datos: bus + almacén local + backend remoto opcional ──────────
	b := bus.New()
	local, err := localstore.New(cfg.Store.DataDir, b, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializando almacén local")
	}

	// El backend remoto es opcional: si la conexión o el esquema fallan, la
	// aplicación arranca igual en modo solo-local y sirve desde archivos.
	var remote store.Store
	pool, err := postgres.NewPool(rootCtx, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Msg("PostgreSQL no disponible; operando en modo solo-local")
	} else {
		docs := postgres.NewDocStore(pool, log)
		if err := docs.EnsureSchema(rootCtx); err != nil {
			log.Warn().Err(err).Msg("esquema remoto no disponible; operando en modo solo-local")
			pool.Close()
		} else {
			remote = docs
			defer pool.Close()
		}
	}

	dual := dualstore.New(remote, local, cfg.Store.RecencyWindow(), log)

	// ── Relay de cambios entre procesos (opcional, Redis) ─────────────────────
	if client := relay.Connect(cfg.Redis, log); client != nil {
		rl := relay.New(client, b, log)
		rl.Start(rootCtx)
		defer rl.Close()
	}

	// ── Cola de auditoría (opcional, RabbitMQ) ────────────────────────────────
	var publisher *queue.Publisher
	if conn := queue.Connect(cfg.AMQP, log); conn != nil {
		defer conn.Close()
		publisher, err = queue.NewPublisher(conn, log)
		if err != nil {
			log.Warn().Err(err).Msg("publicador de auditoría no disponible")
		}
		queue.NewConsumer(conn, cfg.AMQP.AuditPath, log).Start(rootCtx)
	}

	// ── Casos de uso ──────────────────────────────────────────────────────────
	activityUC := usecase.NewActivityUseCase(dual, publisher, log)
	coordinator := cleanup.New(dual, log)
	authUC := auth.NewUseCase(dual, auth.Config{
		Secret:          cfg.JWT.Secret,
		ExpMinutes:      cfg.JWT.Expiration,
		Issuer:          cfg.JWT.Issuer,
		DefaultPassword: cfg.Auth.DefaultPassword,
	}, log)
	userUC := usecase.NewUserUseCase(dual, coordinator, activityUC)
	roleUC := usecase.NewRoleUseCase(dual, activityUC)
	profileUC := usecase.NewProfileUseCase(dual, activityUC)
	templateUC := usecase.NewTemplateUseCase(dual, activityUC, log)
	instanceUC := usecase.NewInstanceUseCase(dual, authUC, activityUC, log)
	suggestionUC := usecase.NewSuggestionUseCase(dual, activityUC, log)
	expertUC := usecase.NewExpertUseCase(dual, activityUC)
	dashboardUC := usecase.NewDashboardUseCase(dual)
	reportUC := reports.NewUseCase(dual, infrapdf.NewMarotoGenerator())

	// ── HTTP ──────────────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Onboarding API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
			"remote":  remote != nil,
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		RoleUC:       roleUC,
		ProfileUC:    profileUC,
		TemplateUC:   templateUC,
		InstanceUC:   instanceUC,
		SuggestionUC: suggestionUC,
		ExpertUC:     expertUC,
		ActivityUC:   activityUC,
		DashboardUC:  dashboardUC,
		ReportUC:     reportUC,
		Store:        dual,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	rootCancel()

	log.Info().Msg("aplicación detenida")
}
