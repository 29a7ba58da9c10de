package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Onboarding-api/internal/application/auth"
	"github.com/jhoicas/Onboarding-api/internal/application/reports"
	"github.com/jhoicas/Onboarding-api/internal/application/usecase"
	"github.com/jhoicas/Onboarding-api/internal/domain/store"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.UseCase
	UserUC       *usecase.UserUseCase
	RoleUC       *usecase.RoleUseCase
	ProfileUC    *usecase.ProfileUseCase
	TemplateUC   *usecase.TemplateUseCase
	InstanceUC   *usecase.InstanceUseCase
	SuggestionUC *usecase.SuggestionUseCase
	ExpertUC     *usecase.ExpertUseCase
	ActivityUC   *usecase.ActivityUseCase
	DashboardUC  *usecase.DashboardUseCase
	ReportUC     *reports.UseCase
	Store        store.Store
	JWTSecret    string
}

// Router registra las rutas de la API.
//
// Permisos: las lecturas requieren sesión; las escrituras de plantillas,
// instancias y expertos admiten admin y manager; el resto de escrituras es
// solo de admin. Cualquier usuario autenticado crea sugerencias y marca
// pasos de su onboarding.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	admin := RequireRole("admin")
	managers := RequireRole("admin", "manager")

	// Users (escrituras solo admin)
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/", admin, userHandler.Create)
	users.Put("/:id", admin, userHandler.Update)
	users.Delete("/:id", admin, userHandler.Delete)

	// Roles (escrituras solo admin)
	roles := protected.Group("/roles")
	roleHandler := NewRoleHandler(deps.RoleUC)
	roles.Get("/", roleHandler.List)
	roles.Get("/:id", roleHandler.GetByID)
	roles.Post("/", admin, roleHandler.Create)
	roles.Put("/:id", admin, roleHandler.Update)
	roles.Delete("/:id", admin, roleHandler.Delete)

	// Profiles y vínculos perfil-plantilla (escrituras solo admin)
	profileHandler := NewProfileHandler(deps.ProfileUC)
	profiles := protected.Group("/profiles")
	profiles.Get("/", profileHandler.List)
	profiles.Get("/:id", profileHandler.GetByID)
	profiles.Post("/", admin, profileHandler.Create)
	profiles.Put("/:id", admin, profileHandler.Update)
	profiles.Delete("/:id", admin, profileHandler.Delete)

	links := protected.Group("/profile-templates")
	links.Get("/", profileHandler.ListLinks)
	links.Post("/", admin, profileHandler.CreateLink)
	links.Delete("/:id", admin, profileHandler.DeleteLink)

	// Templates (admin y manager)
	templates := protected.Group("/templates")
	templateHandler := NewTemplateHandler(deps.TemplateUC)
	templates.Get("/", templateHandler.List)
	templates.Get("/:id", templateHandler.GetByID)
	templates.Post("/", managers, templateHandler.Create)
	templates.Put("/:id", managers, templateHandler.Update)
	templates.Post("/:id/sync", managers, templateHandler.Sync)
	templates.Delete("/:id", managers, templateHandler.Delete)

	// Instances (admin y manager; el cambio de estado de paso lo hace cualquiera)
	instances := protected.Group("/instances")
	instanceHandler := NewInstanceHandler(deps.InstanceUC)
	reportHandler := NewReportHandler(deps.ReportUC)
	instances.Get("/", instanceHandler.List)
	instances.Get("/:id", instanceHandler.GetByID)
	instances.Get("/:id/report", reportHandler.InstancePDF)
	instances.Post("/", managers, instanceHandler.Create)
	instances.Put("/:id", managers, instanceHandler.Update)
	instances.Patch("/:id/steps/:stepId", instanceHandler.UpdateStep)
	instances.Delete("/:id", managers, instanceHandler.Delete)

	// Suggestions (crear cualquiera; moderar admin y manager)
	suggestions := protected.Group("/suggestions")
	suggestionHandler := NewSuggestionHandler(deps.SuggestionUC)
	suggestions.Get("/", suggestionHandler.List)
	suggestions.Post("/", suggestionHandler.Create)
	suggestions.Put("/:id", managers, suggestionHandler.Update)
	suggestions.Delete("/:id", managers, suggestionHandler.Delete)

	// Experts (admin y manager)
	experts := protected.Group("/experts")
	expertHandler := NewExpertHandler(deps.ExpertUC)
	experts.Get("/", expertHandler.List)
	experts.Get("/:id", expertHandler.GetByID)
	experts.Post("/", managers, expertHandler.Create)
	experts.Put("/:id", managers, expertHandler.Update)
	experts.Delete("/:id", managers, expertHandler.Delete)

	// Activities (solo listar y agregar)
	activities := protected.Group("/activities")
	activityHandler := NewActivityHandler(deps.ActivityUC)
	activities.Get("/", activityHandler.List)
	activities.Post("/", activityHandler.Create)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard", dashboardHandler.GetSummary)

	// Stream SSE por colección
	streamHandler := NewStreamHandler(deps.Store)
	protected.Get("/stream/:collection", streamHandler.Collection)
}
