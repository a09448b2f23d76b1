package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-cloud/terra-backend/api/controllers"
	"github.com/terra-cloud/terra-backend/api/middleware"
	assignmentsvc "github.com/terra-cloud/terra-backend/internal/assignments"
	"github.com/terra-cloud/terra-backend/internal/audit"
	"github.com/terra-cloud/terra-backend/internal/auth"
	employeesvc "github.com/terra-cloud/terra-backend/internal/employees"
	equipmentsvc "github.com/terra-cloud/terra-backend/internal/equipment"
	propertysvc "github.com/terra-cloud/terra-backend/internal/properties"
	tasksvc "github.com/terra-cloud/terra-backend/internal/tasks"
	"github.com/terra-cloud/terra-backend/pkg/auth/session"
	"github.com/terra-cloud/terra-backend/pkg/config"
	"github.com/terra-cloud/terra-backend/pkg/db"
	"github.com/terra-cloud/terra-backend/pkg/enums"
	"github.com/terra-cloud/terra-backend/pkg/geocode"
	"github.com/terra-cloud/terra-backend/pkg/logger"
	"github.com/terra-cloud/terra-backend/pkg/metrics"
	"github.com/terra-cloud/terra-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles the feature services mounted on the router.
type Services struct {
	Auth        auth.Service
	Properties  propertysvc.Service
	Equipment   equipmentsvc.Service
	Tasks       tasksvc.Service
	Employees   employeesvc.Service
	Assignments assignmentsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	resolver middleware.ActorResolver,
	services Services,
	trail *audit.Publisher,
	authStats *metrics.AuthMetrics,
	geocodeClient *geocode.Client,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.CORS(),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Post("/validate", controllers.PublicValidate(logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(services.Auth, trail, authStats, logg))
		r.Post("/register", controllers.AuthRegister(services.Auth, trail, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, trail, authStats, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, trail, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Actor(resolver, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/properties", func(r chi.Router) {
			r.Get("/", controllers.PropertyList(services.Properties, logg))
			r.Post("/", controllers.PropertyCreate(services.Properties, logg))
			r.Get("/{propertyId}", controllers.PropertyDetail(services.Properties, logg))
			r.Patch("/{propertyId}", controllers.PropertyUpdate(services.Properties, logg))
			r.Delete("/{propertyId}", controllers.PropertyDelete(services.Properties, logg))
		})

		r.Route("/v1/equipment", func(r chi.Router) {
			r.Get("/", controllers.EquipmentList(services.Equipment, logg))
			r.Post("/", controllers.EquipmentCreate(services.Equipment, logg))
			r.Get("/{equipmentId}", controllers.EquipmentDetail(services.Equipment, logg))
			r.Patch("/{equipmentId}", controllers.EquipmentUpdate(services.Equipment, logg))
			r.Delete("/{equipmentId}", controllers.EquipmentDelete(services.Equipment, logg))
		})

		r.Route("/v1/tasks", func(r chi.Router) {
			r.Get("/", controllers.TaskList(services.Tasks, logg))
			r.Post("/", controllers.TaskCreate(services.Tasks, logg))
			r.Get("/{taskId}", controllers.TaskDetail(services.Tasks, logg))
			r.Patch("/{taskId}", controllers.TaskUpdate(services.Tasks, logg))
			r.Post("/{taskId}/status", controllers.TaskUpdateStatus(services.Tasks, logg))
			r.Delete("/{taskId}", controllers.TaskDelete(services.Tasks, logg))
		})

		r.Route("/v1/employees", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, string(enums.UserRoleAdmin), string(enums.UserRoleManager)))
			r.Get("/", controllers.EmployeeList(services.Employees, logg))
			r.Get("/{employeeId}", controllers.EmployeeDetail(services.Employees, logg))
		})

		r.Route("/v1/assignments", func(r chi.Router) {
			r.Get("/users/{userId}", controllers.AssignmentListForUser(services.Assignments, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, string(enums.UserRoleAdmin)))
				r.Post("/", controllers.AssignmentGrant(services.Assignments, trail, logg))
				r.Delete("/", controllers.AssignmentRevoke(services.Assignments, trail, logg))
			})
		})

		r.Route("/v1/geocode", func(r chi.Router) {
			r.Post("/autocomplete", controllers.GeocodeAutocomplete(geocodeClient, logg))
			r.Get("/resolve", controllers.GeocodeResolve(geocodeClient, logg))
		})
	})

	return r
}
