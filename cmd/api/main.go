package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terra-cloud/terra-backend/api/routes"
	"github.com/terra-cloud/terra-backend/internal/assignments"
	"github.com/terra-cloud/terra-backend/internal/audit"
	"github.com/terra-cloud/terra-backend/internal/auth"
	"github.com/terra-cloud/terra-backend/internal/employees"
	"github.com/terra-cloud/terra-backend/internal/equipment"
	"github.com/terra-cloud/terra-backend/internal/identity"
	"github.com/terra-cloud/terra-backend/internal/properties"
	"github.com/terra-cloud/terra-backend/internal/tasks"
	"github.com/terra-cloud/terra-backend/pkg/auth/session"
	"github.com/terra-cloud/terra-backend/pkg/config"
	"github.com/terra-cloud/terra-backend/pkg/db"
	"github.com/terra-cloud/terra-backend/pkg/geocode"
	"github.com/terra-cloud/terra-backend/pkg/logger"
	"github.com/terra-cloud/terra-backend/pkg/metrics"
	"github.com/terra-cloud/terra-backend/pkg/migrate"
	"github.com/terra-cloud/terra-backend/pkg/pubsub"
	"github.com/terra-cloud/terra-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	identityStore, err := identity.NewStore(identity.StoreParams{
		DB:         dbClient.DB(),
		Slot:       redisClient,
		SlotKey:    "terra:session:api",
		SessionTTL: cfg.JWT.RefreshTokenTTL(),
		Password:   cfg.Password,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity store", err)
		os.Exit(1)
	}
	resolver := identity.NewResolver(identityStore, logg)

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:           employees.NewRepository(dbClient.DB()),
		Registrar:      identityStore,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	propertyService, err := properties.NewService(properties.ServiceParams{
		Repo: properties.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create property service", err)
		os.Exit(1)
	}

	equipmentService, err := equipment.NewService(equipment.ServiceParams{
		Repo: equipment.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create equipment service", err)
		os.Exit(1)
	}

	taskService, err := tasks.NewService(tasks.ServiceParams{
		Repo: tasks.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create task service", err)
		os.Exit(1)
	}

	employeeService, err := employees.NewService(employees.ServiceParams{
		Repo: employees.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create employee service", err)
		os.Exit(1)
	}

	assignmentService, err := assignments.NewService(assignments.ServiceParams{
		Repo: assignments.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create assignment service", err)
		os.Exit(1)
	}

	var trail *audit.Publisher
	if cfg.FeatureFlags.AuditEvents {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub client", err)
			}
		}()
		trail = audit.NewPublisher(pubsubClient.AuditPublisher(), logg)
	}

	var geocodeClient *geocode.Client
	if cfg.Geocode.APIKey != "" {
		geocodeClient, err = geocode.NewClient(cfg.Geocode.APIKey)
		if err != nil {
			logg.Error(context.Background(), "failed to create geocode client", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	authStats := metrics.NewAuthMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			resolver,
			routes.Services{
				Auth:        authService,
				Properties:  propertyService,
				Equipment:   equipmentService,
				Tasks:       taskService,
				Employees:   employeeService,
				Assignments: assignmentService,
			},
			trail,
			authStats,
			geocodeClient,
			metricsHandler,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
