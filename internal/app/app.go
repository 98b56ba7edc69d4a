package app

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/davmoren/credverify/config"
	mongoCredRepo "github.com/davmoren/credverify/internal/credrepo/mongo"
	postgresCredRepo "github.com/davmoren/credverify/internal/credrepo/postgres"
	"github.com/davmoren/credverify/internal/credservice"
	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/middleware"
	"github.com/davmoren/credverify/internal/models"
	"github.com/davmoren/credverify/internal/routes"
	"github.com/davmoren/credverify/internal/server"
	"github.com/davmoren/credverify/pkg/databases/mongo"
	"github.com/davmoren/credverify/pkg/databases/postgres"
	"github.com/davmoren/credverify/pkg/metrics"
	"github.com/davmoren/credverify/pkg/zerolog"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	structValidator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// App represents the main application, containing server and configuration.
// It initializes with a config file, validates settings, and manages routes.
type App struct {
	Server   interfaces.Server
	Config   *config.ServiceConfig
	Logger   interfaces.Logger
	credRepo interfaces.CredentialRepository
}

// NewApp creates and configures a new App instance.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.ReadLocalConfig(configPath)
	if err != nil {
		return nil, err
	}

	// Validate the configuration
	validator := structValidator.New()
	if err := validator.Struct(cfg); err != nil {
		errors := err.(structValidator.ValidationErrors)
		return nil, fmt.Errorf("validation error: %s", errors)
	}

	logger := zerolog.NewZerologLogger(cfg.ServiceName)
	logger.SetLevel(cfg.LogLevel)

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize server, database, and metrics
	serverInstance := server.NewServer(cfg.Host, cfg.Port, logger)
	app.Server = serverInstance

	metricsInstance := app.initializeMetrics()

	dbClient, err := app.initializeDBClient()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database client: %v", err)
	}

	credRepo, err := app.initializeCredRepo(dbClient)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential repository: %v", err)
	}
	app.credRepo = credRepo

	credService := credservice.NewCredentialService(credRepo, logger, cfg.Database.QueryTimeout)

	if err := app.seedCredentials(credService); err != nil {
		return nil, err
	}

	route := routes.NewRoute(metricsInstance, credService, credRepo, logger, validator)

	// Process-wide middleware: panic recovery outermost, then the configured
	// origin policy.
	app.Server.Use(middleware.RecoveryMiddleware(logger))
	app.Server.Use(middleware.CORSMiddleware(cfg.Cors.AllowedOrigins))

	metricsHandler := promhttp.HandlerFor(
		metricsInstance.GetRegistry(),
		promhttp.HandlerOpts{})

	tracedMetricsHandler := otelhttp.NewHandler(metricsHandler, routes.MetricsRouteAPI)

	err = app.Server.AddRoute(routes.MetricsRouteAPI, tracedMetricsHandler.ServeHTTP)
	if err != nil {
		return nil, fmt.Errorf("failed to add metrics route: %v", err)
	}

	err = app.Server.AddRoute(routes.RootRouteAPI, route.Greeting)
	if err != nil {
		return nil, fmt.Errorf("failed to add greeting route: %v", err)
	}

	err = app.Server.AddRoute(routes.HealthRouteAPI, route.Health)
	if err != nil {
		return nil, fmt.Errorf("failed to add health route: %v", err)
	}

	loginHandler := http.Handler(http.HandlerFunc(route.Login))
	if cfg.RateLimit.Enabled {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
		loginHandler = middleware.RateLimitMiddleware(limiter, metricsInstance, routes.LoginRateLimitedTotal)(loginHandler)
	}
	err = app.Server.AddRoute(routes.LoginRouteAPI, loginHandler.ServeHTTP)
	if err != nil {
		return nil, fmt.Errorf("failed to add login route: %v", err)
	}
	logger.Info("Login route added successfully")

	return app, nil
}

// Run starts the server and blocks until the listener fails or the process
// receives SIGINT/SIGTERM, then drains in-flight requests and closes the
// credential store.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %v", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %v", err)
	}

	if app.credRepo != nil {
		if err := app.credRepo.Close(shutdownCtx); err != nil {
			app.Logger.Warn("Failed to close credential store", "error", err)
		}
	}

	return <-errCh
}

func (app *App) initializeMetrics() interfaces.Metrics {
	appMetrics := metrics.NewMetrics(app.Config.ServiceName)
	appMetrics.RegisterCounter(routes.LoginRequestsTotal, routes.LoginRequestsTotalHelp)
	appMetrics.RegisterCounter(routes.LoginSuccessTotal, routes.LoginSuccessTotalHelp)
	appMetrics.RegisterCounter(routes.LoginFailedTotal, routes.LoginFailedTotalHelp)
	appMetrics.RegisterCounter(routes.LoginErrorsTotal, routes.LoginErrorsTotalHelp)
	appMetrics.RegisterCounter(routes.LoginRateLimitedTotal, routes.LoginRateLimitedTotalHelp)
	appMetrics.RegisterGauge(routes.StoreUp, routes.StoreUpHelp)
	appMetrics.RegisterHistogram(
		routes.LoginDurationSeconds,
		routes.LoginDurationSecondsHelp,
		routes.LoginDurationSecondsBuckets)

	return appMetrics
}

func (app *App) initializeDBClient() (interfaces.DBClient, error) {
	var dbClient interfaces.DBClient
	var err error

	switch app.Config.Database.Type {
	case "mongo":
		// Initialize MongoDB client
		dbClient, err = mongo.NewMongoDB(&app.Config.Database.MongoDB, app.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB client: %v", err)
		}

		// Ensure the MongoDB client is connected
		if err = dbClient.Connect(context.Background(), app.Config.Database.MongoDB.DSN); err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
		}

	case "postgres":
		// Create PostgreSQL database client
		dbClient = postgres.NewPostgresDatabaseClient(&app.Config.Database.Postgres)

		if err = dbClient.Connect(context.Background(), app.Config.Database.Postgres.DSN); err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
		}

	default:
		return nil, fmt.Errorf("unsupported database type: %s", app.Config.Database.Type)
	}

	return dbClient, nil
}

func (app *App) initializeCredRepo(dbClient interfaces.DBClient) (interfaces.CredentialRepository, error) {
	var credRepo interfaces.CredentialRepository
	var err error

	switch app.Config.Database.Type {
	case "mongo":
		// Initialize MongoDB repository
		credRepo, err = mongoCredRepo.NewMongoCredentialRepository(dbClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MongoDB repository: %v", err)
		}

	case "postgres":
		// Initialize PostgreSQL repository
		credRepo, err = postgresCredRepo.NewPostgresCredentialRepository(dbClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %v", err)
		}

	default:
		return nil, fmt.Errorf("unsupported database type: %s", app.Config.Database.Type)
	}

	// Enforce the username uniqueness invariant in the store.
	if err = credRepo.EnsureIndices(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure indices: %v", err)
	}

	return credRepo, nil
}

func (app *App) seedCredentials(credService *credservice.CredentialService) error {
	if len(app.Config.Database.Seed) == 0 {
		return nil
	}

	seed := make([]models.Credential, 0, len(app.Config.Database.Seed))
	for _, record := range app.Config.Database.Seed {
		seed = append(seed, models.Credential{
			Username: record.Username,
			Password: record.Password,
		})
	}

	if err := credService.Seed(context.Background(), seed); err != nil {
		return fmt.Errorf("failed to seed credential store: %v", err)
	}
	return nil
}
