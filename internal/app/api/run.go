package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	shelterserver "github.com/Apurer/shelter-api/go"
	adoptionmemory "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/memory"
	adoptionobs "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/observability"
	adoptionpostgres "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionworkflows "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/workflows"
	adoptionapp "github.com/Apurer/shelter-api/internal/domains/adoptions/application"
	adoptionports "github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	animalmemory "github.com/Apurer/shelter-api/internal/domains/animals/adapters/memory"
	animalobs "github.com/Apurer/shelter-api/internal/domains/animals/adapters/observability"
	animalpostgres "github.com/Apurer/shelter-api/internal/domains/animals/adapters/persistence/postgres"
	animalapp "github.com/Apurer/shelter-api/internal/domains/animals/application"
	animalports "github.com/Apurer/shelter-api/internal/domains/animals/ports"
	authjwt "github.com/Apurer/shelter-api/internal/domains/auth/adapters/jwt"
	authmemory "github.com/Apurer/shelter-api/internal/domains/auth/adapters/memory"
	authobs "github.com/Apurer/shelter-api/internal/domains/auth/adapters/observability"
	authpostgres "github.com/Apurer/shelter-api/internal/domains/auth/adapters/persistence/postgres"
	authredis "github.com/Apurer/shelter-api/internal/domains/auth/adapters/redis"
	authapp "github.com/Apurer/shelter-api/internal/domains/auth/application"
	authports "github.com/Apurer/shelter-api/internal/domains/auth/ports"
	donationmemory "github.com/Apurer/shelter-api/internal/domains/donations/adapters/memory"
	donationobs "github.com/Apurer/shelter-api/internal/domains/donations/adapters/observability"
	donationpostgres "github.com/Apurer/shelter-api/internal/domains/donations/adapters/persistence/postgres"
	donationapp "github.com/Apurer/shelter-api/internal/domains/donations/application"
	donationports "github.com/Apurer/shelter-api/internal/domains/donations/ports"
	medicalmemory "github.com/Apurer/shelter-api/internal/domains/medical/adapters/memory"
	medicalobs "github.com/Apurer/shelter-api/internal/domains/medical/adapters/observability"
	medicalpostgres "github.com/Apurer/shelter-api/internal/domains/medical/adapters/persistence/postgres"
	medicalapp "github.com/Apurer/shelter-api/internal/domains/medical/application"
	medicalports "github.com/Apurer/shelter-api/internal/domains/medical/ports"
	statsmemory "github.com/Apurer/shelter-api/internal/domains/stats/adapters/memory"
	statsobs "github.com/Apurer/shelter-api/internal/domains/stats/adapters/observability"
	statspostgres "github.com/Apurer/shelter-api/internal/domains/stats/adapters/persistence/postgres"
	statsapp "github.com/Apurer/shelter-api/internal/domains/stats/application"
	statsports "github.com/Apurer/shelter-api/internal/domains/stats/ports"
	volunteermemory "github.com/Apurer/shelter-api/internal/domains/volunteers/adapters/memory"
	volunteerobs "github.com/Apurer/shelter-api/internal/domains/volunteers/adapters/observability"
	volunteerpostgres "github.com/Apurer/shelter-api/internal/domains/volunteers/adapters/persistence/postgres"
	volunteerapp "github.com/Apurer/shelter-api/internal/domains/volunteers/application"
	volunteerports "github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/shelter-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/shelter-api/internal/platform/postgres"
	platformredis "github.com/Apurer/shelter-api/internal/platform/redis"
	platformtemporal "github.com/Apurer/shelter-api/internal/platform/temporal"
)

const serviceName = "shelter-api"

// Run boots the shelter HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.ConfigFromEnv(serviceName))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, closeDB := platformpostgres.ConnectDSN(ctx, cfg.DatabaseURL, logger)
	defer closeDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	rdb, closeRedis := platformredis.ConnectURL(ctx, cfg.RedisURL, logger)
	defer closeRedis()

	app, err := Build(ctx, cfg, Dependencies{DB: db, Redis: rdb, Instruments: instruments})
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, server, cfg.ShutdownTimeout, logger)
}

// serve runs the server until ctx ends, then drains in-flight requests.
func serve(ctx context.Context, server *http.Server, timeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("shelter API listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		logger.Info("shelter API shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("shelter API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Dependencies are the connections Build wires into adapters. Nil DB and Redis select in-memory adapters.
type Dependencies struct {
	DB          *gorm.DB
	Redis       *goredis.Client
	Instruments *platformobservability.Instruments
	Registry    *prometheus.Registry
	Now         func() time.Time
}

// Application is a fully wired router plus the resources it holds.
type Application struct {
	Router   *gin.Engine
	Registry *prometheus.Registry
	closers  []func()
}

// Close releases resources acquired by Build, in reverse order.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

type repositories struct {
	animals     animalports.Repository
	adoptions   adoptionports.Repository
	idempotency adoptionports.IdempotencyStore
	donations   donationports.Repository
	volunteers  volunteerports.Repository
	medical     medicalports.Repository
	stats       statsports.DonationStats
	users       authports.UserRepository
}

func buildRepositories(db *gorm.DB) repositories {
	if db == nil {
		animals := animalmemory.NewRepository()
		donations := donationmemory.NewRepository()
		return repositories{
			animals:     animals,
			adoptions:   adoptionmemory.NewRepository(animals),
			idempotency: adoptionmemory.NewIdempotencyStore(),
			donations:   donations,
			volunteers:  volunteermemory.NewRepository(),
			medical:     medicalmemory.NewRepository(animals),
			stats:       statsmemory.NewStats(donations),
			users:       authmemory.NewUserRepository(),
		}
	}
	return repositories{
		animals:     animalpostgres.NewRepository(db),
		adoptions:   adoptionpostgres.NewRepository(db),
		idempotency: adoptionpostgres.NewIdempotencyStore(db),
		donations:   donationpostgres.NewRepository(db),
		volunteers:  volunteerpostgres.NewRepository(db),
		medical:     medicalpostgres.NewRepository(db),
		stats:       statspostgres.NewStats(db),
		users:       authpostgres.NewUserRepository(db),
	}
}

// buildRefreshStore honors an explicit backend, otherwise prefers redis, then postgres, then memory.
func buildRefreshStore(cfg Config, db *gorm.DB, rdb *goredis.Client) (authports.RefreshTokenStore, string, error) {
	switch cfg.RefreshTokenStore {
	case StoreRedis:
		if rdb == nil {
			return nil, "", errors.New("refresh token store redis selected but redis is unavailable")
		}
		return authredis.NewRefreshTokenStore(rdb), StoreRedis, nil
	case StorePostgres:
		if db == nil {
			return nil, "", errors.New("refresh token store postgres selected but postgres is unavailable")
		}
		return authpostgres.NewRefreshTokenStore(db), StorePostgres, nil
	case StoreMemory:
		return authmemory.NewRefreshTokenStore(), StoreMemory, nil
	}
	switch {
	case rdb != nil:
		return authredis.NewRefreshTokenStore(rdb), StoreRedis, nil
	case db != nil:
		return authpostgres.NewRefreshTokenStore(db), StorePostgres, nil
	default:
		return authmemory.NewRefreshTokenStore(), StoreMemory, nil
	}
}

// Build wires services, decorators and the router without opening a listener.
func Build(ctx context.Context, cfg Config, deps Dependencies) (*Application, error) {
	instruments := deps.Instruments
	logger := slog.Default()
	if instruments != nil && instruments.Logger != nil {
		logger = instruments.Logger
	}
	app := &Application{Registry: deps.Registry}
	if app.Registry == nil {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if domainMetrics := instruments.Collector(); domainMetrics != nil {
		if err := app.Registry.Register(domainMetrics); err != nil {
			return nil, fmt.Errorf("failed to register domain metrics: %w", err)
		}
	}

	repos := buildRepositories(deps.DB)

	animalService := animalobs.New(
		animalapp.NewService(repos.animals),
		animalobs.WithLogger(logger),
		animalobs.WithTracer(instruments.Tracer("internal.animals.application")),
		animalobs.WithMeter(instruments.Meter("internal.animals.application")),
	)
	adoptionOpts := []adoptionapp.Option{adoptionapp.WithIdempotencyStore(repos.idempotency)}
	if deps.Now != nil {
		adoptionOpts = append(adoptionOpts, adoptionapp.WithClock(deps.Now))
	}
	adoptionService := adoptionobs.New(
		adoptionapp.NewService(repos.adoptions, adoptionOpts...),
		adoptionobs.WithLogger(logger),
		adoptionobs.WithTracer(instruments.Tracer("internal.adoptions.application")),
		adoptionobs.WithMeter(instruments.Meter("internal.adoptions.application")),
	)
	donationService := donationobs.New(
		donationapp.NewService(repos.donations),
		donationobs.WithLogger(logger),
		donationobs.WithTracer(instruments.Tracer("internal.donations.application")),
		donationobs.WithMeter(instruments.Meter("internal.donations.application")),
	)
	var volunteerOpts []volunteerapp.Option
	if deps.Now != nil {
		volunteerOpts = append(volunteerOpts, volunteerapp.WithClock(deps.Now))
	}
	volunteerService := volunteerobs.New(
		volunteerapp.NewService(repos.volunteers, volunteerOpts...),
		volunteerobs.WithLogger(logger),
		volunteerobs.WithTracer(instruments.Tracer("internal.volunteers.application")),
		volunteerobs.WithMeter(instruments.Meter("internal.volunteers.application")),
	)
	medicalService := medicalobs.New(
		medicalapp.NewService(repos.medical),
		medicalobs.WithLogger(logger),
		medicalobs.WithTracer(instruments.Tracer("internal.medical.application")),
		medicalobs.WithMeter(instruments.Meter("internal.medical.application")),
	)
	statsService := statsobs.New(
		statsapp.NewService(repos.stats),
		statsobs.WithLogger(logger),
		statsobs.WithTracer(instruments.Tracer("internal.stats.application")),
	)

	issuer, err := authjwt.NewIssuer(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to configure token issuer: %w", err)
	}
	refreshStore, backend, err := buildRefreshStore(cfg, deps.DB, deps.Redis)
	if err != nil {
		return nil, err
	}
	logger.Info("refresh token store configured", slog.String("backend", backend))
	if err := authapp.SeedStaff(ctx, repos.users, cfg.SeedStaffPassword); err != nil {
		return nil, fmt.Errorf("failed to seed staff accounts: %w", err)
	}
	authService := authobs.New(
		authapp.NewService(repos.users, issuer, refreshStore),
		authobs.WithLogger(logger),
		authobs.WithTracer(instruments.Tracer("internal.auth.application")),
		authobs.WithMeter(instruments.Meter("internal.auth.application")),
	)

	var confirmations adoptionports.WorkflowOrchestrator = adoptionworkflows.NewInlineAdoptionWorkflows(adoptionService)
	if cfg.ConfirmAsync {
		temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
			Address:   cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
			Tracer:    instruments.Tracer("temporal-client"),
			Logger:    logger,
		})
		if err != nil {
			logger.Warn("Temporal workflows unavailable, confirming adoptions inline", slog.String("error", err.Error()))
		} else {
			app.closers = append(app.closers, temporalClient.Close)
			confirmations = adoptionworkflows.NewTemporalAdoptionWorkflows(temporalClient, cfg.TemporalTaskQueue)
			logger.Info("Temporal workflows enabled",
				slog.String("namespace", cfg.TemporalNamespace),
				slog.String("taskQueue", cfg.TemporalTaskQueue),
			)
		}
	}

	handlers := shelterserver.ApiHandleFunctions{
		AnimalAPI:    shelterserver.NewAnimalAPI(animalService),
		AdoptionAPI:  shelterserver.NewAdoptionAPI(adoptionService, confirmations),
		DonationAPI:  shelterserver.NewDonationAPI(donationService),
		VolunteerAPI: shelterserver.NewVolunteerAPI(volunteerService),
		MedicalAPI:   shelterserver.NewMedicalAPI(medicalService),
		StatsAPI:     shelterserver.NewStatsAPI(statsService),
		AuthAPI:      shelterserver.NewAuthAPI(authService),
		HealthAPI:    shelterserver.NewHealthAPI(time.Now()),
		Metrics:      shelterserver.NewHTTPMetrics(app.Registry),
		Logger:       logger,
	}
	router := gin.New()
	router.Use(otelgin.Middleware(serviceName, otelgin.WithTracerProvider(tracerProvider(instruments))))
	app.Router = shelterserver.NewRouterWithGinEngine(router, handlers)
	return app, nil
}

func tracerProvider(instruments *platformobservability.Instruments) trace.TracerProvider {
	if instruments == nil || instruments.TracerProvider == nil {
		return otel.GetTracerProvider()
	}
	return instruments.TracerProvider
}
