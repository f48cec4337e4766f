package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	adoptionmemory "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/memory"
	adoptionobs "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/observability"
	adoptionpostgres "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionapp "github.com/Apurer/shelter-api/internal/domains/adoptions/application"
	adoptionports "github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	animalmemory "github.com/Apurer/shelter-api/internal/domains/animals/adapters/memory"
	platformobservability "github.com/Apurer/shelter-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/shelter-api/internal/platform/postgres"
	platformtemporal "github.com/Apurer/shelter-api/internal/platform/temporal"
	adoptionactivities "github.com/Apurer/shelter-api/internal/platform/temporal/activities/adoptions"
	adoptionworkflows "github.com/Apurer/shelter-api/internal/platform/temporal/workflows/adoptions"
)

func main() {
	ctx := context.Background()
	const serviceName = "shelter-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, platformobservability.ConfigFromEnv(serviceName))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo := buildAdoptionRepository(ctx, logger)
	defer cleanupRepo()
	adoptionService := adoptionobs.New(
		adoptionapp.NewService(repo),
		adoptionobs.WithLogger(logger),
		adoptionobs.WithTracer(instruments.Tracer("internal.adoptions.application")),
		adoptionobs.WithMeter(instruments.Meter("internal.adoptions.application")),
	)
	activities := adoptionactivities.NewActivities(adoptionService)

	namespace := envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace)
	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: namespace,
		Tracer:    instruments.Tracer("temporal-worker"),
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	taskQueue := envOrDefault("TEMPORAL_TASK_QUEUE", adoptionworkflows.ConfirmationTaskQueue)
	w := worker.New(temporalClient, taskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(adoptionworkflows.AdoptionConfirmationWorkflow, workflow.RegisterOptions{Name: adoptionworkflows.ConfirmationWorkflowName})
	w.RegisterActivityWithOptions(activities.ConfirmAdoption, activity.RegisterOptions{Name: adoptionactivities.ConfirmAdoptionActivityName})

	logger.Info("worker listening", slog.String("taskQueue", taskQueue), slog.String("namespace", namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// A memory-backed worker only sees its own empty store, so it is useful for smoke tests and nothing else.
func buildAdoptionRepository(ctx context.Context, logger *slog.Logger) (adoptionports.Repository, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		logger.Warn("worker adoption repository running in memory")
		return adoptionmemory.NewRepository(animalmemory.NewRepository()), func() {}
	}
	logger.Info("worker adoption repository configured with postgres")
	return adoptionpostgres.NewRepository(db), cleanup
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
