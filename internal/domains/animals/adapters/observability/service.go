package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	animaltypes "github.com/Apurer/shelter-api/internal/domains/animals/application/types"
	"github.com/Apurer/shelter-api/internal/domains/animals/domain"
	"github.com/Apurer/shelter-api/internal/domains/animals/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const tracerName = "github.com/Apurer/shelter-api/internal/domains/animals/adapters/observability/service"

// Service decorates the animals port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Create(ctx context.Context, input animaltypes.CreateAnimalInput) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Create", attribute.String("animal.species", input.Species))
	defer span.End()

	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register animal", slog.String("species", input.Species))
	}
	s.metrics.recordCreated(ctx, result.Entity.Status)
	span.SetAttributes(attribute.Int64("animal.id", result.Entity.ID))
	s.logInfo(ctx, "animal registered", slog.Int64("animal.id", result.Entity.ID), slog.String("status", string(result.Entity.Status)))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, input animaltypes.AnimalIdentifier) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.Int64("animal.id", input.ID))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load animal", slog.Int64("animal.id", input.ID))
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, input animaltypes.UpdateAnimalInput) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Update", attribute.Int64("animal.id", input.ID))
	defer span.End()

	result, err := s.inner.Update(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update animal", slog.Int64("animal.id", input.ID))
	}
	s.metrics.recordUpdated(ctx, result.Entity.Status)
	s.logInfo(ctx, "animal updated", slog.Int64("animal.id", input.ID))
	return result, nil
}

func (s *Service) ChangeStatus(ctx context.Context, input animaltypes.ChangeStatusInput) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ChangeStatus",
		attribute.Int64("animal.id", input.ID),
		attribute.String("animal.status.requested", input.Status),
	)
	defer span.End()

	result, err := s.inner.ChangeStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to change animal status",
			slog.Int64("animal.id", input.ID), slog.String("status", input.Status))
	}
	s.metrics.recordUpdated(ctx, result.Entity.Status)
	s.logInfo(ctx, "animal status changed", slog.Int64("animal.id", input.ID), slog.String("status", string(result.Entity.Status)))
	return result, nil
}

func (s *Service) SetNeutered(ctx context.Context, input animaltypes.SetNeuteredInput) (*animaltypes.AnimalProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.SetNeutered", attribute.Int64("animal.id", input.ID))
	defer span.End()

	result, err := s.inner.SetNeutered(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set neutered flag", slog.Int64("animal.id", input.ID))
	}
	s.metrics.recordUpdated(ctx, result.Entity.Status)
	return result, nil
}

func (s *Service) Delete(ctx context.Context, input animaltypes.AnimalIdentifier) error {
	ctx, span := s.startSpan(ctx, "Service.Delete", attribute.Int64("animal.id", input.ID))
	defer span.End()

	if err := s.inner.Delete(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete animal", slog.Int64("animal.id", input.ID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "animal deleted", slog.Int64("animal.id", input.ID))
	return nil
}

func (s *Service) List(ctx context.Context, input animaltypes.ListAnimalsInput) (*animaltypes.AnimalPage, error) {
	ctx, span := s.startSpan(ctx, "Service.List",
		attribute.Int("page.number", input.Page.Page),
		attribute.Int("page.size", input.Page.Size),
		attribute.String("page.sort", input.Page.Sort.String()),
	)
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list animals")
	}
	span.SetAttributes(attribute.Int64("animal.result.total", result.TotalElements))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError records err on the span. Business failures are logged at warn, everything else at error.
func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	level := slog.LevelError
	if kind, ok := failure.KindOf(err); ok {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("failure.kind", string(kind)))
		span.SetAttributes(attribute.String("failure.kind", string(kind)))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, level, msg, attrs...)
	}
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	animalsCreated metric.Int64Counter
	animalsUpdated metric.Int64Counter
	animalsDeleted metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("animals.service.created", metric.WithDescription("Number of animals registered"))
	updated, _ := m.Int64Counter("animals.service.updated", metric.WithDescription("Number of animal updates"))
	deleted, _ := m.Int64Counter("animals.service.deleted", metric.WithDescription("Number of animals deleted"))
	return serviceMetrics{
		animalsCreated: created,
		animalsUpdated: updated,
		animalsDeleted: deleted,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.animalsCreated, 1, attribute.String("animal.status", string(status)))
}

func (m serviceMetrics) recordUpdated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.animalsUpdated, 1, attribute.String("animal.status", string(status)))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.animalsDeleted, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
