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

	adoptiontypes "github.com/Apurer/shelter-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/domain"
	"github.com/Apurer/shelter-api/internal/domains/adoptions/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const tracerName = "github.com/Apurer/shelter-api/internal/domains/adoptions/adapters/observability/service"

var _ ports.Service = (*Service)(nil)

// Service decorates the adoptions port with tracing, logging, and metrics.
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

func (s *Service) Create(ctx context.Context, input adoptiontypes.CreateAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Create",
		attribute.Int64("animal.id", input.AnimalID),
		attribute.Bool("idempotency.key_present", input.IdempotencyKey != ""),
	)
	defer span.End()

	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to request adoption", slog.Int64("animal.id", input.AnimalID))
	}
	addCounter(ctx, s.metrics.requested, 1)
	span.SetAttributes(attribute.Int64("adoption.id", result.Entity.ID))
	s.logInfo(ctx, "adoption requested", slog.Int64("adoption.id", result.Entity.ID), slog.Int64("animal.id", input.AnimalID))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, input adoptiontypes.AdoptionIdentifier) (*adoptiontypes.AdoptionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.Int64("adoption.id", input.ID))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load adoption", slog.Int64("adoption.id", input.ID))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, input adoptiontypes.ListAdoptionsInput) (*adoptiontypes.AdoptionPage, error) {
	ctx, span := s.startSpan(ctx, "Service.List",
		attribute.Int("page.number", input.Page.Page),
		attribute.Int("page.size", input.Page.Size),
		attribute.String("page.sort", input.Page.Sort.String()),
	)
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list adoptions")
	}
	span.SetAttributes(attribute.Int64("adoption.result.total", result.TotalElements))
	return result, nil
}

func (s *Service) Approve(ctx context.Context, input adoptiontypes.AdoptionIdentifier) (*adoptiontypes.AdoptionProjection, error) {
	return s.transition(ctx, domain.ActionApprove, input.ID, func(ctx context.Context) (*adoptiontypes.AdoptionProjection, error) {
		return s.inner.Approve(ctx, input)
	})
}

func (s *Service) Confirm(ctx context.Context, input adoptiontypes.ConfirmAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	return s.transition(ctx, domain.ActionConfirm, input.ID, func(ctx context.Context) (*adoptiontypes.AdoptionProjection, error) {
		return s.inner.Confirm(ctx, input)
	})
}

func (s *Service) Cancel(ctx context.Context, input adoptiontypes.CancelAdoptionInput) (*adoptiontypes.AdoptionProjection, error) {
	return s.transition(ctx, domain.ActionCancel, input.ID, func(ctx context.Context) (*adoptiontypes.AdoptionProjection, error) {
		return s.inner.Cancel(ctx, input)
	})
}

func (s *Service) transition(ctx context.Context, action domain.Action, id int64, call func(context.Context) (*adoptiontypes.AdoptionProjection, error)) (*adoptiontypes.AdoptionProjection, error) {
	ctx, span := s.startSpan(ctx, "Service."+string(action),
		attribute.Int64("adoption.id", id),
		attribute.String("adoption.action", string(action)),
	)
	defer span.End()

	result, err := call(ctx)
	if err != nil {
		outcome := "error"
		if kind, ok := failure.KindOf(err); ok {
			outcome = string(kind)
		}
		s.metrics.recordTransition(ctx, action, outcome)
		return nil, s.handleError(ctx, span, err, "adoption transition rejected",
			slog.Int64("adoption.id", id), slog.String("action", string(action)))
	}
	s.metrics.recordTransition(ctx, action, "ok")
	span.SetAttributes(attribute.String("adoption.status", string(result.Entity.Status)))
	s.logInfo(ctx, "adoption transitioned",
		slog.Int64("adoption.id", id),
		slog.String("action", string(action)),
		slog.String("status", string(result.Entity.Status)),
	)
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
	requested   metric.Int64Counter
	transitions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	requested, _ := m.Int64Counter("adoptions.service.requested", metric.WithDescription("Number of adoption requests opened"))
	transitions, _ := m.Int64Counter("adoptions.service.transitions", metric.WithDescription("Adoption transitions by action and outcome"))
	return serviceMetrics{requested: requested, transitions: transitions}
}

func (m serviceMetrics) recordTransition(ctx context.Context, action domain.Action, outcome string) {
	addCounter(ctx, m.transitions, 1,
		attribute.String("adoption.action", string(action)),
		attribute.String("outcome", outcome),
	)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}
