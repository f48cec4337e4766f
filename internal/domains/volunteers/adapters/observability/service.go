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

	volunteertypes "github.com/Apurer/shelter-api/internal/domains/volunteers/application/types"
	"github.com/Apurer/shelter-api/internal/domains/volunteers/domain"
	volunteerports "github.com/Apurer/shelter-api/internal/domains/volunteers/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const tracerName = "github.com/Apurer/shelter-api/internal/domains/volunteers/adapters/observability/service"

// Service decorates the volunteer service with tracing, logging, and metrics.
type Service struct {
	inner   volunteerports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

func New(inner volunteerports.Service, opts ...Option) volunteerports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
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
	return s
}

func (s *Service) Create(ctx context.Context, input volunteertypes.CreateVolunteerInput) (*volunteertypes.VolunteerProjection, error) {
	ctx, span := s.tracer.Start(ctx, "VolunteerService.Create")
	defer span.End()

	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register volunteer")
	}
	s.metrics.recordCreated(ctx)
	s.logInfo(ctx, "volunteer registered", slog.Int64("volunteer.id", result.Entity.ID))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error) {
	ctx, span := s.tracer.Start(ctx, "VolunteerService.GetByID", trace.WithAttributes(attribute.Int64("volunteer.id", input.ID)))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load volunteer", slog.Int64("volunteer.id", input.ID))
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, input volunteertypes.UpdateVolunteerInput) (*volunteertypes.VolunteerProjection, error) {
	ctx, span := s.tracer.Start(ctx, "VolunteerService.Update", trace.WithAttributes(attribute.Int64("volunteer.id", input.ID)))
	defer span.End()

	result, err := s.inner.Update(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update volunteer", slog.Int64("volunteer.id", input.ID))
	}
	s.logInfo(ctx, "volunteer updated", slog.Int64("volunteer.id", input.ID))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, input volunteertypes.VolunteerIdentifier) error {
	ctx, span := s.tracer.Start(ctx, "VolunteerService.Delete", trace.WithAttributes(attribute.Int64("volunteer.id", input.ID)))
	defer span.End()

	if err := s.inner.Delete(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete volunteer", slog.Int64("volunteer.id", input.ID))
	}
	s.logInfo(ctx, "volunteer deleted", slog.Int64("volunteer.id", input.ID))
	return nil
}

func (s *Service) List(ctx context.Context, input volunteertypes.ListVolunteersInput) (*volunteertypes.VolunteerPage, error) {
	ctx, span := s.tracer.Start(ctx, "VolunteerService.List", trace.WithAttributes(
		attribute.Int("page.number", input.Page.Page),
		attribute.Int("page.size", input.Page.Size),
	))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list volunteers")
	}
	span.SetAttributes(attribute.Int64("volunteer.result.total", result.TotalElements))
	return result, nil
}

func (s *Service) Approve(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error) {
	return s.transition(ctx, "VolunteerService.Approve", domain.ActionApprove, input, s.inner.Approve)
}

func (s *Service) Suspend(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error) {
	return s.transition(ctx, "VolunteerService.Suspend", domain.ActionSuspend, input, s.inner.Suspend)
}

func (s *Service) Reinstate(ctx context.Context, input volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error) {
	return s.transition(ctx, "VolunteerService.Reinstate", domain.ActionReinstate, input, s.inner.Reinstate)
}

func (s *Service) CountByStatus(ctx context.Context) ([]volunteertypes.StatusCount, error) {
	ctx, span := s.tracer.Start(ctx, "VolunteerService.CountByStatus")
	defer span.End()

	result, err := s.inner.CountByStatus(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to count volunteers")
	}
	return result, nil
}

func (s *Service) transition(
	ctx context.Context,
	spanName string,
	action domain.Action,
	input volunteertypes.VolunteerIdentifier,
	call func(context.Context, volunteertypes.VolunteerIdentifier) (*volunteertypes.VolunteerProjection, error),
) (*volunteertypes.VolunteerProjection, error) {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.Int64("volunteer.id", input.ID),
		attribute.String("volunteer.action", string(action)),
	))
	defer span.End()

	result, err := call(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "volunteer transition failed",
			slog.Int64("volunteer.id", input.ID),
			slog.String("volunteer.action", string(action)),
		)
	}
	s.metrics.recordTransition(ctx, action, result.Entity.Status)
	s.logInfo(ctx, "volunteer status changed",
		slog.Int64("volunteer.id", input.ID),
		slog.String("volunteer.status", string(result.Entity.Status)),
	)
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger == nil {
		return err
	}
	level := slog.LevelError
	if kind, ok := failure.KindOf(err); ok {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("failure.kind", string(kind)))
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

type serviceMetrics struct {
	created     metric.Int64Counter
	transitions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("volunteers.service.created", metric.WithDescription("Number of volunteers registered"))
	transitions, _ := m.Int64Counter("volunteers.service.transitions", metric.WithDescription("Volunteer status changes by action"))
	return serviceMetrics{created: created, transitions: transitions}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, action domain.Action, status domain.Status) {
	if m.transitions == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("volunteer.action", string(action)),
		attribute.String("volunteer.status", string(status)),
	))
}

var _ volunteerports.Service = (*Service)(nil)
