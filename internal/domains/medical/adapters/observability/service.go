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

	medicaltypes "github.com/Apurer/shelter-api/internal/domains/medical/application/types"
	medicalports "github.com/Apurer/shelter-api/internal/domains/medical/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const tracerName = "github.com/Apurer/shelter-api/internal/domains/medical/adapters/observability/service"

// Service decorates the medical record service with tracing, logging, and metrics.
type Service struct {
	inner   medicalports.Service
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

func New(inner medicalports.Service, opts ...Option) medicalports.Service {
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

func (s *Service) Create(ctx context.Context, input medicaltypes.CreateRecordInput) (*medicaltypes.RecordProjection, error) {
	ctx, span := s.tracer.Start(ctx, "MedicalService.Create", trace.WithAttributes(
		attribute.Int64("animal.id", input.AnimalID),
		attribute.String("medical.type", string(input.Type)),
	))
	defer span.End()

	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record treatment", slog.Int64("animal.id", input.AnimalID))
	}
	s.metrics.recordCreated(ctx, result)
	s.logInfo(ctx, "medical record created",
		slog.Int64("medical.id", result.Entity.ID),
		slog.Int64("animal.id", result.Entity.AnimalID),
	)
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, input medicaltypes.RecordIdentifier) (*medicaltypes.RecordProjection, error) {
	ctx, span := s.tracer.Start(ctx, "MedicalService.GetByID", trace.WithAttributes(attribute.Int64("medical.id", input.ID)))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load medical record", slog.Int64("medical.id", input.ID))
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, input medicaltypes.UpdateRecordInput) (*medicaltypes.RecordProjection, error) {
	ctx, span := s.tracer.Start(ctx, "MedicalService.Update", trace.WithAttributes(attribute.Int64("medical.id", input.ID)))
	defer span.End()

	result, err := s.inner.Update(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update medical record", slog.Int64("medical.id", input.ID))
	}
	s.logInfo(ctx, "medical record updated", slog.Int64("medical.id", input.ID))
	return result, nil
}

func (s *Service) Delete(ctx context.Context, input medicaltypes.RecordIdentifier) error {
	ctx, span := s.tracer.Start(ctx, "MedicalService.Delete", trace.WithAttributes(attribute.Int64("medical.id", input.ID)))
	defer span.End()

	if err := s.inner.Delete(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete medical record", slog.Int64("medical.id", input.ID))
	}
	s.logInfo(ctx, "medical record deleted", slog.Int64("medical.id", input.ID))
	return nil
}

func (s *Service) List(ctx context.Context, input medicaltypes.ListRecordsInput) (*medicaltypes.RecordPage, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("page.number", input.Page.Page),
		attribute.Int("page.size", input.Page.Size),
	}
	if input.AnimalID != nil {
		attrs = append(attrs, attribute.Int64("animal.id", *input.AnimalID))
	}
	ctx, span := s.tracer.Start(ctx, "MedicalService.List", trace.WithAttributes(attrs...))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list medical records")
	}
	span.SetAttributes(attribute.Int64("medical.result.total", result.TotalElements))
	return result, nil
}

func (s *Service) RecentSummary(ctx context.Context, input medicaltypes.RecentSummaryInput) ([]*medicaltypes.RecordProjection, error) {
	ctx, span := s.tracer.Start(ctx, "MedicalService.RecentSummary", trace.WithAttributes(attribute.Int64("animal.id", input.AnimalID)))
	defer span.End()

	result, err := s.inner.RecentSummary(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarize medical history", slog.Int64("animal.id", input.AnimalID))
	}
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
	created metric.Int64Counter
	cost    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("medical.service.created", metric.WithDescription("Medical records created by type"))
	cost, _ := m.Int64Counter("medical.service.cost", metric.WithDescription("Sum of recorded treatment costs"))
	return serviceMetrics{created: created, cost: cost}
}

func (m serviceMetrics) recordCreated(ctx context.Context, p *medicaltypes.RecordProjection) {
	typ := metric.WithAttributes(attribute.String("medical.type", string(p.Entity.Type)))
	if m.created != nil {
		m.created.Add(ctx, 1, typ)
	}
	if m.cost != nil && p.Entity.Cost != nil {
		m.cost.Add(ctx, *p.Entity.Cost, typ)
	}
}

var _ medicalports.Service = (*Service)(nil)
