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

	donationtypes "github.com/Apurer/shelter-api/internal/domains/donations/application/types"
	donationports "github.com/Apurer/shelter-api/internal/domains/donations/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const tracerName = "github.com/Apurer/shelter-api/internal/domains/donations/adapters/observability/service"

// Service decorates the donation service with tracing, logging, and metrics.
type Service struct {
	inner   donationports.Service
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

// New wraps the core donation service.
func New(inner donationports.Service, opts ...Option) donationports.Service {
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

func (s *Service) Create(ctx context.Context, input donationtypes.CreateDonationInput) (*donationtypes.DonationProjection, error) {
	ctx, span := s.tracer.Start(ctx, "DonationService.Create", trace.WithAttributes(attribute.Int64("donation.amount", input.Amount)))
	defer span.End()

	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record donation")
	}
	s.metrics.recordCreated(ctx, result.Entity.Amount)
	s.logInfo(ctx, "donation recorded", slog.Int64("donation.id", result.Entity.ID))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, input donationtypes.DonationIdentifier) (*donationtypes.DonationProjection, error) {
	ctx, span := s.tracer.Start(ctx, "DonationService.GetByID", trace.WithAttributes(attribute.Int64("donation.id", input.ID)))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load donation", slog.Int64("donation.id", input.ID))
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, input donationtypes.UpdateDonationInput) (*donationtypes.DonationProjection, error) {
	ctx, span := s.tracer.Start(ctx, "DonationService.Update", trace.WithAttributes(attribute.Int64("donation.id", input.ID)))
	defer span.End()

	result, err := s.inner.Update(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update donation", slog.Int64("donation.id", input.ID))
	}
	s.logInfo(ctx, "donation updated", slog.Int64("donation.id", input.ID))
	return result, nil
}

func (s *Service) SetReceipt(ctx context.Context, input donationtypes.SetReceiptInput) (*donationtypes.DonationProjection, error) {
	ctx, span := s.tracer.Start(ctx, "DonationService.SetReceipt", trace.WithAttributes(
		attribute.Int64("donation.id", input.ID),
		attribute.Bool("donation.receipt_issued", input.ReceiptIssued),
	))
	defer span.End()

	result, err := s.inner.SetReceipt(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set receipt flag", slog.Int64("donation.id", input.ID))
	}
	return result, nil
}

func (s *Service) Delete(ctx context.Context, input donationtypes.DonationIdentifier) error {
	ctx, span := s.tracer.Start(ctx, "DonationService.Delete", trace.WithAttributes(attribute.Int64("donation.id", input.ID)))
	defer span.End()

	if err := s.inner.Delete(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete donation", slog.Int64("donation.id", input.ID))
	}
	s.logInfo(ctx, "donation deleted", slog.Int64("donation.id", input.ID))
	return nil
}

func (s *Service) List(ctx context.Context, input donationtypes.ListDonationsInput) (*donationtypes.DonationPage, error) {
	ctx, span := s.tracer.Start(ctx, "DonationService.List", trace.WithAttributes(
		attribute.Int("page.number", input.Page.Page),
		attribute.Int("page.size", input.Page.Size),
	))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list donations")
	}
	span.SetAttributes(attribute.Int64("donation.result.total", result.TotalElements))
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
	donationsCreated metric.Int64Counter
	amountReceived   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("donations.service.created", metric.WithDescription("Number of donations recorded"))
	amount, _ := m.Int64Counter("donations.service.amount_received", metric.WithDescription("Sum of recorded donation amounts"))
	return serviceMetrics{donationsCreated: created, amountReceived: amount}
}

func (m serviceMetrics) recordCreated(ctx context.Context, amount int64) {
	if m.donationsCreated != nil {
		m.donationsCreated.Add(ctx, 1)
	}
	if m.amountReceived != nil {
		m.amountReceived.Add(ctx, amount)
	}
}

var _ donationports.Service = (*Service)(nil)
