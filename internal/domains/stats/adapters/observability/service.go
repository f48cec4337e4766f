package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	statstypes "github.com/Apurer/shelter-api/internal/domains/stats/application/types"
	statsports "github.com/Apurer/shelter-api/internal/domains/stats/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const tracerName = "github.com/Apurer/shelter-api/internal/domains/stats/adapters/observability/service"

// Service traces donation reports and logs failures.
type Service struct {
	inner  statsports.Service
	tracer trace.Tracer
	logger *slog.Logger
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

func New(inner statsports.Service, opts ...Option) statsports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
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

func (s *Service) DonationsDaily(ctx context.Context, input statstypes.Range) ([]statstypes.DailyTotal, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.DonationsDaily", trace.WithAttributes(rangeAttrs(input)...))
	defer span.End()

	rows, err := s.inner.DonationsDaily(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to aggregate daily donations")
	}
	span.SetAttributes(attribute.Int("stats.rows", len(rows)))
	return rows, nil
}

func (s *Service) DonationsMonthly(ctx context.Context, input statstypes.Range) ([]statstypes.MonthlyTotal, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.DonationsMonthly", trace.WithAttributes(rangeAttrs(input)...))
	defer span.End()

	rows, err := s.inner.DonationsMonthly(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to aggregate monthly donations")
	}
	span.SetAttributes(attribute.Int("stats.rows", len(rows)))
	return rows, nil
}

func (s *Service) TopDonors(ctx context.Context, input statstypes.TopDonorsInput) ([]statstypes.DonorTotal, error) {
	attrs := rangeAttrs(input.Range)
	if input.Limit != nil {
		attrs = append(attrs, attribute.Int64("stats.limit", *input.Limit))
	}
	ctx, span := s.tracer.Start(ctx, "StatsService.TopDonors", trace.WithAttributes(attrs...))
	defer span.End()

	rows, err := s.inner.TopDonors(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to rank donors")
	}
	span.SetAttributes(attribute.Int("stats.rows", len(rows)))
	return rows, nil
}

func rangeAttrs(r statstypes.Range) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if r.From != nil {
		attrs = append(attrs, attribute.String("stats.from", r.From.UTC().Format("2006-01-02T15:04:05Z")))
	}
	if r.To != nil {
		attrs = append(attrs, attribute.String("stats.to", r.To.UTC().Format("2006-01-02T15:04:05Z")))
	}
	return attrs
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger == nil {
		return err
	}
	level := slog.LevelError
	attrs := []slog.Attr{slog.String("error", err.Error())}
	if kind, ok := failure.KindOf(err); ok {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("failure.kind", string(kind)))
	}
	s.logger.LogAttrs(ctx, level, msg, attrs...)
	return err
}

var _ statsports.Service = (*Service)(nil)
