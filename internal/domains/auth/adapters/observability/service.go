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

	authtypes "github.com/Apurer/shelter-api/internal/domains/auth/application/types"
	authdomain "github.com/Apurer/shelter-api/internal/domains/auth/domain"
	authports "github.com/Apurer/shelter-api/internal/domains/auth/ports"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const tracerName = "github.com/Apurer/shelter-api/internal/domains/auth/adapters/observability/service"

// Service decorates the auth service with tracing, logging, and metrics.
type Service struct {
	inner   authports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core auth service.
func New(inner authports.Service, opts ...Option) authports.Service {
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

// Login keeps the email off the span.
func (s *Service) Login(ctx context.Context, input authtypes.LoginInput) (*authtypes.TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()
	pair, err := s.inner.Login(ctx, input)
	if err != nil {
		s.metrics.record(ctx, "login", err)
		return nil, s.handleError(ctx, span, err, "login failed", slog.String("email", input.Email))
	}
	s.metrics.record(ctx, "login", nil)
	s.logInfo(ctx, "staff logged in", slog.String("email", input.Email))
	return pair, nil
}

func (s *Service) Refresh(ctx context.Context, input authtypes.RefreshInput) (*authtypes.TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()
	pair, err := s.inner.Refresh(ctx, input)
	s.metrics.record(ctx, "refresh", err)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "token refresh failed")
	}
	return pair, nil
}

func (s *Service) Logout(ctx context.Context, input authtypes.LogoutInput) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()
	err := s.inner.Logout(ctx, input)
	s.metrics.record(ctx, "logout", err)
	if err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

// Authenticate is traced but not logged.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (authdomain.Principal, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()
	principal, err := s.inner.Authenticate(ctx, accessToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return principal, err
	}
	span.SetAttributes(attribute.Int64("auth.user_id", principal.UserID), attribute.String("auth.role", string(principal.Role)))
	return principal, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if f, ok := failure.As(err); ok {
		attrs = append(attrs, slog.String("failure.kind", string(f.Kind)), slog.String("failure.code", f.ResponseCode()))
		s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
		return err
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	operations metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ops, _ := m.Int64Counter("auth.service.operations", metric.WithDescription("Auth operations by outcome"))
	return serviceMetrics{operations: ops}
}

func (m serviceMetrics) record(ctx context.Context, op string, err error) {
	if m.operations == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if f, ok := failure.As(err); ok {
			outcome = f.ResponseCode()
		}
	}
	m.operations.Add(ctx, 1, metric.WithAttributes(attribute.String("auth.operation", op), attribute.String("outcome", outcome)))
}

var _ authports.Service = (*Service)(nil)
