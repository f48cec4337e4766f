package errors

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/shelter-api/internal/shared/failure"
)

// Responder writes ErrorResponse bodies.
type Responder struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewResponder creates a responder. A nil logger discards server error logs.
func NewResponder(logger *slog.Logger) *Responder {
	return &Responder{logger: logger, now: time.Now}
}

// DefaultResponder uses slog.Default for server errors.
var DefaultResponder = NewResponder(nil)

// Respond stamps timestamp and path, then aborts the request with the body.
func (r *Responder) Respond(c *gin.Context, resp ErrorResponse) {
	if resp.Timestamp.IsZero() {
		resp.Timestamp = r.now().UTC()
	}
	if resp.Path == "" && c.Request != nil && c.Request.URL != nil {
		resp.Path = c.Request.URL.RequestURI()
	}
	if resp.Details == nil {
		resp.Details = map[string]any{}
	}
	c.AbortWithStatusJSON(resp.Status, resp)
}

// RespondError converts err into a response. Unknown errors become a 500 without leaking the cause.
func (r *Responder) RespondError(c *gin.Context, err error) {
	var resp ErrorResponse
	if errors.As(err, &resp) {
		r.Respond(c, resp)
		return
	}
	if f, ok := failure.As(err); ok {
		r.Respond(c, FromFailure(f))
		return
	}
	r.log().LogAttrs(c.Request.Context(), slog.LevelError, "unhandled request error",
		slog.String("path", c.Request.URL.Path),
		slog.String("error", err.Error()),
	)
	r.Respond(c, ErrInternal)
}

// BadRequest sends a 400 response.
func (r *Responder) BadRequest(c *gin.Context, message string) {
	r.Respond(c, ErrBadRequest.WithMessage(message))
}

func (r *Responder) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// Respond is a convenience function using the default responder.
func Respond(c *gin.Context, resp ErrorResponse) {
	DefaultResponder.Respond(c, resp)
}

// RespondError is a convenience function using the default responder.
func RespondError(c *gin.Context, err error) {
	DefaultResponder.RespondError(c, err)
}

// ErrorMapper maps transport level errors to a response.
type ErrorMapper func(err error) (ErrorResponse, bool)

// ChainedResponder supports custom error mapping.
type ChainedResponder struct {
	*Responder
	mappers []ErrorMapper
}

// NewChainedResponder creates a responder with custom error mappers.
func NewChainedResponder(logger *slog.Logger, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{
		Responder: NewResponder(logger),
		mappers:   mappers,
	}
}

// AddMapper adds an error mapper to the chain.
func (r *ChainedResponder) AddMapper(mapper ErrorMapper) {
	r.mappers = append(r.mappers, mapper)
}

// RespondError tries each mapper before falling back to default handling.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if resp, ok := mapper(err); ok {
			r.Respond(c, resp)
			return
		}
	}
	r.Responder.RespondError(c, err)
}

// FromError renders any error as a response body. Unknown errors become ErrInternal.
func FromError(err error) ErrorResponse {
	var resp ErrorResponse
	if errors.As(err, &resp) {
		return resp
	}
	if f, ok := failure.As(err); ok {
		return FromFailure(f)
	}
	return ErrInternal
}

// HTTPStatusFromError extracts the HTTP status an error would be rendered with.
func HTTPStatusFromError(err error) int {
	return FromError(err).Status
}
