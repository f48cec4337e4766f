package shelterserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/Apurer/shelter-api/internal/shared/errors"
	"github.com/Apurer/shelter-api/internal/shared/failure"
)

const responderKey = "shelterserver.responder"

var (
	defaultResponder = NewErrorResponder(nil)
	fieldNamesOnce   sync.Once
)

// NewErrorResponder builds the responder used by every handler. Binding errors are mapped before failures.
func NewErrorResponder(logger *slog.Logger) *apierrors.ChainedResponder {
	return apierrors.NewChainedResponder(logger, BindingErrorMapper)
}

// BindingErrorMapper turns request decoding errors into 400 and tag validation errors into 422.
func BindingErrorMapper(err error) (apierrors.ErrorResponse, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		return apierrors.FromFailure(failure.Validation("request validation failed", fields)), true
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return apierrors.ErrBadRequest.WithMessage("Malformed JSON body"), true
	case errors.As(err, &typeErr):
		resp := apierrors.ErrBadRequest.WithMessage("Malformed JSON body")
		if typeErr.Field != "" {
			resp = resp.WithDetail(typeErr.Field, "must be "+typeErr.Type.String())
		}
		return resp, true
	}
	return apierrors.ErrorResponse{}, false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	default:
		return fe.Field() + " failed " + fe.Tag()
	}
}

// useJSONFieldNames makes validator report json names so details match the request body.
func useJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

func withResponder(r *apierrors.ChainedResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responderKey, r)
		c.Next()
	}
}

func responderFor(c *gin.Context) *apierrors.ChainedResponder {
	if v, ok := c.Get(responderKey); ok {
		if r, ok := v.(*apierrors.ChainedResponder); ok {
			return r
		}
	}
	return defaultResponder
}

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responderFor(c).RespondError(c, err)
}

func routeNotFound(c *gin.Context) {
	responderFor(c).Respond(c, apierrors.ErrRouteNotFound)
}

func recoverPanic(c *gin.Context, recovered any) {
	respondError(c, fmt.Errorf("panic: %v", recovered))
}

// parseIDParam reads a positive integer path parameter, responding 400 otherwise.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, failure.InvalidQuery("invalid path parameter", map[string]string{
			name: name + " must be a positive integer",
		}))
		return 0, false
	}
	return id, true
}

// bindOptionalJSON binds the body when one is present.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
