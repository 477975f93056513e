// Package handler contains the echo HTTP handlers.  Handlers depend on
// small interfaces over the repositories and services so they can be
// tested with mocks.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
)

var errNoUser = errors.New("no authenticated user in context")

// getUserID returns the id JWTAuth stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	if id, ok := middleware.CurrentUserID(c); ok {
		return id, nil
	}
	return 0, errNoUser
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// queryID parses an optional positive integer query parameter; anything
// else reads as 0, which disables the filter.
func queryID(c echo.Context, name string) uint64 {
	id, err := strconv.ParseUint(strings.TrimSpace(c.QueryParam(name)), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// RequestValidator plugs validator/v10 into echo's c.Validate.
type RequestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.
func NewValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i any) error { return rv.v.Struct(i) }

// bindAndValidate binds the request body into req and validates it,
// writing a 400 response on failure.  ok is false when a response has been
// written.
func bindAndValidate(c echo.Context, req any) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validationFields(err)})
	}
	return true, nil
}

// validationFields flattens validator errors to field -> rule.
func validationFields(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		out[strings.ToLower(fe.Field())] = rule
	}
	return out
}

// internalError logs err and writes a generic 500.
func internalError(c echo.Context, log *zap.Logger, msg string, err error) error {
	log.Error(msg, zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
