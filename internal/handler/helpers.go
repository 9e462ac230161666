package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/raw-dani/pos-only/internal/apierror"
	"github.com/raw-dani/pos-only/internal/middleware"
	"github.com/raw-dani/pos-only/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// exposeErrors returns internal error detail to clients (development only).
var exposeErrors atomic.Bool

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their wire names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}

// ExposeInternalErrors toggles detailed 500 messages.
func ExposeInternalErrors(on bool) { exposeErrors.Store(on) }

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery binds and validates query parameters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondError(c, err)
		return false
	}
	fields := make([]apierror.FieldMessage, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierror.FieldMessage{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
	return false
}

// fieldPath drops the struct name: "CreateInvoiceRequest.items[0].quantity" -> "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s characters or items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s characters or items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", name, fe.Param())
	case "email":
		return name + " must be a valid email address"
	case "uuid":
		return name + " must be a valid id"
	case "alphanum":
		return name + " must contain only letters and digits"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

// respondError writes err as an API envelope. Unexpected errors are logged
// and sanitized unless internal detail is enabled.
func respondError(c *gin.Context, err error) {
	if e, ok := apierror.As(err); ok && e.Kind != apierror.KindInternal {
		c.JSON(e.Status(), e.Body())
		return
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("request failed")

	msg := "internal server error"
	if exposeErrors.Load() {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, apierror.New(msg))
}

// parseID reads a uuid path parameter, writing a 400 when malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidation([]apierror.FieldMessage{
			{Field: param, Message: param + " must be a valid id"},
		}))
		return uuid.Nil, false
	}
	return id, true
}

// actor returns the authenticated caller. Routes using it sit behind JWTAuth.
func actor(c *gin.Context) service.Identity {
	if id := middleware.GetIdentity(c); id != nil {
		return *id
	}
	return service.Identity{}
}
