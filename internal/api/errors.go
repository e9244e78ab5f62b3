package api

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/kodawari/backend/internal/apperrors"
	"github.com/pageza/kodawari/backend/internal/middleware"
)

const genericErrorMessage = "internal server error"

func init() {
	// Report request fields by their wire names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// responder writes errors for every handler
type responder struct {
	log        *zap.Logger
	production bool
}

func (r responder) publicError(err error) (int, string) {
	status := apperrors.StatusCode(err)
	msg := genericErrorMessage
	if appErr, ok := apperrors.As(err); ok {
		msg = appErr.Message
	}
	if status >= http.StatusInternalServerError && r.production {
		msg = genericErrorMessage
	}
	return status, msg
}

// respondError logs the full error and writes only its safe message
func (r responder) respondError(c *gin.Context, err error) {
	status, msg := r.publicError(err)
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		r.log.Error("request failed", fields...)
	} else {
		r.log.Info("request rejected", fields...)
	}
	c.AbortWithStatusJSON(status, middleware.ErrorResponse{Error: msg})
}

// bindError converts a gin binding failure into a validation error naming
// the offending fields
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError("invalid request body")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperrors.NewValidationError("%s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
