// Package handler holds the gin handlers of the API
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/fla7a/backend/internal/domain/shared"
	"github.com/fla7a/backend/internal/domain/tenancy"
	"github.com/fla7a/backend/internal/infrastructure/i18n"
	"github.com/fla7a/backend/internal/infrastructure/logger"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/fla7a/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// validationFailedMessage is used when no Localizer is installed
const validationFailedMessage = "Request validation failed"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// ValidationError sends a 400 validation error response with details. The
// message follows the caller's Accept-Language.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		middleware.Translate(c, i18n.KeyValidationFailed, validationFailedMessage),
		middleware.GetRequestID(c),
		details,
	))
}

// HandleError converts an error to a response. Domain errors keep their
// message, anything else is logged and reported as ERR_INTERNAL.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	_ = c.Error(err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// bindStrictJSON decodes the body into obj, rejecting unknown fields and
// trailing data, then runs the binding validator. On failure the response is
// written and false is returned.
func (h *BaseHandler) bindStrictJSON(c *gin.Context, obj any) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(obj); err != nil {
		h.decodeError(c, err)
		return false
	}
	if dec.More() {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body must contain a single JSON object")
		return false
	}

	if err := binding.Validator.ValidateStruct(obj); err != nil {
		h.ValidationError(c, middleware.ValidationDetails(err))
		return false
	}
	return true
}

// bindQuery binds and validates query parameters. Numeric strings are
// converted by gin's form binding.
func (h *BaseHandler) bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		if details := middleware.ValidationDetails(err); details != nil {
			h.ValidationError(c, details)
		} else {
			h.BadRequest(c, err.Error())
		}
		return false
	}
	return true
}

func (h *BaseHandler) decodeError(c *gin.Context, err error) {
	var (
		maxBytesErr  *http.MaxBytesError
		syntaxErr    *json.SyntaxError
		typeErr      *json.UnmarshalTypeError
		unknownField string
	)
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		unknownField = strings.Trim(strings.TrimPrefix(msg, "json: unknown field "), `"`)
	}

	switch {
	case errors.As(err, &maxBytesErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBodyTooLarge, "Request body exceeds maximum allowed size")
	case unknownField != "":
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   unknownField,
			Tag:     "unknown",
			Message: "Unknown field",
		}})
	case errors.As(err, &typeErr):
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   typeErr.Field,
			Tag:     "type",
			Message: "Must be a " + typeErr.Type.String(),
		}})
	case errors.Is(err, io.EOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Malformed JSON body")
	default:
		// decimal and time fields report their own parse errors
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
	}
}

// uuidParam parses the named path parameter, answering 400 when it is not a
// UUID
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{
			Field:   name,
			Tag:     "uuid",
			Message: "Invalid UUID format",
		}})
		return uuid.Nil, false
	}
	return id, true
}

// requestTenant is the tenant resolved for the request. Guarded routes
// always have one.
func requestTenant(c *gin.Context) string {
	return tenancy.TenantID(c.Request.Context())
}
