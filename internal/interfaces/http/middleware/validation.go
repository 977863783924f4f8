package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/fla7a/backend/internal/domain/identity"
	"github.com/fla7a/backend/internal/domain/morocco"
	"github.com/fla7a/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ReservedLabels reports labels that can never be tenant codes
type ReservedLabels interface {
	IsReserved(label string) bool
}

// validationMessages are the per-tag messages of ValidationDetail
var validationMessages = map[string]string{
	"required":    "This field is required",
	"cin":         "Must be a CIN: 1-2 letters followed by 5-6 digits",
	"ice":         "Must be an ICE of exactly 15 digits",
	"rib":         "Must be a RIB of exactly 24 digits",
	"ma_phone":    "Must be a Moroccan phone number",
	"tva_rate":    "Must be one of TVA_0, TVA_7, TVA_10, TVA_14, TVA_20",
	"tenant_code": "Must be a lower-case DNS label that is not reserved",
	"uuid":        "Invalid UUID format",
	"email":       "Invalid email format",
	"datetime":    "Invalid date format",
	"dive":        "Invalid list item",
}

// SetupValidator configures gin's validator: JSON names in errors and the
// Moroccan identifier tags. Call once at startup.
func SetupValidator(reserved ReservedLabels) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	return RegisterValidators(v, reserved)
}

// RegisterValidators registers the custom tags on v
func RegisterValidators(v *validator.Validate, reserved ReservedLabels) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	tags := map[string]validator.Func{
		"cin": func(fl validator.FieldLevel) bool {
			return morocco.ValidateCIN(fl.Field().String())
		},
		"ice": func(fl validator.FieldLevel) bool {
			return morocco.ValidateICE(fl.Field().String())
		},
		"rib": func(fl validator.FieldLevel) bool {
			return morocco.ValidateRIB(fl.Field().String())
		},
		"ma_phone": func(fl validator.FieldLevel) bool {
			return morocco.ValidateMoroccanPhone(morocco.FormatPhone(fl.Field().String()))
		},
		"tva_rate": func(fl validator.FieldLevel) bool {
			_, ok := morocco.ParseTVARate(fl.Field().String())
			return ok
		},
		"tenant_code": func(fl validator.FieldLevel) bool {
			code := strings.ToLower(strings.TrimSpace(fl.Field().String()))
			if !identity.IsValidTenantCode(code) {
				return false
			}
			return reserved == nil || !reserved.IsReserved(code)
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// ValidationDetails converts validator errors to response details. Other
// errors yield nil.
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: validationMessage(e),
		})
	}
	return details
}

// HandleValidationError writes a 400 ERR_VALIDATION response for err
func HandleValidationError(c *gin.Context, message string, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest,
		dto.NewValidationErrorResponse(message, GetRequestID(c), ValidationDetails(err)))
}

func validationMessage(e validator.FieldError) string {
	if msg, ok := validationMessages[e.Tag()]; ok {
		return msg
	}
	switch e.Tag() {
	case "min", "gte":
		if e.Kind() == reflect.String || e.Kind() == reflect.Slice {
			return "Must have at least " + e.Param() + " items or characters"
		}
		return "Must be at least " + e.Param()
	case "max", "lte":
		if e.Kind() == reflect.String || e.Kind() == reflect.Slice {
			return "Must have at most " + e.Param() + " items or characters"
		}
		return "Must be at most " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	}
	return "Invalid value"
}
