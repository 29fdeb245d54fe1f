package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/ops-desk/internal/domain"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

var validate *validator.Validate

// enumTags maps custom tags to the values they accept, for error messages.
var enumTags = map[string][]string{}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	registerEnum("event_status", stringsOf(domain.EventStatuses()), func(s string) bool {
		return domain.EventStatus(s).Valid()
	})
	registerEnum("gateway", stringsOf(domain.Gateways()), func(s string) bool {
		return domain.Gateway(s).Valid()
	})
	registerEnum("ticket_type", []string{string(domain.TicketTypeB2C), string(domain.TicketTypeB2B)}, func(s string) bool {
		return domain.TicketType(s).Valid()
	})
	registerEnum("ticket_priority", []string{"High", "Medium", "Low"}, func(s string) bool {
		return domain.TicketPriority(s).Valid()
	})
	registerEnum("ticket_status", stringsOf(domain.TicketStatuses()), func(s string) bool {
		return domain.TicketStatus(s).Valid()
	})
	registerEnum("platform", []string{"iOS", "Android", "Web"}, func(s string) bool {
		return domain.Platform(s).Valid()
	})
	registerEnum("app_role", []string{string(domain.RoleAdmin), string(domain.RoleStaff)}, func(s string) bool {
		return domain.AppRole(s).Valid()
	})
}

func registerEnum(tag string, allowed []string, valid func(string) bool) {
	enumTags[tag] = allowed
	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return valid(fl.Field().String())
	})
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// RegisterStructRule adds a cross-field rule for the given struct types.
func RegisterStructRule(fn validator.StructLevelFunc, types ...any) {
	validate.RegisterStructValidation(fn, types...)
}

// Struct validates s against its `validate` tags and registered struct rules.
// Failures come back as a VALIDATION_FAILED DomainError whose details map field to message.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInternalError(err)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := details[fe.Field()]; seen {
			continue
		}
		details[fe.Field()] = message(fe)
	}
	return apperrors.NewValidationError("validation failed", details)
}

func message(fe validator.FieldError) string {
	if allowed, ok := enumTags[fe.Tag()]; ok {
		return "must be one of: " + strings.Join(allowed, ", ")
	}
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isText {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return "must not be negative"
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a UUID"
	case "category_for_type":
		return "must be one of the categories for the selected type"
	}
	return "is invalid"
}
