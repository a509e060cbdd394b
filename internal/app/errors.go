package app

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidCredentials indicates that the provided email, password or token was incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrProfileNotFound indicates that the profile does not exist.
	ErrProfileNotFound = errors.New("user profile not found")
	// ErrProfileExists indicates that a profile with the same email already exists.
	ErrProfileExists = errors.New("user profile already exists")
	// ErrEntryNotFound indicates that the ledger entry does not exist or is not visible to the caller.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrDuplicateInviteCooldown is returned when the same source invited the
	// same target less than InviteCooldown ago.
	ErrDuplicateInviteCooldown = errors.New("an invite to this email was already sent in the last hour, wait before sending another")
	// ErrRateLimitExceeded is returned when the source already sent
	// MaxInvitesPerHour invites in the trailing hour.
	ErrRateLimitExceeded = errors.New("invite limit of 5 per hour exceeded, try again later")
	// ErrNotificationDelivery wraps mailer failures. The invite is persisted
	// even when this is returned.
	ErrNotificationDelivery = errors.New("invite email could not be delivered")
)

// ValidationError reports request fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	default:
		return "is invalid"
	}
}
