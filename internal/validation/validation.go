// Package validation registers the custom binding rules and turns binding
// failures into the first-failing-field error response.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ikkim/storerating-backend/internal/app/model"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 16
	NameMinLength     = 20
	NameMaxLength     = 60
	AddressMaxLength  = 400

	passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`
)

const passwordMessage = "Password must be 8-16 characters and include at least one uppercase letter and one special character"

var (
	registerOnce sync.Once
	registerErr  error
)

// Register installs the custom rules on gin's default validator. Safe to call
// more than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not go-playground validator")
			return
		}
		registerErr = registerRules(v)
	})
	return registerErr
}

func registerRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	if err := v.RegisterValidation("password", validatePassword); err != nil {
		return fmt.Errorf("register password rule: %w", err)
	}
	if err := v.RegisterValidation("role", validateRole); err != nil {
		return fmt.Errorf("register role rule: %w", err)
	}
	return nil
}

// fieldName reports json or form names so errors use the client's field names.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// IsStrongPassword reports whether s is 8-16 characters with at least one
// ASCII uppercase letter and one special character.
func IsStrongPassword(s string) bool {
	length := utf8.RuneCountInString(s)
	if length < PasswordMinLength || length > PasswordMaxLength {
		return false
	}

	var hasUpper, hasSpecial bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case strings.ContainsRune(passwordSpecialChars, r):
			hasSpecial = true
		}
	}
	return hasUpper && hasSpecial
}

func validatePassword(fl validator.FieldLevel) bool {
	return IsStrongPassword(fl.Field().String())
}

func validateRole(fl validator.FieldLevel) bool {
	return model.UserRole(fl.Field().String()).Valid()
}

// FieldError describes the first failing field of a request.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// FirstError converts a binding error into a FieldError for the first failing field.
func FirstError(err error) *FieldError {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return translate(verrs[0])
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &FieldError{
			Field:   typeErr.Field,
			Code:    apperrors.ValidationInvalidFormat,
			Message: fmt.Sprintf("%s has an invalid type", typeErr.Field),
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &FieldError{
			Code:    apperrors.ValidationInvalidFormat,
			Message: "Request body is not valid JSON",
		}
	}

	return &FieldError{
		Code:    apperrors.ValidationInvalidInput,
		Message: "Invalid request",
	}
}

func translate(fe validator.FieldError) *FieldError {
	field := fe.Field()
	out := &FieldError{Field: field}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		out.Code = apperrors.ValidationRequired
		out.Message = fmt.Sprintf("%s is required", field)
	case "email":
		out.Code = apperrors.ValidationInvalidFormat
		out.Message = fmt.Sprintf("%s must be a valid email", field)
	case "password":
		out.Code = apperrors.ValidationWeakPassword
		out.Message = passwordMessage
	case "role":
		out.Code = apperrors.ValidationInvalidInput
		out.Message = fmt.Sprintf("%s must be one of admin, user, store_owner", field)
	case "oneof":
		out.Code = apperrors.ValidationInvalidInput
		out.Message = fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		if isString {
			out.Code = apperrors.ValidationTooShort
			out.Message = fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		} else {
			out.Code = apperrors.ValidationInvalidRange
			out.Message = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		}
	case "max", "lte":
		if isString {
			out.Code = apperrors.ValidationTooLong
			out.Message = fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		} else {
			out.Code = apperrors.ValidationInvalidRange
			out.Message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		}
	default:
		out.Code = apperrors.ValidationInvalidInput
		out.Message = fmt.Sprintf("%s is invalid", field)
	}
	return out
}

// Respond writes the 400 response for a binding or validation error.
func Respond(c *gin.Context, err error) {
	fe := FirstError(err)
	apperrors.RespondWithValidationError(c, fe.Field, fe.Code, fe.Message)
}

// Bind binds the JSON body into obj and responds with 400 on failure.
// It reports whether the handler should continue.
func Bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		Respond(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters into obj and responds with 400 on failure.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numberFieldError(obj, c.Request.URL.Query(), numErr)
		}
		Respond(c, err)
		return false
	}
	return true
}

// numberFieldError names the numeric query parameter whose value failed to
// parse. Fields are checked in declaration order, as the form binder does.
func numberFieldError(obj interface{}, values url.Values, numErr *strconv.NumError) *FieldError {
	out := &FieldError{
		Code:    apperrors.ValidationInvalidFormat,
		Message: "Query parameter must be a valid integer",
	}

	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return out
	}

	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		switch fld.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			continue
		}

		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		for _, v := range values[name] {
			if v == numErr.Num {
				out.Field = name
				out.Message = fmt.Sprintf("%s must be a valid integer", name)
				return out
			}
		}
	}
	return out
}

// OneOf checks value against an allow-list. Empty values pass.
func OneOf(field, value string, allowed []string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return &FieldError{
		Field:   field,
		Code:    apperrors.ValidationInvalidInput,
		Message: fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")),
	}
}
