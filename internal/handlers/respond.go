package handlers

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storeapp/internal/apperr"
)

// statusForError maps the error taxonomy onto HTTP statuses. HTTP is a
// handler concern; the services only ever speak in apperr kinds.
func statusForError(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// fail renders a service error as the JSON error envelope. Internal
// causes are not leaked to the client.
func fail(c *fiber.Ctx, err error) error {
	message := "Something went wrong"
	var e *apperr.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// passwordSpecials is the accepted special-character set for passwords.
const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// validPassword enforces the account password policy: 8-16 characters
// with at least one uppercase letter and one special character.
func validPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < 8 || len(pw) > 16 {
		return false
	}
	hasUpper := false
	for _, r := range pw {
		if unicode.IsUpper(r) {
			hasUpper = true
			break
		}
	}
	return hasUpper && strings.ContainsAny(pw, passwordSpecials)
}

// newValidator builds the request validator with the custom password
// rule registered.
func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for a blank tag name.
	_ = v.RegisterValidation("password", validPassword)
	return v
}

// validationFail renders struct-validation errors field by field.
func validationFail(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
