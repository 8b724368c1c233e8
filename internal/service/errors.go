package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrPhoneTaken         = errors.New("phone number already in use")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	// ErrSigningSecretMissing is an operator error: the server has no JWT
	// secret configured. Its text is never sent to clients.
	ErrSigningSecretMissing = errors.New("JWT secret is not configured")
)

// ValidationError reports malformed or missing input. Message is safe to
// return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

var validate = validator.New()

// failedTags indexes validator failures as "Field.tag".
func failedTags(err error) map[string]bool {
	out := make(map[string]bool)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.StructField()+"."+fe.Tag()] = true
		}
	}
	return out
}

func anyFailed(tags map[string]bool, keys ...string) bool {
	for _, k := range keys {
		if tags[k] {
			return true
		}
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
