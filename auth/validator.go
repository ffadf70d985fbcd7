package auth

import (
	"fmt"
	"regexp"
	"strings"

	"chat-sync/domain"
	"chat-sync/errors"

	"github.com/go-playground/validator/v10"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handlePattern.MatchString(fl.Field().String())
	})
	return v
}

type HandleRequest struct {
	Handle string `validate:"required,handle"`
}

type PasswordRequest struct {
	Handle   string `validate:"required,handle"`
	Password string `validate:"required,min=6,max=200"`
}

type ContentRequest struct {
	Content string `validate:"required,max=2000"`
}

// NormalizeHandle trims the handle and checks it against the allowed pattern.
func NormalizeHandle(handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if err := validate.Struct(HandleRequest{Handle: handle}); err != nil {
		return "", fmt.Errorf("%w: invalid handle", errors.ErrInvalidInput)
	}
	return handle, nil
}

// ValidatePassword checks handle and secret before any storage access.
func ValidatePassword(req PasswordRequest) error {
	if err := validate.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: invalid %s", errors.ErrInvalidInput, strings.ToLower(fieldErrs[0].Field()))
		}
		return fmt.Errorf("%w: %v", errors.ErrInvalidInput, err)
	}
	return nil
}

// NormalizeContent trims the message body and enforces 1..2000 characters.
// Length is counted in runes so multi-byte text is measured correctly.
func NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if err := validate.Struct(ContentRequest{Content: content}); err != nil {
		return "", fmt.Errorf("%w: content must contain 1 to %d characters", errors.ErrInvalidInput, domain.MaxContentLength)
	}
	return content, nil
}
