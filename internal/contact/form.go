package contact

import (
	"fmt"
	"regexp"
	"strings"
)

// MinMessageLength is the minimum trimmed message length in characters.
const MinMessageLength = 10

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Form struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Subject string `json:"subject" form:"subject"`
	Message string `json:"message" form:"message"`
}

// Empty reports whether every field is blank.
func (f Form) Empty() bool {
	return f == Form{}
}

// ValidationError names the first invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the fields in display order and returns the first
// failure as a *ValidationError.
func Validate(f Form) error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return &ValidationError{"name", "Name is required"}
	case strings.TrimSpace(f.Email) == "":
		return &ValidationError{"email", "Email is required"}
	case !emailShape.MatchString(f.Email):
		return &ValidationError{"email", "Please enter a valid email"}
	case strings.TrimSpace(f.Subject) == "":
		return &ValidationError{"subject", "Subject is required"}
	case strings.TrimSpace(f.Message) == "":
		return &ValidationError{"message", "Message is required"}
	case len([]rune(strings.TrimSpace(f.Message))) < MinMessageLength:
		return &ValidationError{"message", fmt.Sprintf("Message must be at least %d characters", MinMessageLength)}
	}
	return nil
}

func (f *Form) set(field, value string) error {
	switch field {
	case "name":
		f.Name = value
	case "email":
		f.Email = value
	case "subject":
		f.Subject = value
	case "message":
		f.Message = value
	default:
		return fmt.Errorf("contact: unknown field %q", field)
	}
	return nil
}
