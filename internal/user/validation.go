package user

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SignUpInput is the registration payload validated by the shared schema.
// The same rules apply on the uniqueness-check endpoint, so a name that
// passes the live check can never fail registration validation.
type SignUpInput struct {
	Name     string `json:"name" validate:"required,min=2,max=20,username"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128,password"`
}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`[0-9]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration errors are never returned to users raw; panics here would
	// only fire on a malformed tag, which is a programming error.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return hasLetter.MatchString(s) && hasDigit.MatchString(s)
	})
	return v
}

// ValidateSignUp checks the full registration payload and returns user-facing
// messages for every failed rule. An empty slice means the input is valid.
func ValidateSignUp(in SignUpInput) []string {
	in.Email = strings.TrimSpace(in.Email)

	var msgs []string
	err := validate.Struct(in)
	if err == nil {
		return msgs
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid input"}
	}

	for _, fe := range errs {
		msgs = append(msgs, messageFor(fe))
	}
	return msgs
}

// ValidateName checks a candidate username against the registration rules.
func ValidateName(name string) []string {
	var msgs []string
	err := validate.Var(name, "required,min=2,max=20,username")
	if err == nil {
		return msgs
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"Invalid query parameters"}
	}

	for _, fe := range errs {
		msgs = append(msgs, nameMessage(fe.Tag()))
	}
	return msgs
}

func messageFor(fe validator.FieldError) string {
	switch fe.Field() {
	case "Name":
		return nameMessage(fe.Tag())
	case "Email":
		switch fe.Tag() {
		case "required":
			return "Email cannot be empty"
		case "max":
			return "Email must be no more than 255 characters"
		default:
			return "Invalid email address"
		}
	case "Password":
		switch fe.Tag() {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 6 characters"
		case "max":
			return "Password must be no more than 128 characters"
		default:
			return "Password must contain at least one letter and one number"
		}
	}
	return "Invalid input"
}

func nameMessage(tag string) string {
	switch tag {
	case "required":
		return "Username is required"
	case "min":
		return "Username must be at least 2 characters"
	case "max":
		return "Username must be no more than 20 characters"
	default:
		return "Username must not contain special characters"
	}
}
