package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// PasswordPolicy parameterizes password strength checks so the rules
// live in configuration rather than inside the validator.
type PasswordPolicy struct {
	MinLength int
}

// DefaultPasswordPolicy matches the registration defaults.
var DefaultPasswordPolicy = PasswordPolicy{MinLength: 8}

// ValidationResult reports the outcome of a credential check. Failures
// are a normal returned outcome, never a panic or sentinel surprise.
type ValidationResult struct {
	Valid   bool
	Message string
}

func validationOK() ValidationResult {
	return ValidationResult{Valid: true}
}

func validationFailed(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message}
}

// ValidateLoginCredentials checks the shape of a login attempt:
// a well-formed email and a non-empty password.
func ValidateLoginCredentials(email, password string) ValidationResult {
	if strings.TrimSpace(email) == "" {
		return validationFailed("email is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return validationFailed("email format is invalid")
	}
	if password == "" {
		return validationFailed("password is required")
	}
	return validationOK()
}

// ValidateRegistrationCredentials applies the login shape checks plus
// the strength policy and the confirmation match.
func ValidateRegistrationCredentials(email, password, confirm string, policy PasswordPolicy) ValidationResult {
	if result := ValidateLoginCredentials(email, password); !result.Valid {
		return result
	}
	if len(password) < policy.MinLength {
		return validationFailed(fmt.Sprintf("password must be at least %d characters", policy.MinLength))
	}
	if password != confirm {
		return validationFailed("passwords do not match")
	}
	return validationOK()
}
