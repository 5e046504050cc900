package validator

import (
	"net/mail"
	"strings"

	"dateplanner-api/modules/auth/dto"
)

const minPasswordLength = 8

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

func (r *ValidationResult) Add(field, message string) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message})
}

func (r *ValidationResult) HasError() bool {
	return len(r.Errors) > 0
}

func validateEmail(result *ValidationResult, email string) {
	if strings.TrimSpace(email) == "" {
		result.Add("email", "email is required")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		result.Add("email", "email is invalid")
	}
}

func ValidateRegisterRequest(req *dto.RegisterRequest) *ValidationResult {
	result := &ValidationResult{}
	validateEmail(result, req.Email)
	if len(req.Password) < minPasswordLength {
		result.Add("password", "password must be at least 8 characters")
	}
	return result
}

func ValidateLoginRequest(req *dto.LoginRequest) *ValidationResult {
	result := &ValidationResult{}
	validateEmail(result, req.Email)
	if req.Password == "" {
		result.Add("password", "password is required")
	}
	return result
}
