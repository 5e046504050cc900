package validator

import (
	"testing"

	"dateplanner-api/modules/auth/dto"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegisterRequest(t *testing.T) {
	ok := ValidateRegisterRequest(&dto.RegisterRequest{Email: "ana@example.com", Password: "longenough"})
	assert.False(t, ok.HasError())

	bad := ValidateRegisterRequest(&dto.RegisterRequest{Email: "not-an-email", Password: "short"})
	assert.True(t, bad.HasError())
	assert.Len(t, bad.Errors, 2)
}

func TestValidateLoginRequest(t *testing.T) {
	result := ValidateLoginRequest(&dto.LoginRequest{})
	assert.True(t, result.HasError())
	assert.Equal(t, "email", result.Errors[0].Field)
	assert.Equal(t, "password", result.Errors[1].Field)
}
