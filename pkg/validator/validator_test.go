package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidate(t *testing.T) *validator.Validate {
	t.Helper()

	v := validator.New()
	require.NoError(t, v.RegisterValidation("nic", nicValidator))
	require.NoError(t, v.RegisterValidation("phonenumber", phoneNumberValidator))
	require.NoError(t, v.RegisterValidation("password", passwordValidator))
	return v
}

func TestNICValidator(t *testing.T) {
	v := newTestValidate(t)

	for _, valid := range []string{"123456789V", "123456789v", "123456789X", "200012345678"} {
		assert.NoError(t, v.Var(valid, "nic"), valid)
	}

	for _, invalid := range []string{"12345678V", "1234567890123", "123456789", "abcdefghiV", "123456789Z"} {
		assert.Error(t, v.Var(invalid, "nic"), invalid)
	}
}

func TestPhoneNumberValidator(t *testing.T) {
	v := newTestValidate(t)

	assert.NoError(t, v.Var("0771234567", "phonenumber"))

	for _, invalid := range []string{"771234567", "07712345678", "077123456", "+94771234567", "07712345a7"} {
		assert.Error(t, v.Var(invalid, "phonenumber"), invalid)
	}
}

func TestPasswordValidator(t *testing.T) {
	v := newTestValidate(t)

	assert.NoError(t, v.Var("Abcd123!", "password"))

	for _, invalid := range []string{
		"Ab1!",     // too short
		"abcd123!", // no upper
		"ABCD123!", // no lower
		"Abcdefg!", // no digit
		"Abcd1234", // no special
	} {
		assert.Error(t, v.Var(invalid, "password"), invalid)
	}
}
