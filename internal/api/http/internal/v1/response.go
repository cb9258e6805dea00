package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type response struct {
	Message string `json:"message"`
}

func newResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, response{message})
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationErrorsResponse struct {
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

func validationErrorResponse(c *gin.Context, err error) {
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		out := make([]ValidationError, len(verr))
		for i, ferr := range verr {
			out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, validationErrorsResponse{
			Message: "Validation error",
			Errors:  out,
		})
		return
	}

	newResponse(c, http.StatusBadRequest, "invalid request body")
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Must be at least %v characters", value)
	case "max":
		return fmt.Sprintf("Must be at most %v characters", value)
	case "nic":
		return "NIC must be 9 digits followed by V/X or 12 digits"
	case "phonenumber":
		return "Contact number must start with 0 and have 10 digits"
	case "password":
		return "Password must be at least 8 characters with upper, lower, digit and special characters"
	}
	return tag
}
