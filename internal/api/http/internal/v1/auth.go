package v1

import (
	"errors"
	"net/http"

	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")

	auth.POST("/signup", h.signUp)
	auth.POST("/verify-otp", h.verifyOTP)
	auth.POST("/signin", h.signIn)
}

type signUpRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email"`
	NIC           string `json:"nic" binding:"required,nic"`
	ContactNumber string `json:"contact_number" binding:"required,phonenumber"`
	Password      string `json:"password" binding:"required,password"`
}

type signUpResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	email, err := h.services.Users.SignUp(c.Request.Context(), service.SignUpInput{
		Name:          req.Name,
		Email:         req.Email,
		NIC:           req.NIC,
		ContactNumber: req.ContactNumber,
		Password:      req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			newResponse(c, http.StatusConflict, "User already exists")
		case errors.Is(err, service.ErrEmailDelivery):
			newResponse(c, http.StatusInternalServerError, "Failed to send verification email")
		default:
			logger.Error("sign up failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusCreated, signUpResponse{
		Message: "Verification code sent to your email",
		Email:   email,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type authResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChallengeNotFound):
			newResponse(c, http.StatusNotFound, "OTP not found, request a new code")
		case errors.Is(err, service.ErrChallengeExpired):
			newResponse(c, http.StatusRequestTimeout, "OTP has expired, request a new code")
		case errors.Is(err, service.ErrInvalidCode):
			newResponse(c, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, service.ErrUserAlreadyExists):
			newResponse(c, http.StatusConflict, "User already exists")
		default:
			logger.Error("verify otp failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Message:      "Email verified successfully",
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Username:     result.Username,
		Email:        result.Email,
	})
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			newResponse(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidPassword):
			newResponse(c, http.StatusUnauthorized, "Invalid password")
		case errors.Is(err, service.ErrUserNotVerified):
			newResponse(c, http.StatusForbidden, "Email is not verified")
		default:
			logger.Error("sign in failed", zap.Error(err))
			newResponse(c, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Message:      "Signed in successfully",
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Username:     result.Username,
		Email:        result.Email,
	})
}
