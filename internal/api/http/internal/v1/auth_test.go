package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers struct {
	signUpErr    error
	verifyErr    error
	signInErr    error
	signUpCalled bool
}

func (s *stubUsers) SignUp(_ context.Context, input service.SignUpInput) (string, error) {
	s.signUpCalled = true
	if s.signUpErr != nil {
		return "", s.signUpErr
	}
	return input.Email, nil
}

func (s *stubUsers) VerifyOTP(context.Context, string, string) (*service.AuthResult, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &service.AuthResult{
		Tokens:   service.Tokens{AccessToken: "access", RefreshToken: "refresh"},
		Username: "Alice",
		Email:    "a@x.com",
	}, nil
}

func (s *stubUsers) SignIn(context.Context, string, string) (*service.AuthResult, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return &service.AuthResult{
		Tokens:   service.Tokens{AccessToken: "access", RefreshToken: "refresh"},
		Username: "Alice",
		Email:    "a@x.com",
	}, nil
}

func (s *stubUsers) GetProfile(context.Context, string) (*domain.User, error) {
	return nil, service.ErrUserNotFound
}

func (s *stubUsers) UpdateProfile(context.Context, string, string, string) error {
	return nil
}

func newAuthTestRouter(users *stubUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.RegisterGinValidator()

	h := &Handler{services: &service.Services{Users: users}}

	router := gin.New()
	h.initAuthRoutes(router.Group("/api/v1"))
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validSignUpBody() gin.H {
	return gin.H{
		"name":           "Alice",
		"email":          "a@x.com",
		"nic":            "123456789012",
		"contact_number": "0771234567",
		"password":       "Abcd123!",
	}
}

func TestSignUpHandler_Created(t *testing.T) {
	router := newAuthTestRouter(&stubUsers{})

	w := postJSON(t, router, "/api/v1/auth/signup", validSignUpBody())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp signUpResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "a@x.com", resp.Email)
	assert.NotEmpty(t, resp.Message)
}

func TestSignUpHandler_Conflict(t *testing.T) {
	router := newAuthTestRouter(&stubUsers{signUpErr: service.ErrUserAlreadyExists})

	w := postJSON(t, router, "/api/v1/auth/signup", validSignUpBody())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestSignUpHandler_EmailDeliveryFailure(t *testing.T) {
	router := newAuthTestRouter(&stubUsers{signUpErr: service.ErrEmailDelivery})

	w := postJSON(t, router, "/api/v1/auth/signup", validSignUpBody())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSignUpHandler_ValidationRejectsBadInput(t *testing.T) {
	users := &stubUsers{}
	router := newAuthTestRouter(users)

	for name, mutate := range map[string]func(gin.H){
		"bad email":    func(b gin.H) { b["email"] = "not-an-email" },
		"bad nic":      func(b gin.H) { b["nic"] = "12345" },
		"bad phone":    func(b gin.H) { b["contact_number"] = "771234567" },
		"weak pass":    func(b gin.H) { b["password"] = "abcd1234" },
		"missing name": func(b gin.H) { delete(b, "name") },
	} {
		body := validSignUpBody()
		mutate(body)

		w := postJSON(t, router, "/api/v1/auth/signup", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	assert.False(t, users.signUpCalled)
}

func TestVerifyOTPHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"success", nil, http.StatusOK},
		{"not found", service.ErrChallengeNotFound, http.StatusNotFound},
		{"expired", service.ErrChallengeExpired, http.StatusRequestTimeout},
		{"invalid code", service.ErrInvalidCode, http.StatusBadRequest},
		{"conflict", service.ErrUserAlreadyExists, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newAuthTestRouter(&stubUsers{verifyErr: tc.err})

			w := postJSON(t, router, "/api/v1/auth/verify-otp", gin.H{
				"email": "a@x.com",
				"otp":   "482913",
			})

			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestVerifyOTPHandler_SuccessBody(t *testing.T) {
	router := newAuthTestRouter(&stubUsers{})

	w := postJSON(t, router, "/api/v1/auth/verify-otp", gin.H{
		"email": "a@x.com",
		"otp":   "482913",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, "Alice", resp.Username)
	assert.Equal(t, "a@x.com", resp.Email)
}

func TestSignInHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"success", nil, http.StatusOK},
		{"unknown user", service.ErrUserNotFound, http.StatusNotFound},
		{"wrong password", service.ErrInvalidPassword, http.StatusUnauthorized},
		{"unverified", service.ErrUserNotVerified, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newAuthTestRouter(&stubUsers{signInErr: tc.err})

			w := postJSON(t, router, "/api/v1/auth/signin", gin.H{
				"email":    "a@x.com",
				"password": "Abcd123!",
			})

			assert.Equal(t, tc.code, w.Code)
		})
	}
}
