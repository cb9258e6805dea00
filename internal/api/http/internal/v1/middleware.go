package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RandilG/Construction-Management/pkg/auth"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userId"
	emailCtx            = "userEmail"
)

func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	claims, err := h.parseAuthHeader(c)
	if err != nil {
		if !errors.Is(err, auth.ErrTokenExpired) {
			logger.Error("parse auth header failed", zap.Error(err))
		}
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(userCtx, claims.UserID)
	c.Set(emailCtx, claims.Email())
}

func (h *Handler) parseAuthHeader(c *gin.Context) (*auth.Claims, error) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return nil, errors.New("empty auth header")
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" {
		return nil, errors.New("invalid auth header")
	}

	if len(headerParts[1]) == 0 {
		return nil, errors.New("token is empty")
	}

	return h.tokenManager.Parse(headerParts[1])
}

func (h *Handler) getUserUUID(c *gin.Context) (uuid.UUID, error) {
	id, ok := c.Get(userCtx)
	if !ok {
		return uuid.Nil, errors.New("user id not found")
	}

	parsed, err := uuid.Parse(id.(string))
	if err != nil {
		return uuid.Nil, errors.New("invalid user id in token")
	}

	return parsed, nil
}

func (h *Handler) getUserEmail(c *gin.Context) (string, error) {
	email, ok := c.Get(emailCtx)
	if !ok {
		return "", errors.New("user email not found")
	}

	return email.(string), nil
}
