package apiHttp

import (
	"time"

	ginzap "github.com/gin-contrib/zap"

	"github.com/RandilG/Construction-Management/pkg/auth"
	"github.com/RandilG/Construction-Management/pkg/limiter"
	"github.com/RandilG/Construction-Management/pkg/logger"
	"github.com/RandilG/Construction-Management/pkg/pdf"
	"github.com/RandilG/Construction-Management/pkg/validator"

	internalV1 "github.com/RandilG/Construction-Management/internal/api/http/internal/v1"
	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
	pdfGenerator *pdf.Generator
}

func NewHandlers(
	services *service.Services,
	tokenManager auth.TokenManager,
	cfg *config.Config,
	pdfGenerator *pdf.Generator,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       cfg,
		pdfGenerator: pdfGenerator,
	}
}

func (h *Handler) Init(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	validator.RegisterGinValidator()

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.Limit(cfg.Limiter.RPS, cfg.Limiter.Burst, cfg.Limiter.TTL),
		corsMiddleware,
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	h.initAPI(router)

	return router
}

func (h *Handler) initAPI(router *gin.Engine) {
	internalHandlersV1 := internalV1.NewHandler(h.services, h.tokenManager, h.config, h.pdfGenerator)
	api := router.Group("/api")
	internalHandlersV1.Init(api)
}
