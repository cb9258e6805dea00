package v1

import (
	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/internal/service"
	"github.com/RandilG/Construction-Management/pkg/auth"
	"github.com/RandilG/Construction-Management/pkg/pdf"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
	pdfGenerator *pdf.Generator
}

func NewHandler(
	services *service.Services,
	tokenManager auth.TokenManager,
	config *config.Config,
	pdfGenerator *pdf.Generator,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       config,
		pdfGenerator: pdfGenerator,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initAuthRoutes(v1)
	h.initProfileRoutes(v1)
	h.initProjectRoutes(v1)
	h.initExpenseRoutes(v1)
	h.initTimelineRoutes(v1)
}
