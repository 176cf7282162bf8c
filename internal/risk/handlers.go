package risk

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for risk assessment.
type Handler struct {
	service *Service
}

// NewHandler creates a new risk handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up risk routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tenants/:tenant/risks/credit", h.CreditRisk)
	r.GET("/tenants/:tenant/risks/liquidity", h.LiquidityRisk)
	r.GET("/tenants/:tenant/risks", h.ListAssessments)
}

// CreditRisk handles GET /v1/tenants/:tenant/risks/credit
func (h *Handler) CreditRisk(c *gin.Context) {
	a, err := h.service.Credit(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, a)
}

// LiquidityRisk handles GET /v1/tenants/:tenant/risks/liquidity
func (h *Handler) LiquidityRisk(c *gin.Context) {
	a, err := h.service.Liquidity(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, a)
}

// ListAssessments handles GET /v1/tenants/:tenant/risks
func (h *Handler) ListAssessments(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	assessments, err := h.service.History(c.Request.Context(), c.Param("tenant"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": assessments,
		"count":       len(assessments),
	})
}
