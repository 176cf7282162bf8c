package behavior

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for customer behavior scoring.
type Handler struct {
	service *Service
}

// NewHandler creates a new behavior handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up behavior routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tenants/:tenant/customers/:customer/behavior", h.ScoreCustomer)
	r.GET("/tenants/:tenant/behavior", h.ListProfiles)
}

// ScoreCustomer handles GET /v1/tenants/:tenant/customers/:customer/behavior
func (h *Handler) ScoreCustomer(c *gin.Context) {
	p, err := h.service.ScoreCustomer(c.Request.Context(), c.Param("tenant"), c.Param("customer"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListProfiles handles GET /v1/tenants/:tenant/behavior
func (h *Handler) ListProfiles(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	profiles, err := h.service.History(c.Request.Context(), c.Param("tenant"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"count":    len(profiles),
	})
}
