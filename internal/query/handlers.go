package query

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for natural language queries.
type Handler struct {
	router *Router
	store  Store // nil disables history listing
}

// NewHandler creates a new query handler.
func NewHandler(router *Router, store Store) *Handler {
	return &Handler{router: router, store: store}
}

// RegisterRoutes sets up query routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/tenants/:tenant/query", h.Ask)
	r.GET("/tenants/:tenant/queries", h.ListQueries)
}

// Ask handles POST /v1/tenants/:tenant/query
func (h *Handler) Ask(c *gin.Context) {
	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "body must contain a non-empty query string",
		})
		return
	}

	result := h.router.Route(c.Request.Context(), c.Param("tenant"), req.Query)
	c.JSON(http.StatusOK, result)
}

// ListQueries handles GET /v1/tenants/:tenant/queries
func (h *Handler) ListQueries(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"queries": []*Result{}, "count": 0})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.store.ListByTenant(c.Request.Context(), c.Param("tenant"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queries": results,
		"count":   len(results),
	})
}
