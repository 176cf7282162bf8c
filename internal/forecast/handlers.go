package forecast

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for forecasting.
type Handler struct {
	service *Service
}

// NewHandler creates a new forecast handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up forecast routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tenants/:tenant/forecasts/revenue", h.RevenueForecast)
	r.GET("/tenants/:tenant/forecasts/expenses", h.ExpenseForecast)
	r.GET("/tenants/:tenant/forecasts/cashflow", h.CashFlowProjection)
	r.GET("/tenants/:tenant/forecasts", h.ListForecasts)
}

// RevenueForecast handles GET /v1/tenants/:tenant/forecasts/revenue
func (h *Handler) RevenueForecast(c *gin.Context) {
	h.trendForecast(c, h.service.Revenue)
}

// ExpenseForecast handles GET /v1/tenants/:tenant/forecasts/expenses
func (h *Handler) ExpenseForecast(c *gin.Context) {
	h.trendForecast(c, h.service.Expenses)
}

func (h *Handler) trendForecast(c *gin.Context, fn func(ctx context.Context, tenantID string, months int) (*Forecast, []Scenario, error)) {
	tenant := c.Param("tenant")

	months := 1
	if m := c.Query("months"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 24 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "months must be an integer between 1 and 24",
			})
			return
		}
		months = parsed
	}

	f, scenarios, err := fn(c.Request.Context(), tenant, months)
	if err != nil {
		respondForecastError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": f, "scenarios": scenarios})
}

// CashFlowProjection handles GET /v1/tenants/:tenant/forecasts/cashflow
func (h *Handler) CashFlowProjection(c *gin.Context) {
	tenant := c.Param("tenant")

	targetDate := time.Now().AddDate(0, 3, 0)
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "date must be formatted YYYY-MM-DD",
			})
			return
		}
		targetDate = parsed
	}

	trials := 0 // 0 = service default
	if tr := c.Query("trials"); tr != "" {
		parsed, err := strconv.Atoi(tr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "trials must be an integer",
			})
			return
		}
		trials = parsed
	}

	f, scenarios, err := h.service.CashFlow(c.Request.Context(), tenant, targetDate, trials)
	if err != nil {
		respondForecastError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forecast": f, "scenarios": scenarios})
}

// ListForecasts handles GET /v1/tenants/:tenant/forecasts
func (h *Handler) ListForecasts(c *gin.Context) {
	tenant := c.Param("tenant")

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	forecasts, err := h.service.History(c.Request.Context(), tenant, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"forecasts": forecasts,
		"count":     len(forecasts),
	})
}

func respondForecastError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInsufficientHistory):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "insufficient_history",
			"message": "Not enough history yet - forecasts need at least 12 aggregated periods",
		})
	case errors.Is(err, ErrInvalidSimulationParams):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_simulation_params",
			"message": "Simulation parameters out of range (trials must be >= 100)",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
	}
}
