package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *FinsightClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *FinsightClient) *Handlers {
	return &Handlers{client: client}
}

// HandleAskFinanceQuestion routes a free-form question through the engine.
func (h *Handlers) HandleAskFinanceQuestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := req.GetString("question", "")
	if question == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	raw, err := h.client.AskQuestion(ctx, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to ask question: %v", err)), nil
	}

	text, err := formatQueryResult(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse answer: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetRevenueForecast returns the revenue trend forecast.
func (h *Handlers) HandleGetRevenueForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	months := req.GetInt("months", 1)

	raw, err := h.client.RevenueForecast(ctx, months)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get revenue forecast: %v", err)), nil
	}

	text, err := formatForecast(raw, "Revenue forecast")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse forecast: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetExpenseForecast returns the expense trend forecast.
func (h *Handlers) HandleGetExpenseForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	months := req.GetInt("months", 1)

	raw, err := h.client.ExpenseForecast(ctx, months)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get expense forecast: %v", err)), nil
	}

	text, err := formatForecast(raw, "Expense forecast")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse forecast: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetCashFlowProjection runs the Monte Carlo cash simulation.
func (h *Handlers) HandleGetCashFlowProjection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := req.GetString("date", "")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return mcp.NewToolResultError("date must be formatted YYYY-MM-DD"), nil
		}
	}
	trials := req.GetInt("trials", 0)

	raw, err := h.client.CashFlowProjection(ctx, date, trials)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to project cash flow: %v", err)), nil
	}

	text, err := formatCashFlow(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse projection: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetRiskAssessment returns a credit or liquidity risk assessment.
func (h *Handlers) HandleGetRiskAssessment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	riskType := req.GetString("risk_type", "")

	var raw json.RawMessage
	var err error
	switch riskType {
	case "credit":
		raw, err = h.client.CreditRisk(ctx)
	case "liquidity":
		raw, err = h.client.LiquidityRisk(ctx)
	default:
		return mcp.NewToolResultError("risk_type must be 'credit' or 'liquidity'"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to assess %s risk: %v", riskType, err)), nil
	}

	text, err := formatAssessment(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetCustomerBehavior returns a customer behavior profile.
func (h *Handlers) HandleGetCustomerBehavior(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	customerID := req.GetString("customer_id", "")
	if customerID == "" {
		return mcp.NewToolResultError("customer_id is required"), nil
	}

	raw, err := h.client.CustomerBehavior(ctx, customerID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get customer behavior: %v", err)), nil
	}

	text, err := formatProfile(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse profile: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

type forecastEnvelope struct {
	Forecast struct {
		Kind           string             `json:"kind"`
		Method         string             `json:"method"`
		TargetDate     time.Time          `json:"targetDate"`
		PredictedValue float64            `json:"predictedValue"`
		Confidence     float64            `json:"confidence"`
		Features       map[string]float64 `json:"features"`
	} `json:"forecast"`
	Scenarios []struct {
		Name           string  `json:"name"`
		PredictedValue float64 `json:"predictedValue"`
		Probability    float64 `json:"probability"`
	} `json:"scenarios"`
}

func formatForecast(raw json.RawMessage, title string) (string, error) {
	var env forecastEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s for %s:\n", title, env.Forecast.TargetDate.Format("Jan 2006"))
	fmt.Fprintf(&sb, "  Predicted: %.2f\n", env.Forecast.PredictedValue)
	fmt.Fprintf(&sb, "  Confidence: %.0f%%\n", env.Forecast.Confidence*100)

	if slope, ok := env.Forecast.Features["slope"]; ok {
		direction := "flat"
		if slope > 0 {
			direction = "growing"
		} else if slope < 0 {
			direction = "declining"
		}
		fmt.Fprintf(&sb, "  Trend: %s (%.2f per month)\n", direction, slope)
	}

	if len(env.Scenarios) > 0 {
		sb.WriteString("\nScenarios:\n")
		for _, s := range env.Scenarios {
			fmt.Fprintf(&sb, "  %-12s %.2f (probability %.0f%%)\n", s.Name+":", s.PredictedValue, s.Probability*100)
		}
	}

	return sb.String(), nil
}

func formatCashFlow(raw json.RawMessage) (string, error) {
	var env forecastEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}
	f := env.Forecast

	var sb strings.Builder
	fmt.Fprintf(&sb, "Projected cash position on %s:\n", f.TargetDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "  Expected (median): %.2f\n", f.PredictedValue)
	if p10, ok := f.Features["p10"]; ok {
		fmt.Fprintf(&sb, "  Pessimistic (p10): %.2f\n", p10)
	}
	if p90, ok := f.Features["p90"]; ok {
		fmt.Fprintf(&sb, "  Optimistic (p90):  %.2f\n", p90)
	}
	fmt.Fprintf(&sb, "  Confidence: %.0f%%\n", f.Confidence*100)
	if trials, ok := f.Features["trials"]; ok {
		fmt.Fprintf(&sb, "  Based on %.0f simulation trials\n", trials)
	}

	return sb.String(), nil
}

func formatAssessment(raw json.RawMessage) (string, error) {
	var a struct {
		Type            string             `json:"type"`
		Severity        string             `json:"severity"`
		RiskScore       float64            `json:"riskScore"`
		Probability     float64            `json:"probability"`
		Factors         map[string]float64 `json:"factors"`
		Recommendations []string           `json:"recommendations"`
		Narrative       string             `json:"narrative"`
		ReviewDate      time.Time          `json:"reviewDate"`
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s assessment:\n", a.Type)
	fmt.Fprintf(&sb, "  Score: %.0f/100 (%s)\n", a.RiskScore, a.Severity)
	fmt.Fprintf(&sb, "  Probability: %.0f%%\n", a.Probability*100)
	fmt.Fprintf(&sb, "  Next review: %s\n", a.ReviewDate.Format("2006-01-02"))

	if len(a.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for i, r := range a.Recommendations {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, r)
		}
	}

	if a.Narrative != "" {
		fmt.Fprintf(&sb, "\n%s\n", a.Narrative)
	}

	return sb.String(), nil
}

func formatProfile(raw json.RawMessage) (string, error) {
	var p struct {
		CustomerID string `json:"customerId"`
		Metrics    struct {
			TotalRevenue          float64 `json:"totalRevenue"`
			AvgOrderValue         float64 `json:"avgOrderValue"`
			PurchaseFrequency     int     `json:"purchaseFrequency"`
			DaysSinceLastPurchase float64 `json:"daysSinceLastPurchase"`
		} `json:"metrics"`
		ChurnProbability float64 `json:"churnProbability"`
		Segment          string  `json:"segment"`
		NextPurchase     struct {
			Date       time.Time `json:"date"`
			Amount     float64   `json:"amount"`
			Confidence float64   `json:"confidence"`
		} `json:"nextPurchase"`
		RecommendedActions []string `json:"recommendedActions"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer %s (%s):\n", p.CustomerID, p.Segment)
	fmt.Fprintf(&sb, "  Total revenue: %.2f over %d purchases\n", p.Metrics.TotalRevenue, p.Metrics.PurchaseFrequency)
	fmt.Fprintf(&sb, "  Average order: %.2f\n", p.Metrics.AvgOrderValue)
	fmt.Fprintf(&sb, "  Days since last purchase: %.0f\n", p.Metrics.DaysSinceLastPurchase)
	fmt.Fprintf(&sb, "  Churn probability: %.0f%%\n", p.ChurnProbability*100)
	fmt.Fprintf(&sb, "  Next purchase: ~%s for ~%.2f (confidence %.0f%%)\n",
		p.NextPurchase.Date.Format("2006-01-02"), p.NextPurchase.Amount, p.NextPurchase.Confidence*100)

	if len(p.RecommendedActions) > 0 {
		sb.WriteString("\nRecommended actions:\n")
		for i, action := range p.RecommendedActions {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, action)
		}
	}

	return sb.String(), nil
}

func formatQueryResult(raw json.RawMessage) (string, error) {
	var r struct {
		Intent       string          `json:"intent"`
		Summary      string          `json:"summary"`
		Response     json.RawMessage `json:"response"`
		IsSuccessful bool            `json:"isSuccessful"`
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(r.Summary)
	if !r.IsSuccessful {
		return sb.String(), nil
	}

	if len(r.Response) > 0 && string(r.Response) != "null" {
		fmt.Fprintf(&sb, "\n\nDetails (%s):\n%s", r.Intent, formatJSON(r.Response))
	}

	return sb.String(), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}
