package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the FinSight MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolAskFinanceQuestion = mcp.NewTool("ask_finance_question",
	mcp.WithDescription(
		"Ask a natural language question about the tenant's finances. "+
			"The engine detects the intent (revenue, expenses, cash flow, budgets, forecasts, risk) "+
			"and routes to the matching analysis. Use this when no specialized tool fits."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The question in plain English (e.g. 'How is our revenue trending this quarter?')")),
)

var ToolGetRevenueForecast = mcp.NewTool("get_revenue_forecast",
	mcp.WithDescription(
		"Get a revenue forecast built from historical transactions using linear trend extrapolation. "+
			"Returns the predicted value, a confidence score, and optimistic/realistic/pessimistic scenarios."),
	mcp.WithNumber("months",
		mcp.Description("Forecast horizon in months ahead (1-24, default 1)")),
)

var ToolGetExpenseForecast = mcp.NewTool("get_expense_forecast",
	mcp.WithDescription(
		"Get an expense forecast built from historical spending using linear trend extrapolation. "+
			"Returns the predicted value, a confidence score, and scenario bands."),
	mcp.WithNumber("months",
		mcp.Description("Forecast horizon in months ahead (1-24, default 1)")),
)

var ToolGetCashFlowProjection = mcp.NewTool("get_cash_flow_projection",
	mcp.WithDescription(
		"Run a Monte Carlo simulation of the tenant's cash position at a future date. "+
			"Accounts for scheduled invoices and recurring expenses, and returns percentile "+
			"bands (p10/p50/p90) with a confidence score."),
	mcp.WithString("date",
		mcp.Description("Target date formatted YYYY-MM-DD (default: 3 months from now)")),
	mcp.WithNumber("trials",
		mcp.Description("Number of simulation trials (minimum 100, default 1000)")),
)

var ToolGetRiskAssessment = mcp.NewTool("get_risk_assessment",
	mcp.WithDescription(
		"Get a rule-based risk assessment for the tenant. Credit risk scores overdue invoices, "+
			"payment delays and receivable concentration; liquidity risk scores cash runway and "+
			"burn rate. Returns a 0-100 score, severity, contributing factors and recommendations."),
	mcp.WithString("risk_type",
		mcp.Required(),
		mcp.Description("Which assessment to run: 'credit' or 'liquidity'"),
		mcp.Enum("credit", "liquidity")),
)

var ToolGetCustomerBehavior = mcp.NewTool("get_customer_behavior",
	mcp.WithDescription(
		"Get the behavior profile for a customer: RFM-style metrics, churn probability, "+
			"segment (Champion, Loyal Customer, Potential Loyalist, New Customer, At Risk), "+
			"next purchase prediction and recommended retention actions."),
	mcp.WithString("customer_id",
		mcp.Required(),
		mcp.Description("The customer's ID within the tenant")),
)
