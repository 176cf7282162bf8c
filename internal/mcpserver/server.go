package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all FinSight tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("finsight", "1.0.0")
	client := NewFinsightClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolAskFinanceQuestion, h.HandleAskFinanceQuestion)
	s.AddTool(ToolGetRevenueForecast, h.HandleGetRevenueForecast)
	s.AddTool(ToolGetExpenseForecast, h.HandleGetExpenseForecast)
	s.AddTool(ToolGetCashFlowProjection, h.HandleGetCashFlowProjection)
	s.AddTool(ToolGetRiskAssessment, h.HandleGetRiskAssessment)
	s.AddTool(ToolGetCustomerBehavior, h.HandleGetCustomerBehavior)

	return s
}
