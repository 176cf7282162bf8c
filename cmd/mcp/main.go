// MCP server for the FinSight analytics engine.
//
// Exposes forecasting, risk assessment and customer behavior tools over the
// Model Context Protocol so LLM agents can query a tenant's finances.
// Communicates over stdio; point it at a running FinSight API:
//
//	FINSIGHT_API_URL=http://localhost:8080 FINSIGHT_TENANT=demo finsight-mcp
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/finsightlabs/finsight/internal/mcpserver"
	"github.com/finsightlabs/finsight/internal/security"
)

func main() {
	_ = godotenv.Load()

	cfg := mcpserver.Config{
		APIURL: envOrDefault("FINSIGHT_API_URL", "http://localhost:8080"),
		APIKey: os.Getenv("FINSIGHT_API_KEY"), // optional
		Tenant: os.Getenv("FINSIGHT_TENANT"),
	}

	if cfg.Tenant == "" {
		fmt.Fprintln(os.Stderr, "FINSIGHT_TENANT is required")
		os.Exit(1)
	}

	// The bridge issues server-side requests to whatever URL the
	// environment hands it; refuse metadata-service targets up front.
	if err := security.ValidateAPIBaseURL(cfg.APIURL); err != nil {
		fmt.Fprintf(os.Stderr, "FINSIGHT_API_URL: %v\n", err)
		os.Exit(1)
	}

	s := mcpserver.NewMCPServer(cfg)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
