package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/finsightlabs/finsight/internal/retry"
)

// Config holds the configuration for connecting to the FinSight engine.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
	APIKey string // API key, e.g. "sk_..."
	Tenant string // Tenant the MCP session operates on behalf of
}

// FinsightClient is a pure HTTP client for the FinSight analytics API.
type FinsightClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewFinsightClient creates a new client for the FinSight engine.
func NewFinsightClient(cfg Config) *FinsightClient {
	return &FinsightClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // Monte Carlo runs can take a while
		},
	}
}

// apiError represents an error response from the engine.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the engine and returns the response body.
// Transient failures (connection errors, 5xx) are retried with backoff;
// 4xx responses are reported to the caller immediately.
func (c *FinsightClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var bodyBytes []byte
	if body != nil {
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	var result json.RawMessage
	err = retry.Do(ctx, 3, 500*time.Millisecond, func() error {
		var reqBody io.Reader
		if bodyBytes != nil {
			reqBody = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}

		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			var apiErr apiError
			apiMsg := string(respBody)
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
				apiMsg = apiErr.Message
			}
			errResp := fmt.Errorf("API error (%d): %s", resp.StatusCode, apiMsg)
			if resp.StatusCode < 500 {
				return retry.Permanent(errResp)
			}
			return errResp
		}

		result = json.RawMessage(respBody)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *FinsightClient) tenantPath(suffix string) string {
	return "/v1/tenants/" + c.cfg.Tenant + suffix
}

// AskQuestion routes a natural language finance question through the engine.
func (c *FinsightClient) AskQuestion(ctx context.Context, question string) (json.RawMessage, error) {
	body := map[string]string{"query": question}
	return c.doRequest(ctx, http.MethodPost, c.tenantPath("/query"), nil, body)
}

// RevenueForecast returns the revenue trend forecast for the given horizon.
func (c *FinsightClient) RevenueForecast(ctx context.Context, months int) (json.RawMessage, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	return c.doRequest(ctx, http.MethodGet, c.tenantPath("/forecasts/revenue"), q, nil)
}

// ExpenseForecast returns the expense trend forecast for the given horizon.
func (c *FinsightClient) ExpenseForecast(ctx context.Context, months int) (json.RawMessage, error) {
	q := url.Values{}
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	return c.doRequest(ctx, http.MethodGet, c.tenantPath("/forecasts/expenses"), q, nil)
}

// CashFlowProjection runs a Monte Carlo cash position simulation.
func (c *FinsightClient) CashFlowProjection(ctx context.Context, date string, trials int) (json.RawMessage, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	if trials > 0 {
		q.Set("trials", strconv.Itoa(trials))
	}
	return c.doRequest(ctx, http.MethodGet, c.tenantPath("/forecasts/cashflow"), q, nil)
}

// CreditRisk returns the current credit risk assessment.
func (c *FinsightClient) CreditRisk(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.tenantPath("/risks/credit"), nil, nil)
}

// LiquidityRisk returns the current liquidity risk assessment.
func (c *FinsightClient) LiquidityRisk(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.tenantPath("/risks/liquidity"), nil, nil)
}

// CustomerBehavior returns the behavior profile for a customer.
func (c *FinsightClient) CustomerBehavior(ctx context.Context, customerID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, c.tenantPath("/customers/"+customerID+"/behavior"), nil, nil)
}
