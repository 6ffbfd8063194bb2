package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwaldner/stockai/internal/logger"
	"github.com/jwaldner/stockai/internal/models"
)

// Predictor is implemented by both Client and PerformanceWrapper
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) ([]models.PricePoint, error)
	Ping(ctx context.Context) error
}

const (
	// PredictPath is appended to the base URL for every prediction
	PredictPath = "/predict"

	// Error bodies larger than this are truncated before parsing
	maxErrorBody = 64 << 10
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a prediction client. timeout 0 means the call runs
// until the service answers or the connection fails.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict posts the request once and returns the price series in the order
// the service sent it. Non-2xx responses become *PredictionError; transport
// errors are returned as the HTTP client produced them.
func (c *Client) Predict(ctx context.Context, req models.PredictionRequest) ([]models.PricePoint, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+PredictPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "stockai-dashboard/1.0")

	logger.Verbose.Printf("📡 PREDICT: POST %s %s", httpReq.URL, body)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		perr := newPredictionError(resp.StatusCode, errBody)
		logger.Debug.Printf("⚠️  PREDICT: %s returned %d (%s): %s", req.Symbol, resp.StatusCode, perr.Kind, perr.Error())
		return nil, perr
	}

	var points []models.PricePoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, err
	}

	logger.Debug.Printf("✅ PREDICT: %s %dd %s -> %d points", req.Symbol, req.Days, req.Interval, len(points))
	return points, nil
}

// Ping checks that the service answers HTTP at all; the status is ignored
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("prediction service unreachable: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}
