package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"datacheck/domain/core"
	"datacheck/domain/loan"
	"datacheck/internal/errors"
	"datacheck/ports"

	"github.com/rs/zerolog"
)

const serviceName = "prediction"

// Client posts submissions to the prediction service. Requests carry no
// timeout and are never retried.
type Client struct {
	URL    string
	HTTP   *http.Client
	logger zerolog.Logger
}

var _ ports.Predictor = (*Client)(nil)

// NewClient creates a client for the endpoint at rawURL
func NewClient(rawURL string, logger zerolog.Logger) *Client {
	return &Client{
		URL:    strings.TrimSpace(rawURL),
		HTTP:   &http.Client{},
		logger: logger.With().Str("component", "scoring").Logger(),
	}
}

// Predict posts a JSON payload and decodes the service's response
func (c *Client) Predict(ctx context.Context, payload []byte) (*loan.Response, error) {
	respRaw, status, err := c.post(ctx, "application/json", payload)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("http %d: %s", status, truncate(respRaw)))
	}

	var decoded loan.Response
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("unmarshal response: %w", err))
	}
	return &decoded, nil
}

// SubmitBatch posts headerless CSV records as the form field "data". The
// response body is read and discarded; a non-2xx status is only logged.
func (c *Client) SubmitBatch(ctx context.Context, records []byte) error {
	form := url.Values{"data": {string(records)}}
	respRaw, status, err := c.post(ctx, "application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		c.logger.Warn().Int("status", status).Str("body", truncate(respRaw)).Msg("batch submission rejected")
	}
	return nil
}

func (c *Client) post(ctx context.Context, contentType string, body []byte) ([]byte, int, error) {
	if c.URL == "" {
		return nil, 0, errors.ConfigInvalid("PREDICTION_URL is not set")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, errors.ConfigInvalid(fmt.Sprintf("build request: %v", err))
	}
	requestID := core.NewRequestID()
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("X-Request-ID", requestID.String())

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, 0, errors.ExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.ExternalServiceError(serviceName, fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug().
		Str("request_id", requestID.String()).
		Int("status", resp.StatusCode).
		Int("request_bytes", len(body)).
		Int("response_bytes", len(respRaw)).
		Msg("prediction service called")
	return respRaw, resp.StatusCode, nil
}

func truncate(raw []byte) string {
	const limit = 200
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
