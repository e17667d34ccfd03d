package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gojektech/heimdall/v6/httpclient"
	"go.uber.org/zap"
)

// Target names the endpoint a payload goes to.
type Target struct {
	Method string
	Path   string
}

// Result is what the persistence API reported.
type Result struct {
	OK     bool
	Status int
	Error  string
	Body   []byte
}

// Collaborator accepts a payload and reports success or a readable error.
type Collaborator interface {
	Submit(ctx context.Context, target Target, payload Payload) Result
}

// HTTPClient posts payloads to the portal API. It never retries; a failed
// submission is retried by the user.
type HTTPClient struct {
	baseURL string
	client  *httpclient.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: httpclient.NewClient(
			httpclient.WithHTTPTimeout(timeout),
			httpclient.WithRetryCount(0),
		),
		logger: logger.With(zap.String("component", "submission")),
	}
}

func (c *HTTPClient) Submit(ctx context.Context, target Target, payload Payload) Result {
	body, contentType, err := payload.Body()
	if err != nil {
		return Result{Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, target.Method, c.baseURL+target.Path, body)
	if err != nil {
		return Result{Error: err.Error()}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	// heimdall reports 5xx as an error alongside the response.
	resp, err := c.client.Do(req)
	if resp == nil {
		c.logger.Warn("submit failed", zap.String("path", target.Path), zap.Error(err))
		return Result{Error: fmt.Sprintf("portal unreachable: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: resp.StatusCode, Error: fmt.Sprintf("read response: %v", err)}
	}

	res := Result{Status: resp.StatusCode, Body: respBody}
	if resp.StatusCode >= http.StatusBadRequest {
		res.Error = errorMessage(resp.StatusCode, respBody)
		c.logger.Info("submit rejected",
			zap.String("path", target.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", res.Error))
		return res
	}

	res.OK = true
	c.logger.Info("submitted",
		zap.String("path", target.Path),
		zap.String("encoding", string(payload.Encoding())),
		zap.Int("status", resp.StatusCode))
	return res
}

// Fetch loads a record for the edit flow.
func (c *HTTPClient) Fetch(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if resp == nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fetch %s: %s", path, errorMessage(resp.StatusCode, body))
	}
	return json.Unmarshal(body, out)
}

func errorMessage(status int, body []byte) string {
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		return resp.Message
	}
	return http.StatusText(status)
}
