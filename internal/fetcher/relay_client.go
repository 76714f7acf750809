package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"contactrelay/internal/model"
)

// RelayClient forwards a submission to the relay service as JSON.
type RelayClient struct {
	http   *http.Client
	url    string
	logger *zap.Logger
}

func NewRelayClient(httpClient *http.Client, url string, logger *zap.Logger) *RelayClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RelayClient{http: httpClient, url: url, logger: logger}
}

// Submit posts sub and maps the relay's answer onto a response for the
// caller. A 200 is success regardless of body; anything else is a failure.
func (c *RelayClient) Submit(ctx context.Context, sub model.ContactSubmission) model.RelayResponse {
	body, err := json.Marshal(sub)
	if err != nil {
		return model.RelayResponse{Success: false, Message: fmt.Sprintf("Error encoding submission: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return model.RelayResponse{Success: false, Message: fmt.Sprintf("Error connecting to email service: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Relay request failed", zap.String("url", c.url), zap.Error(err))
		return model.RelayResponse{Success: false, Message: fmt.Sprintf("Error connecting to email service: %v", err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK {
		return model.RelayResponse{Success: true, Message: "Message sent successfully!"}
	}

	c.logger.Warn("Relay rejected submission", zap.String("url", c.url), zap.Int("status", resp.StatusCode))
	return model.RelayResponse{Success: false, Message: "Failed to send email from relay service."}
}
