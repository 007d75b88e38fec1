package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hirotachi/genie-cli-chat/pkg/verify"
)

const requestTimeout = 60 * time.Second

// Connection talks to the genie server over HTTP.
type Connection struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewConnection(baseURL string) *Connection {
	return &Connection{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

// Verify posts req to the verify endpoint and hands back the status and raw body untouched.
func (c *Connection) Verify(ctx context.Context, req verify.Request) (int, []byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, nil, fmt.Errorf("could not marshal verify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+verify.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("could not build verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to call %s: %w", verify.Endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read verify response: %w", err)
	}
	return resp.StatusCode, body, nil
}
