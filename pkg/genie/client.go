package genie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// APIError is a non-2xx answer from the Genie REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genie api error %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type messageRequest struct {
	Content string `json:"content"`
}

type startConversationResponse struct {
	ConversationID string   `json:"conversation_id"`
	MessageID      string   `json:"message_id"`
	Message        *message `json:"message,omitempty"`
}

type message struct {
	ID             string              `json:"id"`
	MessageID      string              `json:"message_id"`
	ConversationID string              `json:"conversation_id"`
	Content        string              `json:"content"`
	Status         string              `json:"status"`
	Attachments    []messageAttachment `json:"attachments,omitempty"`
	Error          *messageError       `json:"error,omitempty"`
}

func (m *message) id() string {
	if m.MessageID != "" {
		return m.MessageID
	}
	return m.ID
}

type messageAttachment struct {
	AttachmentID string `json:"attachment_id"`
	Text         *struct {
		Content string `json:"content"`
	} `json:"text,omitempty"`
	Query *struct {
		Description         string                 `json:"description"`
		Query               string                 `json:"query"`
		QueryResultMetadata map[string]interface{} `json:"query_result_metadata,omitempty"`
	} `json:"query,omitempty"`
}

type messageError struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

const (
	statusCompleted = "COMPLETED"
	statusFailed    = "FAILED"
	statusCancelled = "CANCELLED"
	statusExpired   = "QUERY_RESULT_EXPIRED"
)

func terminal(status string) bool {
	switch status {
	case statusCompleted, statusFailed, statusCancelled, statusExpired:
		return true
	}
	return false
}

// restClient covers the three Genie calls a conversation needs.
type restClient struct {
	host       string
	httpClient *http.Client
}

func spacePath(spaceID string) string {
	return "/api/2.0/genie/spaces/" + url.PathEscape(spaceID)
}

func (c *restClient) startConversation(ctx context.Context, spaceID, text string) (*startConversationResponse, error) {
	var out startConversationResponse
	err := c.do(ctx, http.MethodPost, spacePath(spaceID)+"/start-conversation", messageRequest{Content: text}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restClient) createMessage(ctx context.Context, spaceID, conversationID, text string) (*message, error) {
	var out message
	path := fmt.Sprintf("%s/conversations/%s/messages", spacePath(spaceID), url.PathEscape(conversationID))
	if err := c.do(ctx, http.MethodPost, path, messageRequest{Content: text}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restClient) getMessage(ctx context.Context, spaceID, conversationID, messageID string) (*message, error) {
	var out message
	path := fmt.Sprintf("%s/conversations/%s/messages/%s", spacePath(spaceID), url.PathEscape(conversationID), url.PathEscape(messageID))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not marshal genie request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, body)
	if err != nil {
		return fmt.Errorf("could not build genie request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("genie %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read genie response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("could not decode genie response: %w", err)
	}
	return nil
}
