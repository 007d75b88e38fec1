package server

import (
	"encoding/json"
	"net/http"
)

// GenieRequest is the body of the message endpoint.
type GenieRequest struct {
	Text           string `json:"text"`
	SpaceID        string `json:"spaceId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Token          string `json:"token,omitempty"`
}

type Attachment struct {
	AttachmentID string  `json:"attachment_id"`
	Text         *string `json:"text"`
}

type MessageResponse struct {
	ConversationID      string                 `json:"conversationId"`
	Message             string                 `json:"message"`
	StatusMessage       string                 `json:"statusMessage"`
	SwitchingMessage    string                 `json:"switchingMessage"`
	QueryDescription    *string                `json:"queryDescription"`
	QueryResultMetadata map[string]interface{} `json:"queryResultMetadata"`
	Attachments         []Attachment           `json:"attachments"`
	Env                 GenieEnv               `json:"env"`
}

// VerifyRequest is the body of the verify endpoint. Token is only used when the server has
// no service principal of its own.
type VerifyRequest struct {
	Token    string `json:"token,omitempty"`
	TestText string `json:"testText,omitempty"`
}

type VerifyResponse struct {
	OK              bool     `json:"ok"`
	AuthMethod      *string  `json:"auth_method"`
	Message         string   `json:"message,omitempty"`
	WelcomeMessage  string   `json:"welcome_message,omitempty"`
	ResponseMessage *string  `json:"response_message,omitempty"`
	ConversationID  *string  `json:"conversationId,omitempty"`
	Env             GenieEnv `json:"env"`
}

// GenieEnv lists the settings Genie calls depend on, with the secret masked.
type GenieEnv struct {
	Host         *string `json:"DATABRICKS_HOST"`
	ClientID     *string `json:"DATABRICKS_CLIENT_ID"`
	ClientSecret *string `json:"DATABRICKS_CLIENT_SECRET"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
