// Package genie is a small server-side wrapper around the Databricks Genie conversation API.
//
// A Service authenticates with a service principal when client credentials are configured
// and falls back to a bearer token. With neither it runs in stub mode and echoes the
// question back, so the chat keeps working without a workspace.
package genie

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	AuthServicePrincipal = "service_principal"
	AuthOAuth            = "oauth"

	TokenExpired = "TOKEN_EXPIRED"
	FailureReply = "An error occurred while processing your request."

	stubConversation = "stub"
	tokenPath        = "/oidc/v1/token"
)

var ErrNoSpace = errors.New("no genie space configured")

// Credentials are the inputs NewService picks an auth method from.
type Credentials struct {
	Host         string
	ClientID     string
	ClientSecret string
	Token        string
	SpaceID      string
}

type Attachment struct {
	AttachmentID string  `json:"attachment_id"`
	Text         *string `json:"text"`
}

// Reply is the trimmed-down answer handed to the HTTP layer.
type Reply struct {
	ConversationID      string
	Message             string
	QueryDescription    *string
	QueryResultMetadata map[string]interface{}
	Attachments         []Attachment
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithPollInterval sets how often a pending message is re-read.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) { s.pollInterval = d }
}

// WithHTTPClient sets the transport under the auth layer.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) { s.baseClient = client }
}

type Service struct {
	spaceID      string
	authMethod   string
	api          *restClient
	logger       zerolog.Logger
	pollInterval time.Duration
	baseClient   *http.Client
}

// NewService picks service principal auth first, then the token. ctx is used when
// fetching OAuth tokens.
func NewService(ctx context.Context, creds Credentials, opts ...Option) *Service {
	s := &Service{
		spaceID:      creds.SpaceID,
		logger:       zerolog.Nop(),
		pollInterval: time.Second,
		baseClient:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}

	host := strings.TrimRight(creds.Host, "/")
	if host == "" {
		s.logger.Info().Msg("DATABRICKS_HOST not set; genie running in stub mode")
		return s
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.baseClient)

	switch {
	case creds.ClientID != "" && creds.ClientSecret != "":
		cc := &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     host + tokenPath,
			Scopes:       []string{"all-apis"},
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		s.api = &restClient{host: host, httpClient: cc.Client(ctx)}
		s.authMethod = AuthServicePrincipal
	case creds.Token != "":
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token, TokenType: "Bearer"})
		s.api = &restClient{host: host, httpClient: oauth2.NewClient(ctx, src)}
		s.authMethod = AuthOAuth
	default:
		s.logger.Info().Msg("genie not initialized; no credentials available")
	}
	return s
}

// Ready reports whether real Genie calls will be made.
func (s *Service) Ready() bool {
	return s.api != nil
}

// AuthMethod is "" in stub mode.
func (s *Service) AuthMethod() string {
	return s.authMethod
}

// Ask sends text to Genie and waits for the answer. API failures come back as reply
// messages (TokenExpired on 403); only a cancelled ctx is returned as an error.
func (s *Service) Ask(ctx context.Context, text, spaceID, conversationID string) (*Reply, error) {
	if !s.Ready() {
		if conversationID == "" {
			conversationID = stubConversation
		}
		return &Reply{ConversationID: conversationID, Message: "(stub) " + text}, nil
	}
	if spaceID == "" {
		spaceID = s.spaceID
	}

	reply, err := s.ask(ctx, text, spaceID, conversationID)
	if err == nil {
		return reply, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("asking genie: %w", ctx.Err())
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		s.logger.Warn().Err(err).Msg("permission denied from genie; token may be expired")
		return &Reply{ConversationID: conversationID, Message: TokenExpired}, nil
	}
	s.logger.Error().Err(err).Msg("error while calling genie")
	return &Reply{ConversationID: conversationID, Message: FailureReply}, nil
}

func (s *Service) ask(ctx context.Context, text, spaceID, conversationID string) (*Reply, error) {
	if spaceID == "" {
		return nil, ErrNoSpace
	}

	var messageID string
	if conversationID == "" {
		started, err := s.api.startConversation(ctx, spaceID, text)
		if err != nil {
			return nil, err
		}
		conversationID = started.ConversationID
		messageID = started.MessageID
		if messageID == "" && started.Message != nil {
			messageID = started.Message.id()
		}
	} else {
		created, err := s.api.createMessage(ctx, spaceID, conversationID, text)
		if err != nil {
			return nil, err
		}
		messageID = created.id()
	}

	msg, err := s.wait(ctx, spaceID, conversationID, messageID)
	if err != nil {
		return nil, err
	}
	return toReply(msg, conversationID), nil
}

// wait polls until the message reaches a terminal status.
func (s *Service) wait(ctx context.Context, spaceID, conversationID, messageID string) (*message, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		msg, err := s.api.getMessage(ctx, spaceID, conversationID, messageID)
		if err != nil {
			return nil, err
		}
		if terminal(msg.Status) {
			if msg.Status != statusCompleted && msg.Error != nil {
				s.logger.Warn().Str("status", msg.Status).Str("error", msg.Error.Error).Msg("genie message did not complete")
			}
			return msg, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func toReply(msg *message, conversationID string) *Reply {
	if msg.ConversationID != "" {
		conversationID = msg.ConversationID
	}
	reply := &Reply{ConversationID: conversationID, Message: msg.Content}
	for _, a := range msg.Attachments {
		attachment := Attachment{AttachmentID: a.AttachmentID}
		if a.Text != nil {
			content := a.Text.Content
			attachment.Text = &content
		}
		reply.Attachments = append(reply.Attachments, attachment)

		if a.Query != nil && reply.QueryDescription == nil {
			description := a.Query.Description
			reply.QueryDescription = &description
			reply.QueryResultMetadata = a.Query.QueryResultMetadata
		}
	}
	return reply
}
