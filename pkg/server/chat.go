package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hirotachi/genie-cli-chat/pkg/config"
)

// Message proxies one chat question to Genie.
func (s *Server) Message(w http.ResponseWriter, r *http.Request) {
	var req GenieRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	s.Logger.Info().
		Str("space_id", req.SpaceID).
		Str("conversation_id", req.ConversationID).
		Int("text_len", len(req.Text)).
		Msg("message received")

	svc := s.NewService(r.Context(), req.Token)
	reply, err := svc.Ask(r.Context(), req.Text, req.SpaceID, req.ConversationID)
	if err != nil {
		s.Logger.Error().Err(err).Msg("error handling genie message")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := MessageResponse{
		ConversationID:      reply.ConversationID,
		Message:             reply.Message,
		StatusMessage:       config.WaitingMessage,
		SwitchingMessage:    config.SwitchingMessage,
		QueryDescription:    reply.QueryDescription,
		QueryResultMetadata: reply.QueryResultMetadata,
		Env:                 s.genieEnv(),
	}
	for _, a := range reply.Attachments {
		resp.Attachments = append(resp.Attachments, Attachment{AttachmentID: a.AttachmentID, Text: a.Text})
	}
	messagesProxied.Inc()
	writeJSON(w, http.StatusOK, resp)
}
