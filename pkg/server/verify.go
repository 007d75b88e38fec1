package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hirotachi/genie-cli-chat/pkg/config"
	"github.com/hirotachi/genie-cli-chat/pkg/genie"
)

const (
	defaultTestText   = "hello"
	notReadyMessage   = "Genie SDK not initialized or credentials missing. Set service principal env vars or pass a token in the request body."
	verifyErrorDetail = "Verification failed due to server error"
)

// Verify checks the Genie credentials with a lightweight question.
func (s *Server) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TestText == "" {
		req.TestText = defaultTestText
	}
	s.Logger.Info().Bool("token", req.Token != "").Msg("verify called")

	svc := s.NewService(r.Context(), req.Token)
	env := s.genieEnv()
	authMethod := nullable(svc.AuthMethod())

	if !svc.Ready() {
		verifyOutcomes.WithLabelValues("not_ready").Inc()
		writeJSON(w, http.StatusOK, VerifyResponse{OK: false, AuthMethod: authMethod, Message: notReadyMessage, Env: env})
		return
	}

	reply, err := svc.Ask(r.Context(), req.TestText, "", "")
	if err != nil {
		s.Logger.Error().Err(err).Msg("error running verification against genie")
		verifyOutcomes.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, verifyErrorDetail)
		return
	}

	if reply.Message == genie.TokenExpired {
		verifyOutcomes.WithLabelValues("token_expired").Inc()
		writeJSON(w, http.StatusOK, VerifyResponse{OK: false, AuthMethod: authMethod, Message: config.TokenExpiredMessage, Env: env})
		return
	}

	verifyOutcomes.WithLabelValues("ok").Inc()
	message := reply.Message
	writeJSON(w, http.StatusOK, VerifyResponse{
		OK:              true,
		AuthMethod:      authMethod,
		WelcomeMessage:  config.WelcomeMessage,
		ResponseMessage: &message,
		ConversationID:  nullable(reply.ConversationID),
		Env:             env,
	})
}

func (s *Server) genieEnv() GenieEnv {
	return GenieEnv{
		Host:         nullable(s.Config.DatabricksHost),
		ClientID:     nullable(s.Config.DatabricksClientID),
		ClientSecret: maskSecret(s.Config.DatabricksClientSecret),
	}
}

// maskSecret keeps the first and last three characters.
func maskSecret(secret string) *string {
	if secret == "" {
		return nil
	}
	masked := "***"
	if len(secret) > 6 {
		masked = secret[:3] + "..." + secret[len(secret)-3:]
	}
	return &masked
}
