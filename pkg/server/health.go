package server

import (
	"context"
	"net/http"
	"time"
)

type Check struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Genie     string           `json:"genie"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	status, code := "healthy", http.StatusOK

	start := time.Now()
	if err := s.RedisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = Check{Status: "fail", Message: "connection failed"}
		status, code = "degraded", http.StatusServiceUnavailable
	} else {
		checks["redis"] = Check{Status: "pass", Latency: time.Since(start).String()}
	}

	genieMode := "stub"
	if method := s.NewService(ctx, "").AuthMethod(); method != "" {
		genieMode = method
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Genie:     genieMode,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
