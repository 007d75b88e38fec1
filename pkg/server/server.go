package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/hirotachi/genie-cli-chat/pkg/config"
	"github.com/hirotachi/genie-cli-chat/pkg/genie"
	"github.com/hirotachi/genie-cli-chat/pkg/utils"
)

const (
	maxBodySize     = 8 * 1024
	shutdownTimeout = 10 * time.Second
)

// ServiceFactory builds the Genie service for one request; token is the caller's optional
// credential.
type ServiceFactory func(ctx context.Context, token string) *genie.Service

type Server struct {
	Config      *config.Config
	RedisClient *redis.Client
	Logger      zerolog.Logger
	NewService  ServiceFactory
	limiter     *RateLimiter
}

func NewServer(cfg *config.Config, redisClient *redis.Client, logger zerolog.Logger) *Server {
	s := &Server{
		Config:      cfg,
		RedisClient: redisClient,
		Logger:      logger,
		limiter:     NewRateLimiter(redisClient, logger),
	}
	s.NewService = func(ctx context.Context, token string) *genie.Service {
		if cfg.AuthMethod == genie.AuthServicePrincipal {
			token = ""
		}
		return genie.NewService(ctx, genie.Credentials{
			Host:         cfg.DatabricksHost,
			ClientID:     cfg.DatabricksClientID,
			ClientSecret: cfg.DatabricksClientSecret,
			Token:        token,
			SpaceID:      cfg.GenieSpaceID,
		}, genie.WithLogger(logger))
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(Metrics)
	r.Use(chimw.RequestID)
	if s.Config.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(Logger(s.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(maxBodySize))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(s.Config.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", s.Health)

	r.With(s.limiter.Limit("verify", 10, time.Minute)).Post(utils.VerifyPath, s.Verify)
	r.With(s.limiter.Limit("message", 30, time.Minute)).Post(utils.MessagePath, s.Message)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", s.Config.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", srv.Addr).Msg("genie server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
