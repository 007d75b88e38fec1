package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alicebob/miniredis"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hirotachi/genie-cli-chat/pkg/config"
	"github.com/hirotachi/genie-cli-chat/pkg/server"
	"github.com/hirotachi/genie-cli-chat/pkg/utils"
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "genie-server",
		Short:         "Serve the Genie verify and message endpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}
	rootCmd.Flags().StringVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = utils.NewConsoleLogger(os.Stdout)
	} else {
		logger = utils.NewJSONLogger(os.Stdout)
	}

	redisClient, cleanup, err := connectRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.NewServer(cfg, redisClient, logger)
	return srv.Run(ctx)
}

// connectRedis dials REDIS_URL, or starts a temporary in-memory redis when it is unset.
func connectRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, func(), error) {
	var opts *redis.Options
	stop := func() {}

	if cfg.RedisURL == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("error creating redis db: %w", err)
		}
		logger.Warn().Str("addr", mr.Addr()).Msg("REDIS_URL not set; using temporary in-memory redis")
		opts = &redis.Options{Addr: mr.Addr()}
		stop = mr.Close
	} else {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	}

	redisClient := redis.NewClient(opts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		stop()
		return nil, nil, fmt.Errorf("cannot connect to redis db: %w", err)
	}
	return redisClient, func() {
		redisClient.Close()
		stop()
	}, nil
}
