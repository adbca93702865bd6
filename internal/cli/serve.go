package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wordrace/server/internal/api"
	"github.com/wordrace/server/internal/factory"
	redisstorage "github.com/wordrace/server/internal/storage/redis"
)

type serveOptions struct {
	host           string
	port           int
	dictionaryPath string
	storageType    string
	redisURL       string
	verbose        bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	defaultPort := 8080
	if raw := os.Getenv("WORDRACE_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			defaultPort = parsed
		}
	}

	cmd.Flags().StringVar(&opts.host, "host", os.Getenv("WORDRACE_HOST"), "Listen host (env: WORDRACE_HOST)")
	cmd.Flags().IntVar(&opts.port, "port", defaultPort, "Listen port (env: WORDRACE_PORT)")
	cmd.Flags().StringVar(&opts.dictionaryPath, "dictionary", getEnvOrDefault("WORDRACE_DICTIONARY", "data/words.txt"), "Dictionary file path (env: WORDRACE_DICTIONARY)")
	cmd.Flags().StringVar(&opts.storageType, "storage", getEnvOrDefault("STORAGE_TYPE", factory.StorageTypeMemory), "Storage backend: memory, redis (env: STORAGE_TYPE)")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis connection URL (env: REDIS_URL)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func runServe(opts *serveOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg := factory.Config{
		Logger:      logger,
		StorageType: opts.storageType,
	}

	if cfg.StorageType == factory.StorageTypeRedis {
		if opts.redisURL == "" {
			return errors.New("redis URL required when storage is redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = opts.redisURL
		cfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(cfg)
	if err != nil {
		return err
	}

	// Storage may already hold the word set; fall back to the file
	if err := app.DictionaryService.LoadFromStorage(context.Background()); err != nil {
		if err := app.DictionaryService.LoadFromFile(context.Background(), opts.dictionaryPath); err != nil {
			logger.Warn("could not load dictionary",
				slog.String("path", opts.dictionaryPath),
				slog.String("error", err.Error()))
		}
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:                logger,
		Storage:               app.Storage,
		Hub:                   app.Hub,
		Gateway:               app.Gateway,
		MatchController:       app.MatchController,
		RoyaleController:      app.RoyaleController,
		MatchmakingController: app.MatchmakingController,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = opts.host
	serverConfig.Port = opts.port
	server := api.NewServer(router, serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
