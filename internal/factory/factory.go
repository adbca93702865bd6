// Package factory wires the application together.
package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/wordrace/server/internal/dependencies/clock"
	"github.com/wordrace/server/internal/dependencies/random"
	"github.com/wordrace/server/internal/dependencies/scheduler"
	"github.com/wordrace/server/internal/model"
	"github.com/wordrace/server/internal/services/dictionary"
	"github.com/wordrace/server/internal/services/match"
	"github.com/wordrace/server/internal/services/matchmaking"
	"github.com/wordrace/server/internal/services/royale"
	"github.com/wordrace/server/internal/storage"
	"github.com/wordrace/server/internal/storage/memory"
	redisstorage "github.com/wordrace/server/internal/storage/redis"
	"github.com/wordrace/server/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Scheduler scheduler.Scheduler

	// Services
	DictionaryService     *dictionary.Service
	MatchController       *match.Controller
	RoyaleController      *royale.Controller
	MatchmakingController *matchmaking.Controller

	// Transport
	Hub     *ws.Hub
	Gateway *ws.Gateway
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// MatchConfig holds 1v1 engine settings (optional)
	// If zero value, defaults to match.DefaultConfig()
	MatchConfig match.Config
	// RoyaleConfig holds royale engine settings (optional)
	RoyaleConfig royale.Config
	// MatchmakingConfig holds matchmaking settings (optional)
	MatchmakingConfig matchmaking.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()
	sched := scheduler.New()

	return newWithDependencies(store, clk, rnd, sched, engineConfigs(cfg), nil, logger), nil
}

// configs bundles the per-engine settings
type configs struct {
	match       match.Config
	royale      royale.Config
	matchmaking matchmaking.Config
}

// engineConfigs applies defaults for any engine config left at its zero value
func engineConfigs(cfg Config) configs {
	out := configs{
		match:       cfg.MatchConfig,
		royale:      cfg.RoyaleConfig,
		matchmaking: cfg.MatchmakingConfig,
	}
	if out.match.WinningScore == 0 {
		out.match = match.DefaultConfig()
	}
	if out.royale.MaxLobbySize == 0 {
		out.royale = royale.DefaultConfig()
	}
	if out.matchmaking.AcceptTimeout == 0 {
		out.matchmaking = matchmaking.DefaultConfig()
	}
	return out
}

// newWithDependencies creates an App with the given dependencies. A
// nil sink means the engines emit through the hub; tests pass a
// recording sink instead.
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	sched scheduler.Scheduler,
	cfgs configs,
	sink model.Sink,
	logger *slog.Logger,
) *App {
	dictService := dictionary.New(store)
	hub := ws.NewHub(logger)
	if sink == nil {
		sink = hub
	}

	matchController := match.NewController(cfgs.match, sink, dictService, store, clk, rnd, sched, logger)
	royaleController := royale.NewController(cfgs.royale, sink, dictService, store, clk, rnd, sched, logger)
	matchmakingController := matchmaking.NewController(cfgs.matchmaking, sink, matchController, clk, sched, logger)

	gateway := ws.NewGateway(matchController, royaleController, matchmakingController, hub, logger)

	return &App{
		Storage:               store,
		Clock:                 clk,
		Random:                rnd,
		Scheduler:             sched,
		DictionaryService:     dictService,
		MatchController:       matchController,
		RoyaleController:      royaleController,
		MatchmakingController: matchmakingController,
		Hub:                   hub,
		Gateway:               gateway,
	}
}
