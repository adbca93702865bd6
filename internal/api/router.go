package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wordrace/server/internal/middleware"
	"github.com/wordrace/server/internal/model"
	"github.com/wordrace/server/internal/services/match"
	"github.com/wordrace/server/internal/services/matchmaking"
	"github.com/wordrace/server/internal/services/royale"
	"github.com/wordrace/server/internal/storage"
	"github.com/wordrace/server/internal/ws"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// RouterConfig holds everything the HTTP layer reads from
type RouterConfig struct {
	Logger                *slog.Logger
	Storage               storage.Storage
	Hub                   *ws.Hub
	Gateway               *ws.Gateway
	MatchController       match.ControllerInterface
	RoyaleController      royale.ControllerInterface
	MatchmakingController matchmaking.ControllerInterface
}

// statsResponse is the live process snapshot
type statsResponse struct {
	Online           int   `json:"online"`
	Rooms            int   `json:"rooms"`
	RoyaleLobbies    int   `json:"royaleLobbies"`
	QueueLength      int   `json:"queueLength"`
	MatchesCompleted int64 `json:"matchesCompleted"`
}

// recentMatchesResponse wraps the summary feed
type recentMatchesResponse struct {
	Matches []*model.MatchSummary `json:"matches"`
}

// NewRouter creates the HTTP router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger, middleware.DefaultPanicHandler))
	r.Use(middleware.Logging(cfg.Logger))

	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/stats", statsHandler(cfg)).Methods(http.MethodGet)
	api.HandleFunc("/matches/recent", recentMatchesHandler(cfg)).Methods(http.MethodGet)

	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(cfg.Hub, cfg.Gateway, cfg.Logger, w, req)
	}).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		completed, err := cfg.Storage.MatchesCompleted(r.Context())
		if err != nil {
			cfg.Logger.Error("failed to read completed-match count", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{
			Online:           cfg.Hub.Count(),
			Rooms:            cfg.MatchController.RoomCount(),
			RoyaleLobbies:    cfg.RoyaleController.LobbyCount(),
			QueueLength:      cfg.MatchmakingController.QueueLen(),
			MatchesCompleted: completed,
		})
	}
}

func recentMatchesHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRecentLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
				return
			}
			limit = parsed
		}
		if limit > maxRecentLimit {
			limit = maxRecentLimit
		}

		summaries, err := cfg.Storage.RecentMatchSummaries(r.Context(), limit)
		if err != nil {
			cfg.Logger.Error("failed to read match summaries", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
			return
		}
		if summaries == nil {
			summaries = []*model.MatchSummary{}
		}

		writeJSON(w, http.StatusOK, recentMatchesResponse{Matches: summaries})
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
