package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/wordrace/server/internal/model"
	"github.com/wordrace/server/internal/services/match"
	"github.com/wordrace/server/internal/services/matchmaking"
	"github.com/wordrace/server/internal/services/royale"
)

// Inbound intent names
const (
	intentCreateRoom         = "create_room"
	intentJoinRoom           = "join_room"
	intentJoinRoyale         = "join_royale"
	intentStartRoyale        = "start_royale"
	intentRejoinRoom         = "rejoin_room"
	intentSetName            = "set_name"
	intentPlayerReady        = "player_ready"
	intentSubmitLetter       = "submit_letter"
	intentSubmitWord         = "submit_word"
	intentTyping             = "typing"
	intentTypingStop         = "typing_stop"
	intentRequestRematch     = "request_rematch"
	intentLeaveRoom          = "leave_room"
	intentJoinQueue          = "join_queue"
	intentLeaveQueue         = "leave_queue"
	intentAcceptMatch        = "accept_match"
	intentDeclineMatch       = "decline_match"
	intentRequestOnlineCount = "request_online_count"
)

// royaleKeyPrefix distinguishes royale credentials from 1v1 ones
// ("r_..." vs "p1_..." / "p2_...")
const royaleKeyPrefix = "r_"

// intentData is the union of all inbound payload fields. Each intent
// reads only the fields it needs; unknown fields are ignored.
type intentData struct {
	Code        model.RoomCode  `json:"code"`
	PlayerKey   model.PlayerKey `json:"playerKey"`
	Name        string          `json:"name"`
	Mode        model.GameMode  `json:"mode"`
	Letter      string          `json:"letter"`
	Word        string          `json:"word"`
	TotalRounds int             `json:"totalRounds"`
	MatchID     model.MatchID   `json:"matchId"`
}

// Registry is the connection-facing surface the gateway emits through.
// The Hub implements it.
type Registry interface {
	model.Sink
	Count() int
}

// Gateway demultiplexes inbound intents to the right engine and maps
// engine rejections to user-facing error events
type Gateway struct {
	match       match.ControllerInterface
	royale      royale.ControllerInterface
	matchmaking matchmaking.ControllerInterface
	hub         Registry
	logger      *slog.Logger
}

// NewGateway creates a new Gateway
func NewGateway(
	matchController match.ControllerInterface,
	royaleController royale.ControllerInterface,
	matchmakingController matchmaking.ControllerInterface,
	hub Registry,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		match:       matchController,
		royale:      royaleController,
		matchmaking: matchmakingController,
		hub:         hub,
		logger:      logger.With(slog.String("component", "ws-gateway")),
	}
}

// HandleMessage decodes one inbound frame and routes it
func (g *Gateway) HandleMessage(ctx context.Context, conn model.ConnID, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.logger.Warn("undecodable frame", slog.String("conn", string(conn)))
		g.sendError(conn, "Invalid message")
		return
	}

	var data intentData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			g.logger.Warn("undecodable intent payload",
				slog.String("conn", string(conn)), slog.String("intent", env.Type))
			g.sendError(conn, "Invalid message")
			return
		}
	}

	switch env.Type {
	case intentCreateRoom:
		if data.Mode == model.ModeRoyale {
			g.surface(conn, g.royale.CreateLobby(ctx, conn, data.Name))
		} else {
			g.surface(conn, g.match.CreateRoom(ctx, conn))
		}

	case intentJoinRoom:
		if data.Mode == model.ModeRoyale {
			g.surface(conn, g.royale.JoinByCode(ctx, conn, data.Code, data.Name))
		} else {
			g.surface(conn, g.match.JoinRoom(ctx, conn, data.Code, data.Name))
		}

	case intentJoinRoyale:
		if data.Code == "" {
			g.surface(conn, g.royale.JoinRandom(ctx, conn, data.Name))
		} else {
			g.surface(conn, g.royale.JoinByCode(ctx, conn, data.Code, data.Name))
		}

	case intentStartRoyale:
		g.surface(conn, g.royale.Start(ctx, conn, data.Code, data.TotalRounds))

	case intentRejoinRoom:
		var err error
		if isRoyaleKey(data.PlayerKey) {
			err = g.royale.RejoinLobby(ctx, conn, data.Code, data.PlayerKey)
		} else {
			err = g.match.RejoinRoom(ctx, conn, data.Code, data.PlayerKey)
		}
		g.surfaceRejoin(conn, err)

	case intentSetName:
		if isRoyaleKey(data.PlayerKey) {
			g.surface(conn, g.royale.SetName(ctx, conn, data.Code, data.PlayerKey, data.Name))
		} else {
			g.surface(conn, g.match.SetName(ctx, conn, data.Code, data.PlayerKey, data.Name))
		}

	case intentPlayerReady:
		g.surface(conn, g.match.PlayerReady(ctx, conn, data.Code, data.PlayerKey))

	case intentSubmitLetter:
		g.surface(conn, g.match.SubmitLetter(ctx, conn, data.Code, data.PlayerKey, data.Letter))

	case intentSubmitWord:
		if isRoyaleKey(data.PlayerKey) {
			g.surface(conn, g.royale.SubmitWord(ctx, conn, data.Code, data.PlayerKey, data.Word))
		} else {
			g.surface(conn, g.match.SubmitWord(ctx, conn, data.Code, data.PlayerKey, data.Word))
		}

	case intentTyping:
		g.surface(conn, g.match.Typing(ctx, conn, data.Code, data.PlayerKey, true))

	case intentTypingStop:
		g.surface(conn, g.match.Typing(ctx, conn, data.Code, data.PlayerKey, false))

	case intentRequestRematch:
		if isRoyaleKey(data.PlayerKey) {
			g.surface(conn, g.royale.PlayAgain(ctx, conn, data.Code, data.PlayerKey))
		} else {
			g.surface(conn, g.match.RequestRematch(ctx, conn, data.Code, data.PlayerKey))
		}

	case intentLeaveRoom:
		err := g.match.LeaveRoom(ctx, conn, data.Code)
		if errors.Is(err, model.ErrRoomNotFound) {
			// Leaving is best-effort either way
			_ = g.royale.LeaveLobby(ctx, conn, data.Code)
		}

	case intentJoinQueue:
		g.surface(conn, g.matchmaking.JoinQueue(ctx, conn))

	case intentLeaveQueue:
		g.surface(conn, g.matchmaking.LeaveQueue(ctx, conn))

	case intentAcceptMatch:
		g.surface(conn, g.matchmaking.Accept(ctx, conn, data.MatchID))

	case intentDeclineMatch:
		g.surface(conn, g.matchmaking.Decline(ctx, conn, data.MatchID))

	case intentRequestOnlineCount:
		g.hub.ToConn(conn, model.Event{
			Type:    model.EventOnlineCount,
			Payload: model.OnlineCountPayload{Count: g.hub.Count()},
		})

	default:
		g.logger.Debug("unknown intent dropped",
			slog.String("conn", string(conn)), slog.String("intent", env.Type))
	}
}

// HandleDisconnect tells every engine the connection is gone
func (g *Gateway) HandleDisconnect(ctx context.Context, conn model.ConnID) {
	g.matchmaking.Disconnect(ctx, conn)
	g.match.Disconnect(ctx, conn)
	g.royale.Disconnect(ctx, conn)
}

// surface maps an engine rejection to a user-facing error event. A nil
// error means the intent was handled (or silently dropped).
func (g *Gateway) surface(conn model.ConnID, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		g.sendError(conn, "Room not found!")
	case errors.Is(err, model.ErrRoomFull):
		g.sendError(conn, "Room is full!")
	case errors.Is(err, model.ErrLobbyFull):
		g.sendError(conn, "Lobby is full!")
	case errors.Is(err, model.ErrAlreadyJoined):
		g.sendError(conn, "Already in room!")
	case errors.Is(err, model.ErrGameInProgress):
		g.sendError(conn, "Game already in progress!")
	case errors.Is(err, model.ErrNotHost):
		g.sendError(conn, "Only the host can do that")
	case errors.Is(err, model.ErrInsufficientPlayers):
		g.sendError(conn, "Need at least 2 players")
	default:
		g.logger.Error("intent failed",
			slog.String("conn", string(conn)), slog.Any("error", err))
		g.sendError(conn, "Something went wrong")
	}
}

// surfaceRejoin maps rejoin failures to the dedicated rejoin_failed
// event so clients can fall back to a fresh join
func (g *Gateway) surfaceRejoin(conn model.ConnID, err error) {
	if err == nil {
		return
	}

	message := "Room no longer exists"
	if errors.Is(err, model.ErrInvalidSession) {
		message = "Invalid session"
	}
	g.hub.ToConn(conn, model.Event{
		Type:    model.EventRejoinFailed,
		Payload: model.ErrorMessagePayload{Message: message},
	})
}

func (g *Gateway) sendError(conn model.ConnID, message string) {
	g.hub.ToConn(conn, model.Event{
		Type:    model.EventErrorMessage,
		Payload: model.ErrorMessagePayload{Message: message},
	})
}

func isRoyaleKey(key model.PlayerKey) bool {
	return strings.HasPrefix(string(key), royaleKeyPrefix)
}
