// Package royale implements the N-player lobby state machine. Unlike
// the 1v1 variant there is no letter pick: each round both letters are
// randomly assigned, identical for every player, and submissions are
// scored by arrival rank. Clients are pure renderers of the full-state
// snapshot broadcast after every change.
package royale

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wordrace/server/internal/deadline"
	"github.com/wordrace/server/internal/dependencies/clock"
	"github.com/wordrace/server/internal/dependencies/random"
	"github.com/wordrace/server/internal/dependencies/scheduler"
	"github.com/wordrace/server/internal/model"
	"github.com/wordrace/server/internal/services/dictionary"
	"github.com/wordrace/server/internal/services/rules"
	"github.com/wordrace/server/internal/storage"
)

const (
	lobbyCodeLength   = 6
	lobbyCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	playerKeyLength   = 18
	playerKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type lobbyState struct {
	lobby      *model.RoyaleLobby
	phaseTimer *deadline.Slot
}

// Controller manages all live royale lobbies
type Controller struct {
	cfg     Config
	sink    model.Sink
	dict    dictionary.Checker
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	sched   scheduler.Scheduler
	logger  *slog.Logger

	mu      sync.Mutex
	lobbies map[model.RoomCode]*lobbyState
	conns   map[model.ConnID]model.RoomCode
}

// NewController creates a new royale Controller
func NewController(
	cfg Config,
	sink model.Sink,
	dict dictionary.Checker,
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	sched scheduler.Scheduler,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		cfg:     cfg,
		sink:    sink,
		dict:    dict,
		storage: storage,
		clock:   clock,
		random:  random,
		sched:   sched,
		logger:  logger,
		lobbies: make(map[model.RoomCode]*lobbyState),
		conns:   make(map[model.ConnID]model.RoomCode),
	}
}

// CreateLobby creates a fresh lobby with the caller as host
func (c *Controller) CreateLobby(ctx context.Context, conn model.ConnID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls := c.newLobbyLocked()
	c.addPlayerLocked(ls, conn, name, true)

	c.logger.Info("royale lobby created", slog.String("code", string(ls.lobby.Code)))
	return nil
}

// JoinRandom joins any open lobby with capacity, creating one if none
// exists. The first player to join a fresh lobby becomes its host.
func (c *Controller) JoinRandom(ctx context.Context, conn model.ConnID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ls := range c.lobbies {
		if ls.lobby.Phase == model.PhaseLobby && len(ls.lobby.Players) < c.cfg.MaxLobbySize {
			c.addPlayerLocked(ls, conn, name, false)
			return nil
		}
	}

	ls := c.newLobbyLocked()
	c.addPlayerLocked(ls, conn, name, true)
	c.logger.Info("royale lobby created for random join", slog.String("code", string(ls.lobby.Code)))
	return nil
}

// JoinByCode joins a specific lobby. Only lobbies still in the LOBBY
// phase accept new players.
func (c *Controller) JoinByCode(ctx context.Context, conn model.ConnID, code model.RoomCode, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.lobbies[normalizeCode(code)]
	if !ok {
		return model.ErrRoomNotFound
	}
	if ls.lobby.Phase != model.PhaseLobby {
		return model.ErrGameInProgress
	}
	if len(ls.lobby.Players) >= c.cfg.MaxLobbySize {
		return model.ErrLobbyFull
	}

	c.addPlayerLocked(ls, conn, name, false)
	return nil
}

// RejoinLobby rebinds a credential holder to a new connection. Works in
// any phase; a mid-game rejoiner resumes their roster entry.
func (c *Controller) RejoinLobby(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.lobbies[normalizeCode(code)]
	if !ok {
		return model.ErrRoomGone
	}
	player := ls.lobby.PlayerByKey(key)
	if player == nil {
		return model.ErrInvalidSession
	}

	player.Conn = conn
	player.Connected = true
	c.conns[conn] = ls.lobby.Code
	ls.lobby.UpdatedAt = c.clock.Now()

	c.sink.ToConn(conn, model.Event{Type: model.EventRejoinedRoom, Payload: model.RejoinedRoomPayload{
		Code:      ls.lobby.Code,
		Mode:      model.ModeRoyale,
		PlayerKey: player.Key,
	}})
	c.broadcastStateLocked(ls)
	return nil
}

// SetName updates the caller's display name
func (c *Controller) SetName(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.lobbies[normalizeCode(code)]
	if !ok {
		return nil
	}
	player := c.resolvePlayerLocked(ls, key, conn)
	if player == nil {
		return nil
	}
	cleaned := cleanName(name)
	if cleaned == "" {
		return nil
	}

	player.Name = cleaned
	ls.lobby.UpdatedAt = c.clock.Now()
	c.broadcastStateLocked(ls)
	return nil
}

// Start begins the match. Host only, LOBBY phase only, and at least two
// connected players. Scores and round counters reset so a persistent
// lobby starts every match clean.
func (c *Controller) Start(ctx context.Context, conn model.ConnID, code model.RoomCode, totalRounds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.lobbies[normalizeCode(code)]
	if !ok {
		return model.ErrRoomNotFound
	}
	lobby := ls.lobby
	if lobby.Phase != model.PhaseLobby {
		return nil
	}
	player := lobby.PlayerByConn(conn)
	if player == nil || player.Key != lobby.HostKey {
		return model.ErrNotHost
	}
	if lobby.ConnectedCount() < 2 {
		return model.ErrInsufficientPlayers
	}

	if totalRounds <= 0 {
		totalRounds = c.cfg.DefaultTotalRounds
	}
	lobby.TotalRounds = totalRounds
	lobby.CurrentRound = 0
	for _, p := range lobby.Players {
		p.Score = 0
		p.RoundPoints = 0
		p.FinishedRound = false
	}
	lobby.RoundWinners = nil
	lobby.LastWinningWord = ""

	c.startPreLocked(ls)
	c.logger.Info("royale match started",
		slog.String("code", string(lobby.Code)),
		slog.Int("totalRounds", totalRounds))
	return nil
}

// SubmitWord resolves a word submission. Each player may score at most
// once per round; points are awarded by arrival rank.
func (c *Controller) SubmitWord(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, word string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.lobbies[normalizeCode(code)]
	if !ok {
		return nil
	}
	lobby := ls.lobby
	if lobby.Phase != model.PhaseRacing {
		return nil
	}
	player := c.resolvePlayerLocked(ls, key, conn)
	if player == nil || !player.Connected || player.FinishedRound {
		return nil
	}

	res := rules.ValidateWord(word, lobby.Letters[0], lobby.Letters[1], c.cfg.MinWordLength, c.dict)
	if !res.Valid {
		c.emitLobbyLocked(ls, model.Event{Type: model.EventFailedAttempt, Payload: model.FailedAttemptPayload{
			By:     playerName(player),
			Word:   word,
			Reason: res.Reason,
		}})
		return nil
	}

	rank := len(lobby.RoundWinners)
	points := c.cfg.PointsForRank(rank)
	player.FinishedRound = true
	player.RoundPoints = points
	player.Score += points
	lobby.RoundWinners = append(lobby.RoundWinners, player.Key)
	if rank == 0 {
		lobby.LastWinningWord = res.Word
	}
	lobby.UpdatedAt = c.clock.Now()

	c.broadcastStateLocked(ls)

	// Round ends early once every connected player has finished
	if lobby.AllConnectedFinished() {
		c.endRoundLocked(ls)
	}
	return nil
}

// PlayAgain resets a finished lobby back to LOBBY in place, keeping the
// roster so the same group can run another match. Host only.
func (c *Controller) PlayAgain(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.lobbies[normalizeCode(code)]
	if !ok {
		return nil
	}
	lobby := ls.lobby
	if lobby.Phase != model.PhaseGameOver {
		return nil
	}
	player := c.resolvePlayerLocked(ls, key, conn)
	if player == nil || player.Key != lobby.HostKey {
		return model.ErrNotHost
	}

	ls.phaseTimer.Cancel()
	lobby.Phase = model.PhaseLobby
	lobby.CurrentRound = 0
	lobby.TotalRounds = 0
	lobby.Letters = [2]string{}
	lobby.RoundWinners = nil
	lobby.LastWinningWord = ""
	c.clearDeadlinesLocked(lobby)
	for _, p := range lobby.Players {
		p.Score = 0
		p.RoundPoints = 0
		p.FinishedRound = false
	}
	lobby.UpdatedAt = c.clock.Now()

	c.broadcastStateLocked(ls)
	c.logger.Info("royale lobby reset", slog.String("code", string(lobby.Code)))
	return nil
}

// LeaveLobby is an explicit leave, handled like a disconnect but
// delivered as an unambiguous intent
func (c *Controller) LeaveLobby(ctx context.Context, conn model.ConnID, code model.RoomCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ls, ok := c.lobbies[normalizeCode(code)]
	if !ok {
		return nil
	}
	if ls.lobby.PlayerByConn(conn) == nil {
		return nil
	}
	c.dropConnLocked(ls, conn)
	return nil
}

// Disconnect handles a dropped connection. In the LOBBY phase the
// player is removed outright; mid-game they stay on the roster marked
// disconnected so final standings remain complete.
func (c *Controller) Disconnect(ctx context.Context, conn model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.conns[conn]
	if !ok {
		return
	}
	ls, ok := c.lobbies[code]
	if !ok {
		delete(c.conns, conn)
		return
	}
	c.dropConnLocked(ls, conn)
}

// LobbyCount returns the number of live lobbies
func (c *Controller) LobbyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lobbies)
}

// Phase transitions. All assume c.mu is held.

func (c *Controller) startPreLocked(ls *lobbyState) {
	lobby := ls.lobby
	lobby.Phase = model.PhasePre
	c.clearDeadlinesLocked(lobby)
	lobby.PreEndsAt = c.clock.Now().Add(c.cfg.PreDuration)

	c.emitLobbyLocked(ls, model.Event{Type: model.EventPreGame, Payload: model.DeadlinePayload{EndsAt: model.Millis(lobby.PreEndsAt)}})
	c.broadcastStateLocked(ls)

	code := lobby.Code
	ls.phaseTimer.Arm(c.cfg.PreDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		still, ok := c.lobbies[code]
		if !ok || still != ls || still.lobby.Phase != model.PhasePre {
			return
		}
		c.startRoundLocked(still)
	})
}

func (c *Controller) startRoundLocked(ls *lobbyState) {
	lobby := ls.lobby
	lobby.Phase = model.PhaseRacing
	lobby.CurrentRound++
	lobby.Letters = [2]string{c.random.Letter(), c.random.Letter()}
	lobby.RoundWinners = nil
	lobby.LastWinningWord = ""
	for _, p := range lobby.Players {
		p.FinishedRound = false
		p.RoundPoints = 0
	}
	c.clearDeadlinesLocked(lobby)
	lobby.RoundEndsAt = c.clock.Now().Add(c.cfg.RoundDuration)

	c.emitLobbyLocked(ls, model.Event{Type: model.EventRoundStart, Payload: model.RoundStartPayload{
		Letters: []string{lobby.Letters[0], lobby.Letters[1]},
		EndsAt:  model.Millis(lobby.RoundEndsAt),
		Round:   lobby.CurrentRound,
	}})
	c.broadcastStateLocked(ls)

	code := lobby.Code
	ls.phaseTimer.Arm(c.cfg.RoundDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		still, ok := c.lobbies[code]
		if !ok || still != ls || still.lobby.Phase != model.PhaseRacing {
			return
		}
		c.endRoundLocked(still)
	})
}

func (c *Controller) endRoundLocked(ls *lobbyState) {
	lobby := ls.lobby
	lobby.Phase = model.PhaseRoundResult
	c.clearDeadlinesLocked(lobby)
	lobby.ResultEndsAt = c.clock.Now().Add(c.cfg.ResultDuration)

	c.broadcastStateLocked(ls)

	code := lobby.Code
	ls.phaseTimer.Arm(c.cfg.ResultDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		still, ok := c.lobbies[code]
		if !ok || still != ls || still.lobby.Phase != model.PhaseRoundResult {
			return
		}
		if still.lobby.CurrentRound >= still.lobby.TotalRounds {
			c.finishGameLocked(context.Background(), still)
		} else {
			c.startRoundLocked(still)
		}
	})
}

func (c *Controller) finishGameLocked(ctx context.Context, ls *lobbyState) {
	lobby := ls.lobby
	ls.phaseTimer.Cancel()
	lobby.Phase = model.PhaseGameOver
	c.clearDeadlinesLocked(lobby)
	lobby.UpdatedAt = c.clock.Now()

	c.broadcastStateLocked(ls)

	scores := make(map[string]int, len(lobby.Players))
	winner := ""
	best := -1
	for _, p := range lobby.Players {
		scores[playerName(p)] = p.Score
		if p.Score > best {
			best = p.Score
			winner = playerName(p)
		}
	}
	summary := &model.MatchSummary{
		Code:        lobby.Code,
		Mode:        model.ModeRoyale,
		Winner:      winner,
		Scores:      scores,
		Rounds:      lobby.TotalRounds,
		CompletedAt: c.clock.Now(),
	}
	if err := c.storage.SaveMatchSummary(ctx, summary); err != nil {
		c.logger.Error("failed to save match summary",
			slog.String("code", string(lobby.Code)), slog.Any("error", err))
	}

	c.logger.Info("royale match over",
		slog.String("code", string(lobby.Code)), slog.String("winner", winner))
}

// Internal helpers. All assume c.mu is held.

func (c *Controller) newLobbyLocked() *lobbyState {
	now := c.clock.Now()

	var code model.RoomCode
	for {
		code = model.RoomCode(c.random.String(lobbyCodeLength, lobbyCodeAlphabet))
		if _, exists := c.lobbies[code]; !exists {
			break
		}
	}

	ls := &lobbyState{
		lobby: &model.RoyaleLobby{
			Code:      code,
			Phase:     model.PhaseLobby,
			CreatedAt: now,
			UpdatedAt: now,
		},
		phaseTimer: deadline.NewSlot(c.sched),
	}
	c.lobbies[code] = ls
	return ls
}

func (c *Controller) addPlayerLocked(ls *lobbyState, conn model.ConnID, name string, host bool) {
	lobby := ls.lobby
	player := &model.RoyalePlayer{
		Conn:      conn,
		Key:       model.PlayerKey("r_" + c.random.String(playerKeyLength, playerKeyAlphabet)),
		Name:      cleanName(name),
		Connected: true,
	}
	lobby.Players = append(lobby.Players, player)
	if host || lobby.HostKey == "" {
		lobby.HostKey = player.Key
	}
	lobby.UpdatedAt = c.clock.Now()
	c.conns[conn] = lobby.Code

	c.sink.ToConn(conn, model.Event{Type: model.EventJoinedRoom, Payload: model.JoinedRoomPayload{
		Code:      lobby.Code,
		Mode:      model.ModeRoyale,
		PlayerKey: player.Key,
		IsHost:    player.Key == lobby.HostKey,
	}})
	c.broadcastStateLocked(ls)
}

// dropConnLocked applies the phase-dependent removal semantics for a
// connection that left, whether explicitly or by transport closure
func (c *Controller) dropConnLocked(ls *lobbyState, conn model.ConnID) {
	lobby := ls.lobby
	player := lobby.PlayerByConn(conn)
	delete(c.conns, conn)
	if player == nil {
		return
	}

	wasHost := player.Key == lobby.HostKey

	if lobby.Phase == model.PhaseLobby {
		for i, p := range lobby.Players {
			if p == player {
				lobby.Players = append(lobby.Players[:i], lobby.Players[i+1:]...)
				break
			}
		}
	} else {
		player.Connected = false
		player.Conn = ""
	}
	lobby.UpdatedAt = c.clock.Now()

	if lobby.ConnectedCount() == 0 {
		c.destroyLobbyLocked(ls)
		return
	}

	// The host must always be a connected player
	if wasHost {
		for _, p := range lobby.Players {
			if p.Connected {
				lobby.HostKey = p.Key
				break
			}
		}
	}

	c.broadcastStateLocked(ls)

	// A dropout may be the last unfinished player of the round
	if lobby.Phase == model.PhaseRacing && lobby.AllConnectedFinished() {
		c.endRoundLocked(ls)
	}
}

func (c *Controller) destroyLobbyLocked(ls *lobbyState) {
	ls.phaseTimer.Cancel()
	for _, p := range ls.lobby.Players {
		if p.Connected && p.Conn != "" {
			delete(c.conns, p.Conn)
		}
	}
	delete(c.lobbies, ls.lobby.Code)
	c.logger.Info("royale lobby destroyed", slog.String("code", string(ls.lobby.Code)))
}

func (c *Controller) clearDeadlinesLocked(lobby *model.RoyaleLobby) {
	lobby.PreEndsAt = time.Time{}
	lobby.RoundEndsAt = time.Time{}
	lobby.ResultEndsAt = time.Time{}
}

func (c *Controller) resolvePlayerLocked(ls *lobbyState, key model.PlayerKey, conn model.ConnID) *model.RoyalePlayer {
	if p := ls.lobby.PlayerByKey(key); p != nil {
		return p
	}
	return ls.lobby.PlayerByConn(conn)
}

func (c *Controller) lobbyConnsLocked(ls *lobbyState) []model.ConnID {
	conns := make([]model.ConnID, 0, len(ls.lobby.Players))
	for _, p := range ls.lobby.Players {
		if p.Connected && p.Conn != "" {
			conns = append(conns, p.Conn)
		}
	}
	return conns
}

func (c *Controller) emitLobbyLocked(ls *lobbyState, ev model.Event) {
	c.sink.ToConns(c.lobbyConnsLocked(ls), ev)
}

// broadcastStateLocked sends the full snapshot to every connected
// player; the leaderboard is sorted by total score descending
func (c *Controller) broadcastStateLocked(ls *lobbyState) {
	lobby := ls.lobby

	views := make([]model.RoyalePlayerView, 0, len(lobby.Players))
	for _, p := range lobby.Players {
		views = append(views, model.RoyalePlayerView{
			Name:          playerName(p),
			Score:         p.Score,
			IsHost:        p.Key == lobby.HostKey,
			Connected:     p.Connected,
			Ready:         p.Ready,
			FinishedRound: p.FinishedRound,
			RoundPoints:   p.RoundPoints,
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Score > views[j].Score
	})

	letters := []string{}
	if lobby.Letters[0] != "" {
		letters = []string{lobby.Letters[0], lobby.Letters[1]}
	}

	c.emitLobbyLocked(ls, model.Event{Type: model.EventRoyaleState, Payload: model.RoyaleStatePayload{
		Phase:        lobby.Phase,
		Players:      views,
		Round:        lobby.CurrentRound,
		TotalRounds:  lobby.TotalRounds,
		Letters:      letters,
		TopWord:      lobby.LastWinningWord,
		PreEndsAt:    model.Millis(lobby.PreEndsAt),
		RoundEndsAt:  model.Millis(lobby.RoundEndsAt),
		ResultEndsAt: model.Millis(lobby.ResultEndsAt),
	}})
}

func playerName(p *model.RoyalePlayer) string {
	if p.Name != "" {
		return p.Name
	}
	return "Player"
}

// ControllerInterface is the surface the gateway uses
type ControllerInterface interface {
	CreateLobby(ctx context.Context, conn model.ConnID, name string) error
	JoinRandom(ctx context.Context, conn model.ConnID, name string) error
	JoinByCode(ctx context.Context, conn model.ConnID, code model.RoomCode, name string) error
	RejoinLobby(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error
	SetName(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, name string) error
	Start(ctx context.Context, conn model.ConnID, code model.RoomCode, totalRounds int) error
	SubmitWord(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, word string) error
	PlayAgain(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error
	LeaveLobby(ctx context.Context, conn model.ConnID, code model.RoomCode) error
	Disconnect(ctx context.Context, conn model.ConnID)
	LobbyCount() int
}

var _ ControllerInterface = (*Controller)(nil)

func normalizeCode(code model.RoomCode) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(string(code))))
}

func cleanName(name string) string {
	cleaned := strings.Join(strings.Fields(name), " ")
	if len(cleaned) > NameMaxLength {
		cleaned = cleaned[:NameMaxLength]
	}
	return cleaned
}
