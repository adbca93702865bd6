// Package match implements the 1v1 room state machine: lobby and ready
// handshake, the letter pick, the racing round, round resolution, and
// the rematch flow. All mutation for all rooms is serialized through a
// single mutex; timer callbacks re-validate room existence and phase
// before acting because a room may have been destroyed or transitioned
// between arming and firing.
package match

import (
	"context"
	"log/slog"
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
	playerKeyLength   = 18
	playerKeyAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// roomState pairs a room with its engine-side timer handles. Timestamps
// live on the model; the handles never leave the engine.
type roomState struct {
	room       *model.Room
	phaseTimer *deadline.Slot
	grace      map[model.Role]*deadline.Slot

	// Completed rounds, for the match record
	rounds int
}

// Controller manages all live 1v1 rooms
type Controller struct {
	cfg     Config
	sink    model.Sink
	dict    dictionary.Checker
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	sched   scheduler.Scheduler
	logger  *slog.Logger

	mu    sync.Mutex
	rooms map[model.RoomCode]*roomState
	conns map[model.ConnID]model.RoomCode
}

// NewController creates a new match Controller
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
		rooms:   make(map[model.RoomCode]*roomState),
		conns:   make(map[model.ConnID]model.RoomCode),
	}
}

// CreateRoom creates a new room with the caller in slot 1
func (c *Controller) CreateRoom(ctx context.Context, conn model.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs := c.newRoomLocked()
	room := rs.room
	room.P1.Conn = conn
	c.conns[conn] = room.Code

	c.sink.ToConn(conn, model.Event{Type: model.EventRoomCreated, Payload: model.RoomCreatedPayload{
		Code:      room.Code,
		Role:      model.RoleP1,
		PlayerKey: room.P1.Key,
	}})
	c.emitNamesLocked(rs)
	c.emitReadyLocked(rs)

	c.logger.Info("room created", slog.String("code", string(room.Code)))
	return nil
}

// CreateMatchedRoom creates a room with both slots already bound, used
// when a matchmaking proposal is mutually accepted. The room starts in
// the lobby; both players still ready up.
func (c *Controller) CreateMatchedRoom(ctx context.Context, p1Conn, p2Conn model.ConnID) (model.RoomCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs := c.newRoomLocked()
	room := rs.room
	room.P1.Conn = p1Conn
	room.P2 = &model.PlayerSlot{
		Conn: p2Conn,
		Key:  c.newPlayerKeyLocked(model.RoleP2),
	}
	c.conns[p1Conn] = room.Code
	c.conns[p2Conn] = room.Code

	c.sink.ToConn(p1Conn, model.Event{Type: model.EventRoomCreated, Payload: model.RoomCreatedPayload{
		Code:      room.Code,
		Role:      model.RoleP1,
		PlayerKey: room.P1.Key,
	}})
	c.sink.ToConn(p2Conn, model.Event{Type: model.EventJoinedRoom, Payload: model.JoinedRoomPayload{
		Code:      room.Code,
		Mode:      model.ModeClassic,
		Role:      model.RoleP2,
		PlayerKey: room.P2.Key,
	}})
	c.emitNamesLocked(rs)
	c.emitReadyLocked(rs)

	c.logger.Info("matched room created", slog.String("code", string(room.Code)))
	return room.Code, nil
}

// JoinRoom fills slot 2 of an existing room. A slot left behind by a
// disconnected player may be claimed by a new connection; its
// credential is preserved so the original holder can still rejoin.
func (c *Controller) JoinRoom(ctx context.Context, conn model.ConnID, code model.RoomCode, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return model.ErrRoomNotFound
	}
	room := rs.room

	if room.P1 != nil && room.P1.Conn == conn {
		return model.ErrAlreadyJoined
	}
	if room.P2 != nil && room.P2.Conn == conn {
		// Re-ack a duplicate join from the same connection
		c.sink.ToConn(conn, model.Event{Type: model.EventJoinedRoom, Payload: model.JoinedRoomPayload{
			Code:      room.Code,
			Mode:      model.ModeClassic,
			Role:      model.RoleP2,
			PlayerKey: room.P2.Key,
		}})
		return nil
	}
	if room.P2.Connected() {
		return model.ErrRoomFull
	}

	if room.P2 == nil {
		room.P2 = &model.PlayerSlot{Key: c.newPlayerKeyLocked(model.RoleP2)}
	}
	room.P2.Conn = conn
	if cleaned := cleanName(name); cleaned != "" {
		room.P2.Name = cleaned
	}
	rs.grace[model.RoleP2].Cancel()
	c.conns[conn] = room.Code
	room.UpdatedAt = c.clock.Now()

	c.sink.ToConn(conn, model.Event{Type: model.EventJoinedRoom, Payload: model.JoinedRoomPayload{
		Code:      room.Code,
		Mode:      model.ModeClassic,
		Role:      model.RoleP2,
		PlayerKey: room.P2.Key,
	}})
	if room.P1.Connected() {
		c.sink.ToConn(room.P1.Conn, model.Event{Type: model.EventOpponentJoined})
	}
	c.emitNamesLocked(rs)
	c.emitReadyLocked(rs)

	return nil
}

// RejoinRoom rebinds a credential holder's slot to a new connection and
// replays the full room state to them
func (c *Controller) RejoinRoom(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return model.ErrRoomGone
	}
	room := rs.room

	role := room.RoleOfKey(key)
	if role == "" {
		return model.ErrInvalidSession
	}

	slot := room.Slot(role)
	slot.Conn = conn
	rs.grace[role].Cancel()
	c.conns[conn] = room.Code
	room.UpdatedAt = c.clock.Now()

	c.sink.ToConn(conn, model.Event{Type: model.EventRejoinedRoom, Payload: model.RejoinedRoomPayload{
		Code:      room.Code,
		Mode:      model.ModeClassic,
		Role:      role,
		PlayerKey: slot.Key,
	}})
	c.sink.ToConn(conn, model.Event{Type: model.EventSyncState, Payload: c.syncPayloadLocked(rs, role)})

	// Re-announce the live phase deadline so both clients converge
	if room.BothConnected() && room.Phase != model.PhaseGameOver {
		switch room.Phase {
		case model.PhasePre:
			c.emitRoomLocked(rs, model.Event{Type: model.EventPreGame, Payload: model.DeadlinePayload{EndsAt: model.Millis(room.PreEndsAt)}})
		case model.PhasePicking:
			c.emitRoomLocked(rs, model.Event{Type: model.EventPickStart, Payload: model.DeadlinePayload{EndsAt: model.Millis(room.PickEndsAt)}})
		case model.PhaseRacing:
			c.emitRoomLocked(rs, model.Event{Type: model.EventRoundStart, Payload: model.RoundStartPayload{
				Letters: []string{room.P1Letter, room.P2Letter},
				EndsAt:  model.Millis(room.RoundEndsAt),
			}})
		}
	}

	c.logger.Info("player rejoined", slog.String("code", string(room.Code)), slog.String("role", string(role)))
	return nil
}

// SetName updates the caller's display name
func (c *Controller) SetName(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return nil
	}
	role := c.resolveRoleLocked(rs.room, key, conn)
	if role == "" {
		return nil
	}

	cleaned := cleanName(name)
	if cleaned == "" {
		return nil
	}

	rs.room.Slot(role).Name = cleaned
	rs.room.UpdatedAt = c.clock.Now()
	c.emitNamesLocked(rs)
	return nil
}

// PlayerReady marks the caller ready; when both players are ready the
// match starts. The first start of a room runs the pre-game countdown;
// rematches go straight to picking.
func (c *Controller) PlayerReady(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return nil
	}
	room := rs.room
	if room.Phase != model.PhaseLobby {
		return nil
	}
	role := c.resolveRoleLocked(room, key, conn)
	if role == "" {
		return nil
	}

	room.Slot(role).Ready = true
	room.UpdatedAt = c.clock.Now()
	c.emitReadyLocked(rs)

	if room.BothReady() && room.BothConnected() {
		if !room.HasEverStarted {
			room.HasEverStarted = true
			c.startPreLocked(rs)
		} else {
			c.startPickingLocked(rs)
		}
	}
	return nil
}

// SubmitLetter records the caller's letter for the round. The round
// starts as soon as both letters are in.
func (c *Controller) SubmitLetter(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, letter string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return nil
	}
	room := rs.room
	if room.Phase != model.PhasePicking || room.P2 == nil {
		return nil
	}
	role := c.resolveRoleLocked(room, key, conn)
	if role == "" {
		return nil
	}

	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return nil
	}

	if role == model.RoleP1 {
		room.P1Letter = letter
	} else {
		room.P2Letter = letter
	}

	if room.BothLettersPicked() {
		c.startRoundLocked(rs)
	}
	return nil
}

// SubmitWord resolves a word submission during the racing phase. An
// invalid word is broadcast as a failed attempt and the round
// continues; the first valid word wins the round.
func (c *Controller) SubmitWord(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, word string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return nil
	}
	room := rs.room
	if room.Phase != model.PhaseRacing {
		return nil
	}
	role := c.resolveRoleLocked(room, key, conn)
	if role == "" {
		return nil
	}

	res := rules.ValidateWord(word, room.P1Letter, room.P2Letter, c.cfg.MinWordLength, c.dict)
	if !res.Valid {
		c.emitRoomLocked(rs, model.Event{Type: model.EventFailedAttempt, Payload: model.FailedAttemptPayload{
			By:     string(role),
			Word:   word,
			Reason: res.Reason,
		}})
		return nil
	}

	slot := room.Slot(role)
	slot.Score++
	room.LastWinningWord = res.Word
	room.UpdatedAt = c.clock.Now()
	rs.rounds++

	if slot.Score >= c.cfg.WinningScore {
		c.finishMatchLocked(ctx, rs, role)
		return nil
	}

	c.startRoundResultLocked(rs, role, res.Word)
	return nil
}

// Typing relays the caller's typing indicator to their opponent
func (c *Controller) Typing(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, typing bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return nil
	}
	room := rs.room
	if typing && room.Phase != model.PhaseRacing {
		return nil
	}
	role := c.resolveRoleLocked(room, key, conn)
	if role == "" {
		return nil
	}

	opp := room.Slot(role.Opponent())
	if opp.Connected() {
		c.sink.ToConn(opp.Conn, model.Event{Type: model.EventOpponentTyping, Payload: model.TypingPayload{Typing: typing}})
	}
	return nil
}

// RequestRematch records a rematch request. Both players must opt in;
// the room then resets to the lobby with scores zeroed and ready flags
// cleared. Re-requesting is idempotent.
func (c *Controller) RequestRematch(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return nil
	}
	room := rs.room
	if room.Phase != model.PhaseGameOver {
		return nil
	}
	role := c.resolveRoleLocked(room, key, conn)
	if role == "" {
		return nil
	}

	room.Slot(role).Rematch = true
	c.emitRoomLocked(rs, model.Event{Type: model.EventRematchStatus, Payload: model.FlagPair{
		P1: room.P1.Rematch,
		P2: room.P2 != nil && room.P2.Rematch,
	}})

	if room.BothRematch() {
		rs.phaseTimer.Cancel()
		room.P1.Score = 0
		room.P2.Score = 0
		room.P1.Rematch = false
		room.P2.Rematch = false
		room.P1.Ready = false
		room.P2.Ready = false
		room.P1Letter = ""
		room.P2Letter = ""
		room.LastWinningWord = ""
		room.Phase = model.PhaseLobby
		c.clearDeadlinesLocked(room)
		room.UpdatedAt = c.clock.Now()
		rs.rounds = 0

		c.emitRoomLocked(rs, model.Event{Type: model.EventRematchStarted, Payload: model.RematchStartedPayload{Scores: room.Scores()}})
		c.emitReadyLocked(rs)
		c.logger.Info("rematch started", slog.String("code", string(room.Code)))
	}
	return nil
}

// LeaveRoom explicitly abandons the room, destroying it for both players
func (c *Controller) LeaveRoom(ctx context.Context, conn model.ConnID, code model.RoomCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs, ok := c.rooms[normalizeCode(code)]
	if !ok {
		return nil
	}
	room := rs.room
	role := room.RoleOfConn(conn)
	if role == "" {
		return nil
	}

	opp := room.Slot(role.Opponent())
	if opp.Connected() {
		c.sink.ToConn(opp.Conn, model.Event{Type: model.EventOpponentLeft})
	}

	c.destroyRoomLocked(rs)
	c.logger.Info("room abandoned", slog.String("code", string(room.Code)))
	return nil
}

// Disconnect handles a dropped connection. The slot is held open for
// the reconnect grace window; if the player does not rejoin in time the
// room is destroyed. A room with nobody left is destroyed immediately.
func (c *Controller) Disconnect(ctx context.Context, conn model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.conns[conn]
	if !ok {
		return
	}
	delete(c.conns, conn)

	rs, ok := c.rooms[code]
	if !ok {
		return
	}
	room := rs.room
	role := room.RoleOfConn(conn)
	if role == "" {
		return
	}

	slot := room.Slot(role)
	slot.Conn = ""
	slot.Ready = false
	room.UpdatedAt = c.clock.Now()

	// Reflect the lost ready flag while still in the lobby
	if room.Phase == model.PhaseLobby {
		c.emitReadyLocked(rs)
	}

	if !room.P1.Connected() && !room.P2.Connected() {
		c.destroyRoomLocked(rs)
		return
	}

	opp := room.Slot(role.Opponent())
	if opp.Connected() {
		c.sink.ToConn(opp.Conn, model.Event{Type: model.EventOpponentLeft})
	}

	rs.grace[role].Arm(c.cfg.ReconnectGrace, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		still, ok := c.rooms[code]
		if !ok || still != rs {
			return
		}
		if still.room.Slot(role).Connected() {
			return
		}
		c.destroyRoomLocked(still)
		c.logger.Info("room expired after disconnect",
			slog.String("code", string(code)), slog.String("role", string(role)))
	})
}

// RoomCount returns the number of live rooms
func (c *Controller) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

// Phase transitions. All assume c.mu is held.

func (c *Controller) startPreLocked(rs *roomState) {
	room := rs.room
	if room.Phase == model.PhaseGameOver {
		return
	}
	room.Phase = model.PhasePre
	c.clearDeadlinesLocked(room)
	room.PreEndsAt = c.clock.Now().Add(c.cfg.PreDuration)

	c.emitRoomLocked(rs, model.Event{Type: model.EventPreGame, Payload: model.DeadlinePayload{EndsAt: model.Millis(room.PreEndsAt)}})

	code := room.Code
	rs.phaseTimer.Arm(c.cfg.PreDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		still, ok := c.rooms[code]
		if !ok || still != rs || still.room.Phase != model.PhasePre {
			return
		}
		c.startPickingLocked(still)
	})
}

func (c *Controller) startPickingLocked(rs *roomState) {
	room := rs.room
	if room.Phase == model.PhaseGameOver {
		return
	}
	room.Phase = model.PhasePicking
	room.P1Letter = ""
	room.P2Letter = ""
	c.clearDeadlinesLocked(room)
	room.PickEndsAt = c.clock.Now().Add(c.cfg.PickDuration)

	c.emitRoomLocked(rs, model.Event{Type: model.EventPickStart, Payload: model.DeadlinePayload{EndsAt: model.Millis(room.PickEndsAt)}})

	code := room.Code
	rs.phaseTimer.Arm(c.cfg.PickDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		still, ok := c.rooms[code]
		if !ok || still != rs || still.room.Phase != model.PhasePicking {
			return
		}
		// Auto-pick whatever is missing
		c.startRoundLocked(still)
	})
}

func (c *Controller) startRoundLocked(rs *roomState) {
	room := rs.room
	if room.Phase == model.PhaseGameOver {
		return
	}
	room.Phase = model.PhaseRacing
	if room.P1Letter == "" {
		room.P1Letter = c.random.Letter()
	}
	if room.P2Letter == "" {
		room.P2Letter = c.random.Letter()
	}
	c.clearDeadlinesLocked(room)
	room.RoundEndsAt = c.clock.Now().Add(c.cfg.RoundDuration)

	c.emitRoomLocked(rs, model.Event{Type: model.EventRoundStart, Payload: model.RoundStartPayload{
		Letters: []string{room.P1Letter, room.P2Letter},
		EndsAt:  model.Millis(room.RoundEndsAt),
	}})

	code := room.Code
	rs.phaseTimer.Arm(c.cfg.RoundDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		still, ok := c.rooms[code]
		if !ok || still != rs || still.room.Phase != model.PhaseRacing {
			return
		}
		// Nobody found a word in time
		still.rounds++
		c.startRoundResultLocked(still, "", "")
	})
}

func (c *Controller) startRoundResultLocked(rs *roomState, winner model.Role, word string) {
	room := rs.room
	room.Phase = model.PhaseRoundResult
	c.clearDeadlinesLocked(room)
	room.ResultEndsAt = c.clock.Now().Add(c.cfg.ResultDuration)

	c.emitRoomLocked(rs, model.Event{Type: model.EventRoundResult, Payload: model.RoundResultPayload{
		WinnerRole: winner,
		Word:       word,
		Scores:     room.Scores(),
		EndsAt:     model.Millis(room.ResultEndsAt),
	}})

	code := room.Code
	rs.phaseTimer.Arm(c.cfg.ResultDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		still, ok := c.rooms[code]
		if !ok || still != rs || still.room.Phase != model.PhaseRoundResult {
			return
		}
		c.startPickingLocked(still)
	})
}

func (c *Controller) finishMatchLocked(ctx context.Context, rs *roomState, winner model.Role) {
	room := rs.room
	rs.phaseTimer.Cancel()
	room.Phase = model.PhaseGameOver
	c.clearDeadlinesLocked(room)
	room.P1.Rematch = false
	room.P2.Rematch = false

	c.emitRoomLocked(rs, model.Event{Type: model.EventMatchOver, Payload: model.MatchOverPayload{
		WinnerRole:  winner,
		WinningWord: room.LastWinningWord,
		Scores:      room.Scores(),
	}})

	summary := &model.MatchSummary{
		Code:        room.Code,
		Mode:        model.ModeClassic,
		Winner:      room.Name(winner),
		WinningWord: room.LastWinningWord,
		Scores: map[string]int{
			room.Name(model.RoleP1): room.P1.Score,
			room.Name(model.RoleP2): room.P2.Score,
		},
		Rounds:      rs.rounds,
		CompletedAt: c.clock.Now(),
	}
	if err := c.storage.SaveMatchSummary(ctx, summary); err != nil {
		c.logger.Error("failed to save match summary",
			slog.String("code", string(room.Code)), slog.Any("error", err))
	}

	c.logger.Info("match over",
		slog.String("code", string(room.Code)),
		slog.String("winner", string(winner)))
}

// Internal helpers. All assume c.mu is held.

func (c *Controller) newRoomLocked() *roomState {
	now := c.clock.Now()

	var code model.RoomCode
	for {
		code = model.RoomCode(c.random.String(RoomCodeLength, RoomCodeAlphabet))
		if _, exists := c.rooms[code]; !exists {
			break
		}
	}

	rs := &roomState{
		room: &model.Room{
			Code:      code,
			Phase:     model.PhaseLobby,
			P1:        &model.PlayerSlot{Key: c.newPlayerKeyLocked(model.RoleP1)},
			CreatedAt: now,
			UpdatedAt: now,
		},
		phaseTimer: deadline.NewSlot(c.sched),
		grace: map[model.Role]*deadline.Slot{
			model.RoleP1: deadline.NewSlot(c.sched),
			model.RoleP2: deadline.NewSlot(c.sched),
		},
	}
	c.rooms[code] = rs
	return rs
}

func (c *Controller) newPlayerKeyLocked(role model.Role) model.PlayerKey {
	return model.PlayerKey(string(role) + "_" + c.random.String(playerKeyLength, playerKeyAlphabet))
}

func (c *Controller) destroyRoomLocked(rs *roomState) {
	room := rs.room
	rs.phaseTimer.Cancel()
	rs.grace[model.RoleP1].Cancel()
	rs.grace[model.RoleP2].Cancel()
	if room.P1.Connected() {
		delete(c.conns, room.P1.Conn)
	}
	if room.P2.Connected() {
		delete(c.conns, room.P2.Conn)
	}
	delete(c.rooms, room.Code)
}

func (c *Controller) clearDeadlinesLocked(room *model.Room) {
	room.PreEndsAt = time.Time{}
	room.PickEndsAt = time.Time{}
	room.RoundEndsAt = time.Time{}
	room.ResultEndsAt = time.Time{}
}

// resolveRoleLocked identifies the caller by credential first, falling
// back to the live connection binding
func (c *Controller) resolveRoleLocked(room *model.Room, key model.PlayerKey, conn model.ConnID) model.Role {
	if role := room.RoleOfKey(key); role != "" {
		return role
	}
	return room.RoleOfConn(conn)
}

func (c *Controller) roomConnsLocked(rs *roomState) []model.ConnID {
	room := rs.room
	conns := make([]model.ConnID, 0, 2)
	if room.P1.Connected() {
		conns = append(conns, room.P1.Conn)
	}
	if room.P2.Connected() {
		conns = append(conns, room.P2.Conn)
	}
	return conns
}

func (c *Controller) emitRoomLocked(rs *roomState, ev model.Event) {
	c.sink.ToConns(c.roomConnsLocked(rs), ev)
}

func (c *Controller) emitNamesLocked(rs *roomState) {
	room := rs.room
	c.emitRoomLocked(rs, model.Event{Type: model.EventNamesUpdate, Payload: model.NamePair{
		P1: room.Name(model.RoleP1),
		P2: room.Name(model.RoleP2),
	}})
}

func (c *Controller) emitReadyLocked(rs *roomState) {
	room := rs.room
	c.emitRoomLocked(rs, model.Event{Type: model.EventReadyStatus, Payload: model.FlagPair{
		P1: room.P1 != nil && room.P1.Ready,
		P2: room.P2 != nil && room.P2.Ready,
	}})
}

func (c *Controller) syncPayloadLocked(rs *roomState, role model.Role) model.SyncStatePayload {
	room := rs.room
	return model.SyncStatePayload{
		Code:  room.Code,
		Role:  role,
		Phase: room.Phase,
		Names: model.NamePair{
			P1: room.Name(model.RoleP1),
			P2: room.Name(model.RoleP2),
		},
		Scores: room.Scores(),
		Ready: model.FlagPair{
			P1: room.P1 != nil && room.P1.Ready,
			P2: room.P2 != nil && room.P2.Ready,
		},
		Rematch: model.FlagPair{
			P1: room.P1 != nil && room.P1.Rematch,
			P2: room.P2 != nil && room.P2.Rematch,
		},
		Letters:      []string{room.P1Letter, room.P2Letter},
		PreEndsAt:    model.Millis(room.PreEndsAt),
		PickEndsAt:   model.Millis(room.PickEndsAt),
		RoundEndsAt:  model.Millis(room.RoundEndsAt),
		ResultEndsAt: model.Millis(room.ResultEndsAt),
		WinningWord:  room.LastWinningWord,
	}
}

// ControllerInterface is the surface the gateway and matchmaking use
type ControllerInterface interface {
	CreateRoom(ctx context.Context, conn model.ConnID) error
	CreateMatchedRoom(ctx context.Context, p1Conn, p2Conn model.ConnID) (model.RoomCode, error)
	JoinRoom(ctx context.Context, conn model.ConnID, code model.RoomCode, name string) error
	RejoinRoom(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error
	SetName(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, name string) error
	PlayerReady(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error
	SubmitLetter(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, letter string) error
	SubmitWord(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, word string) error
	Typing(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey, typing bool) error
	RequestRematch(ctx context.Context, conn model.ConnID, code model.RoomCode, key model.PlayerKey) error
	LeaveRoom(ctx context.Context, conn model.ConnID, code model.RoomCode) error
	Disconnect(ctx context.Context, conn model.ConnID)
	RoomCount() int
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
