// Package matchmaking implements the FIFO queue and the accept/decline
// handshake. Two queued connections are paired into a pending match
// with a fixed acceptance deadline; only mutual acceptance promotes the
// pairing into a real room.
package matchmaking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wordrace/server/internal/deadline"
	"github.com/wordrace/server/internal/dependencies/clock"
	"github.com/wordrace/server/internal/dependencies/scheduler"
	"github.com/wordrace/server/internal/model"
)

// Cancellation reasons shown to the affected players
const (
	ReasonYouDeclined      = "You declined"
	ReasonOpponentDeclined = "Opponent declined"
	ReasonTimedOut         = "Match timed out"
)

// Config holds matchmaking settings
type Config struct {
	// AcceptTimeout is how long both sides have to accept a proposal
	AcceptTimeout time.Duration
}

// DefaultConfig returns the standard matchmaking settings
func DefaultConfig() Config {
	return Config{
		AcceptTimeout: 10 * time.Second,
	}
}

// RoomCreator finalizes a mutually-accepted pairing into a 1v1 room
type RoomCreator interface {
	CreateMatchedRoom(ctx context.Context, p1Conn, p2Conn model.ConnID) (model.RoomCode, error)
}

type pendingState struct {
	match *model.PendingMatch
	timer *deadline.Slot
}

// Controller manages the queue and the pending-match table
type Controller struct {
	cfg     Config
	sink    model.Sink
	creator RoomCreator
	clock   clock.Clock
	sched   scheduler.Scheduler
	logger  *slog.Logger

	mu      sync.Mutex
	queue   []model.QueueEntry
	pending map[model.MatchID]*pendingState
	byConn  map[model.ConnID]model.MatchID
}

// NewController creates a new matchmaking Controller
func NewController(
	cfg Config,
	sink model.Sink,
	creator RoomCreator,
	clock clock.Clock,
	sched scheduler.Scheduler,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		cfg:     cfg,
		sink:    sink,
		creator: creator,
		clock:   clock,
		sched:   sched,
		logger:  logger,
		pending: make(map[model.MatchID]*pendingState),
		byConn:  make(map[model.ConnID]model.MatchID),
	}
}

// JoinQueue enqueues a connection. Re-enqueueing while already queued
// or while holding a pending match is a no-op. The two longest-waiting
// entries are paired as soon as two are present.
func (c *Controller) JoinQueue(ctx context.Context, conn model.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inMatch := c.byConn[conn]; inMatch {
		return nil
	}
	for _, entry := range c.queue {
		if entry.Conn == conn {
			return nil
		}
	}

	c.queue = append(c.queue, model.QueueEntry{Conn: conn, JoinedAt: c.clock.Now()})

	if len(c.queue) >= 2 {
		p1 := c.queue[0].Conn
		p2 := c.queue[1].Conn
		c.queue = c.queue[2:]
		c.proposeLocked(p1, p2)
	}
	return nil
}

// LeaveQueue removes a connection from the queue. Always possible
// before pairing, with no side effects.
func (c *Controller) LeaveQueue(ctx context.Context, conn model.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeFromQueueLocked(conn)
	return nil
}

// Accept records the caller's acceptance. Both sides see live accept
// status; mutual acceptance finalizes the match into a room.
func (c *Controller) Accept(ctx context.Context, conn model.ConnID, matchID model.MatchID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ps, ok := c.pending[matchID]
	if !ok {
		return nil
	}
	m := ps.match

	switch conn {
	case m.P1:
		m.P1Accepted = true
	case m.P2:
		m.P2Accepted = true
	default:
		return nil
	}

	status := model.Event{Type: model.EventMatchAcceptStatus, Payload: model.MatchAcceptStatusPayload{
		MatchID: m.ID,
		P1:      m.P1Accepted,
		P2:      m.P2Accepted,
	}}
	c.sink.ToConns([]model.ConnID{m.P1, m.P2}, status)

	if m.BothAccepted() {
		c.discardLocked(ps)

		code, err := c.creator.CreateMatchedRoom(ctx, m.P1, m.P2)
		if err != nil {
			c.logger.Error("failed to finalize match",
				slog.String("matchId", string(m.ID)), slog.Any("error", err))
			cancelled := model.Event{Type: model.EventMatchCancelled, Payload: model.MatchCancelledPayload{Reason: ReasonTimedOut}}
			c.sink.ToConns([]model.ConnID{m.P1, m.P2}, cancelled)
			return nil
		}
		c.logger.Info("match finalized",
			slog.String("matchId", string(m.ID)), slog.String("code", string(code)))
	}
	return nil
}

// Decline cancels the pending match for both sides immediately. Neither
// player is re-queued.
func (c *Controller) Decline(ctx context.Context, conn model.ConnID, matchID model.MatchID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ps, ok := c.pending[matchID]
	if !ok {
		return nil
	}
	m := ps.match
	if !m.Has(conn) {
		return nil
	}

	c.discardLocked(ps)

	other := m.P2
	if conn == m.P2 {
		other = m.P1
	}
	c.sink.ToConn(conn, model.Event{Type: model.EventMatchCancelled, Payload: model.MatchCancelledPayload{Reason: ReasonYouDeclined}})
	c.sink.ToConn(other, model.Event{Type: model.EventMatchCancelled, Payload: model.MatchCancelledPayload{Reason: ReasonOpponentDeclined}})
	return nil
}

// Disconnect removes the connection from the queue and cancels any
// pending match it is part of, as if it had declined
func (c *Controller) Disconnect(ctx context.Context, conn model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeFromQueueLocked(conn)

	matchID, ok := c.byConn[conn]
	if !ok {
		return
	}
	ps, ok := c.pending[matchID]
	if !ok {
		return
	}
	m := ps.match
	c.discardLocked(ps)

	other := m.P2
	if conn == m.P2 {
		other = m.P1
	}
	c.sink.ToConn(other, model.Event{Type: model.EventMatchCancelled, Payload: model.MatchCancelledPayload{Reason: ReasonOpponentDeclined}})
}

// QueueLen returns the number of waiting connections
func (c *Controller) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// PendingCount returns the number of proposed-but-unfinalized matches
func (c *Controller) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Internal helpers. All assume c.mu is held.

func (c *Controller) proposeLocked(p1, p2 model.ConnID) {
	m := &model.PendingMatch{
		ID:        model.MatchID(uuid.NewString()),
		P1:        p1,
		P2:        p2,
		ExpiresAt: c.clock.Now().Add(c.cfg.AcceptTimeout),
	}
	ps := &pendingState{
		match: m,
		timer: deadline.NewSlot(c.sched),
	}
	c.pending[m.ID] = ps
	c.byConn[p1] = m.ID
	c.byConn[p2] = m.ID

	found := model.Event{Type: model.EventMatchFound, Payload: model.MatchFoundPayload{
		MatchID:   m.ID,
		ExpiresAt: model.Millis(m.ExpiresAt),
	}}
	c.sink.ToConns([]model.ConnID{p1, p2}, found)

	matchID := m.ID
	ps.timer.Arm(c.cfg.AcceptTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		still, ok := c.pending[matchID]
		if !ok || still != ps {
			return
		}
		c.discardLocked(still)
		cancelled := model.Event{Type: model.EventMatchCancelled, Payload: model.MatchCancelledPayload{Reason: ReasonTimedOut}}
		c.sink.ToConns([]model.ConnID{still.match.P1, still.match.P2}, cancelled)
	})

	c.logger.Info("match proposed", slog.String("matchId", string(m.ID)))
}

func (c *Controller) discardLocked(ps *pendingState) {
	ps.timer.Cancel()
	delete(c.pending, ps.match.ID)
	delete(c.byConn, ps.match.P1)
	delete(c.byConn, ps.match.P2)
}

func (c *Controller) removeFromQueueLocked(conn model.ConnID) {
	for i, entry := range c.queue {
		if entry.Conn == conn {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// ControllerInterface is the surface the gateway uses
type ControllerInterface interface {
	JoinQueue(ctx context.Context, conn model.ConnID) error
	LeaveQueue(ctx context.Context, conn model.ConnID) error
	Accept(ctx context.Context, conn model.ConnID, matchID model.MatchID) error
	Decline(ctx context.Context, conn model.ConnID, matchID model.MatchID) error
	Disconnect(ctx context.Context, conn model.ConnID)
	QueueLen() int
}

var _ ControllerInterface = (*Controller)(nil)
