package model

import "time"

// RoyalePlayer is one entry in a royale lobby's roster. Players are never
// removed mid-match, only marked disconnected, so the leaderboard stays
// complete across the whole game.
type RoyalePlayer struct {
	Conn          ConnID
	Key           PlayerKey
	Name          string
	Score         int
	Connected     bool
	Ready         bool
	FinishedRound bool
	RoundPoints   int // points gained in the current/last round
}

// RoyaleLobby represents an N-player royale match's server-side state
type RoyaleLobby struct {
	Code  RoomCode
	Phase Phase

	// Roster in join order. The host is identified by credential so it
	// survives reconnects.
	Players []*RoyalePlayer
	HostKey PlayerKey

	CurrentRound int
	TotalRounds  int

	// The two active letters, identical for all players, assigned at
	// round start
	Letters [2]string

	// Credentials of this round's successful submitters, in arrival order
	RoundWinners    []PlayerKey
	LastWinningWord string

	PreEndsAt    time.Time
	RoundEndsAt  time.Time
	ResultEndsAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerByKey resolves a credential to a roster entry, or nil
func (l *RoyaleLobby) PlayerByKey(key PlayerKey) *RoyalePlayer {
	if key == "" {
		return nil
	}
	for _, p := range l.Players {
		if p.Key == key {
			return p
		}
	}
	return nil
}

// PlayerByConn resolves a live connection id to a roster entry, or nil
func (l *RoyaleLobby) PlayerByConn(conn ConnID) *RoyalePlayer {
	if conn == "" {
		return nil
	}
	for _, p := range l.Players {
		if p.Connected && p.Conn == conn {
			return p
		}
	}
	return nil
}

// Host returns the host's roster entry, or nil
func (l *RoyaleLobby) Host() *RoyalePlayer {
	return l.PlayerByKey(l.HostKey)
}

// ConnectedCount returns the number of currently-connected players
func (l *RoyaleLobby) ConnectedCount() int {
	n := 0
	for _, p := range l.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// AllConnectedFinished reports whether every currently-connected player has
// finished the round. Disconnected players are excluded from the
// denominator so a dropout cannot stall the round.
func (l *RoyaleLobby) AllConnectedFinished() bool {
	any := false
	for _, p := range l.Players {
		if !p.Connected {
			continue
		}
		any = true
		if !p.FinishedRound {
			return false
		}
	}
	return any
}
