package model

import "time"

// PlayerSlot holds one side of a 1v1 room. The credential is the slot's
// identity; the connection id is rebound on reconnect.
type PlayerSlot struct {
	Conn    ConnID // empty while disconnected
	Key     PlayerKey
	Name    string
	Score   int
	Ready   bool
	Rematch bool
}

// Connected reports whether the slot currently has a live connection
func (s *PlayerSlot) Connected() bool {
	return s != nil && s.Conn != ""
}

// Room represents a 1v1 match's complete server-side state
type Room struct {
	Code  RoomCode
	Phase Phase

	P1 *PlayerSlot
	P2 *PlayerSlot // nil until someone joins

	// Letter assignment for the current round (empty string when unset)
	P1Letter string
	P2Letter string

	// The pre-game countdown only runs before the first round of the
	// first match in a room; rematches go straight to picking.
	HasEverStarted bool

	// Absolute deadline for the current phase (zero when none armed)
	PreEndsAt    time.Time
	PickEndsAt   time.Time
	RoundEndsAt  time.Time
	ResultEndsAt time.Time

	LastWinningWord string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Slot returns the slot for the given role, or nil
func (r *Room) Slot(role Role) *PlayerSlot {
	switch role {
	case RoleP1:
		return r.P1
	case RoleP2:
		return r.P2
	}
	return nil
}

// RoleOfKey resolves a credential to a role, or "" if unknown
func (r *Room) RoleOfKey(key PlayerKey) Role {
	if key == "" {
		return ""
	}
	if r.P1 != nil && r.P1.Key == key {
		return RoleP1
	}
	if r.P2 != nil && r.P2.Key == key {
		return RoleP2
	}
	return ""
}

// RoleOfConn resolves a live connection id to a role, or "" if unknown
func (r *Room) RoleOfConn(conn ConnID) Role {
	if conn == "" {
		return ""
	}
	if r.P1 != nil && r.P1.Conn == conn {
		return RoleP1
	}
	if r.P2 != nil && r.P2.Conn == conn {
		return RoleP2
	}
	return ""
}

// BothConnected reports whether both slots are filled and live
func (r *Room) BothConnected() bool {
	return r.P1.Connected() && r.P2.Connected()
}

// BothReady reports whether both slots have readied up
func (r *Room) BothReady() bool {
	return r.P1 != nil && r.P1.Ready && r.P2 != nil && r.P2.Ready
}

// BothRematch reports whether both slots have requested a rematch
func (r *Room) BothRematch() bool {
	return r.P1 != nil && r.P1.Rematch && r.P2 != nil && r.P2.Rematch
}

// BothLettersPicked reports whether both letters for the round are set
func (r *Room) BothLettersPicked() bool {
	return r.P1Letter != "" && r.P2Letter != ""
}

// Name returns the display name for a role, falling back to a default
func (r *Room) Name(role Role) string {
	slot := r.Slot(role)
	if slot != nil && slot.Name != "" {
		return slot.Name
	}
	if role == RoleP1 {
		return "Player 1"
	}
	return "Player 2"
}

// Scores returns the current score pair
func (r *Room) Scores() ScorePair {
	var s ScorePair
	if r.P1 != nil {
		s.P1 = r.P1.Score
	}
	if r.P2 != nil {
		s.P2 = r.P2.Score
	}
	return s
}

// ScorePair is the 1v1 score view used in events
type ScorePair struct {
	P1 int `json:"p1"`
	P2 int `json:"p2"`
}

// FlagPair is the 1v1 ready/rematch status view used in events
type FlagPair struct {
	P1 bool `json:"p1"`
	P2 bool `json:"p2"`
}

// NamePair is the 1v1 display-name view used in events
type NamePair struct {
	P1 string `json:"p1"`
	P2 string `json:"p2"`
}
