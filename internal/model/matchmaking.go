package model

import "time"

// QueueEntry is one waiting connection in the FIFO matchmaking queue
type QueueEntry struct {
	Conn     ConnID
	JoinedAt time.Time
}

// PendingMatch is a proposed pairing awaiting mutual accept. It is
// destroyed on mutual accept (promoted into a Room), on any decline, or
// on expiry, whichever comes first.
type PendingMatch struct {
	ID         MatchID
	P1         ConnID // first dequeued; becomes slot 1 on finalize
	P2         ConnID
	P1Accepted bool
	P2Accepted bool
	ExpiresAt  time.Time
}

// Has reports whether the connection is part of this pending match
func (m *PendingMatch) Has(conn ConnID) bool {
	return m.P1 == conn || m.P2 == conn
}

// BothAccepted reports whether both sides have accepted
func (m *PendingMatch) BothAccepted() bool {
	return m.P1Accepted && m.P2Accepted
}
