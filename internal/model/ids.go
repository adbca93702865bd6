package model

// RoomCode is the short public identifier players use to join a room
type RoomCode string

// PlayerKey is the opaque per-player credential generated server-side.
// It is the sole reconnection authentication and is never reused across rooms.
type PlayerKey string

// ConnID identifies a live transport connection. It is transient and
// rebindable; identity always flows through PlayerKey.
type ConnID string

// MatchID identifies a pending matchmaking proposal
type MatchID string

// Role identifies a slot in a 1v1 room
type Role string

const (
	RoleP1 Role = "p1"
	RoleP2 Role = "p2"
)

// Opponent returns the other 1v1 role
func (r Role) Opponent() Role {
	if r == RoleP1 {
		return RoleP2
	}
	return RoleP1
}

// Valid reports whether the role is one of the two 1v1 slots
func (r Role) Valid() bool {
	return r == RoleP1 || r == RoleP2
}

// GameMode distinguishes the two room variants
type GameMode string

const (
	ModeClassic GameMode = "classic"
	ModeRoyale  GameMode = "royale"
)
