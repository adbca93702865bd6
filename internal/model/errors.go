package model

import "errors"

// Common errors used across the application. Anything not listed here is
// treated as a silent phase-guard rejection, not a user-facing failure.
var (
	// Room errors (1v1)
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyJoined = errors.New("player is already in this room")

	// Session errors
	ErrInvalidSession = errors.New("invalid session")
	ErrRoomGone       = errors.New("room no longer exists")

	// Royale errors
	ErrNotHost             = errors.New("player is not the host")
	ErrInsufficientPlayers = errors.New("insufficient connected players to start")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrGameInProgress      = errors.New("game already in progress")

	// Matchmaking errors
	ErrMatchNotFound = errors.New("pending match not found")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)
