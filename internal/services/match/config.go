package match

import "time"

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// NameMaxLength caps display names
	NameMaxLength = 16
)

// Config holds the tunable rules of a 1v1 match
type Config struct {
	// WinningScore is the score that ends the match
	WinningScore int
	// MinWordLength is the minimum accepted word length
	MinWordLength int

	// Phase durations
	PreDuration    time.Duration
	PickDuration   time.Duration
	RoundDuration  time.Duration
	ResultDuration time.Duration

	// ReconnectGrace is how long a dropped player's slot is held open
	ReconnectGrace time.Duration
}

// DefaultConfig returns the standard match rules
func DefaultConfig() Config {
	return Config{
		WinningScore:   10,
		MinWordLength:  3,
		PreDuration:    3 * time.Second,
		PickDuration:   5 * time.Second,
		RoundDuration:  20 * time.Second,
		ResultDuration: 3 * time.Second,
		ReconnectGrace: 8 * time.Second,
	}
}
