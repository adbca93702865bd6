package royale

import "time"

const (
	// NameMaxLength caps display names
	NameMaxLength = 16
)

// Config holds the tunable rules of a royale match
type Config struct {
	// MinWordLength is the minimum accepted word length (stricter than 1v1)
	MinWordLength int
	// MaxLobbySize caps the roster
	MaxLobbySize int
	// DefaultTotalRounds is used when the host starts without a round count
	DefaultTotalRounds int

	// PointSchedule awards points by submission rank; successful
	// submissions past the end of the schedule score the final value
	PointSchedule []int

	// Phase durations
	PreDuration    time.Duration
	RoundDuration  time.Duration
	ResultDuration time.Duration
}

// DefaultConfig returns the standard royale rules
func DefaultConfig() Config {
	return Config{
		MinWordLength:      4,
		MaxLobbySize:       8,
		DefaultTotalRounds: 5,
		PointSchedule:      []int{10, 8, 6, 5, 4, 3, 2, 1},
		PreDuration:        3 * time.Second,
		RoundDuration:      20 * time.Second,
		ResultDuration:     3 * time.Second,
	}
}

// PointsForRank returns the award for the rank-th successful
// submission of a round (zero-based)
func (c Config) PointsForRank(rank int) int {
	if len(c.PointSchedule) == 0 {
		return 0
	}
	if rank >= len(c.PointSchedule) {
		return c.PointSchedule[len(c.PointSchedule)-1]
	}
	return c.PointSchedule[rank]
}
