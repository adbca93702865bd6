package redis

import "fmt"

// Key prefix for all game-related data
const keyPrefix = "wordrace"

// dictionaryKey returns the Redis key for the dictionary word set
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}

// summariesKey returns the Redis key for the list of completed matches
func summariesKey() string {
	return fmt.Sprintf("%s:summaries", keyPrefix)
}

// completedCounterKey returns the Redis key for the completed-match counter
func completedCounterKey() string {
	return fmt.Sprintf("%s:completed_count", keyPrefix)
}
