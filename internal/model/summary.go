package model

import "time"

// MatchSummary is a lightweight record of a completed match, persisted
// for the recent-games feed. Live game truth never goes through storage.
type MatchSummary struct {
	Code        RoomCode       `json:"code"`
	Mode        GameMode       `json:"mode"`
	Winner      string         `json:"winner"` // display name; empty if no winner
	WinningWord string         `json:"winning_word,omitempty"`
	Scores      map[string]int `json:"scores"` // display name -> final score
	Rounds      int            `json:"rounds,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
}
