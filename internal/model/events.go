package model

import "time"

// EventType identifies an outbound event on the wire
type EventType string

const (
	// Room lifecycle
	EventRoomCreated  EventType = "room_created"
	EventJoinedRoom   EventType = "joined_room"
	EventRejoinedRoom EventType = "rejoined_room"
	EventRejoinFailed EventType = "rejoin_failed"
	EventSyncState    EventType = "sync_state"
	EventErrorMessage EventType = "error_message"

	// 1v1 gameplay
	EventNamesUpdate    EventType = "names_update"
	EventReadyStatus    EventType = "ready_status"
	EventPreGame        EventType = "pre_game"
	EventPickStart      EventType = "pick_start"
	EventRoundStart     EventType = "round_start"
	EventFailedAttempt  EventType = "failed_attempt"
	EventRoundResult    EventType = "round_result"
	EventMatchOver      EventType = "match_over"
	EventOpponentJoined EventType = "opponent_joined"
	EventOpponentLeft   EventType = "opponent_left"
	EventOpponentTyping EventType = "opponent_typing"
	EventRematchStatus  EventType = "rematch_status"
	EventRematchStarted EventType = "rematch_started"

	// Royale
	EventRoyaleState EventType = "royale_state_update"

	// Matchmaking
	EventMatchFound        EventType = "match_found"
	EventMatchAcceptStatus EventType = "match_accept_status"
	EventMatchCancelled    EventType = "match_cancelled"

	// Presence
	EventOnlineCount EventType = "online_count"
)

// Event is an outbound message destined for one or more connections
type Event struct {
	Type    EventType
	Payload any
}

// Sink delivers events to live connections. Engines compute the
// recipients themselves; the sink is pure fan-out.
type Sink interface {
	ToConn(conn ConnID, ev Event)
	ToConns(conns []ConnID, ev Event)
}

// Millis converts a deadline to the wire representation (unix ms).
// Zero times map to 0 so clients can treat "no deadline" uniformly.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// RoomCreatedPayload acknowledges room creation to the creator
type RoomCreatedPayload struct {
	Code      RoomCode  `json:"code"`
	Role      Role      `json:"role"`
	PlayerKey PlayerKey `json:"playerKey"`
}

// JoinedRoomPayload acknowledges a join to the joining player
type JoinedRoomPayload struct {
	Code      RoomCode  `json:"code"`
	Mode      GameMode  `json:"mode"`
	Role      Role      `json:"role,omitempty"` // classic only
	PlayerKey PlayerKey `json:"playerKey"`
	IsHost    bool      `json:"isHost,omitempty"` // royale only
}

// RejoinedRoomPayload acknowledges a successful rejoin
type RejoinedRoomPayload struct {
	Code      RoomCode  `json:"code"`
	Mode      GameMode  `json:"mode"`
	Role      Role      `json:"role,omitempty"`
	PlayerKey PlayerKey `json:"playerKey"`
}

// DeadlinePayload carries a bare phase deadline (pre_game, pick_start)
type DeadlinePayload struct {
	EndsAt int64 `json:"endsAt"`
}

// RoundStartPayload announces the racing phase
type RoundStartPayload struct {
	Letters []string `json:"letters"`
	EndsAt  int64    `json:"endsAt"`
	Round   int      `json:"round,omitempty"` // royale only
}

// FailedAttemptPayload echoes an invalid submission to the whole room
type FailedAttemptPayload struct {
	By     string `json:"by"` // role (classic) or display name (royale)
	Word   string `json:"word"`
	Reason string `json:"reason"`
}

// RoundResultPayload closes a 1v1 round (winner may be empty on timeout)
type RoundResultPayload struct {
	WinnerRole Role      `json:"winnerRole,omitempty"`
	Word       string    `json:"word,omitempty"`
	Scores     ScorePair `json:"scores"`
	EndsAt     int64     `json:"endsAt"`
}

// MatchOverPayload ends a 1v1 match
type MatchOverPayload struct {
	WinnerRole  Role      `json:"winnerRole"`
	WinningWord string    `json:"winningWord"`
	Scores      ScorePair `json:"scores"`
}

// TypingPayload relays the opponent's typing indicator
type TypingPayload struct {
	Typing bool `json:"typing"`
}

// RematchStartedPayload signals both sides agreed to a rematch
type RematchStartedPayload struct {
	Scores ScorePair `json:"scores"`
}

// RoyalePlayerView is one leaderboard row in royale snapshots
type RoyalePlayerView struct {
	Name          string `json:"name"`
	Score         int    `json:"score"`
	IsHost        bool   `json:"isHost"`
	Connected     bool   `json:"connected"`
	Ready         bool   `json:"ready"`
	FinishedRound bool   `json:"finishedRound"`
	RoundPoints   int    `json:"roundPoints"`
}

// RoyaleStatePayload is the full royale snapshot broadcast after every
// state change; clients are pure renderers of it
type RoyaleStatePayload struct {
	Phase        Phase              `json:"phase"`
	Players      []RoyalePlayerView `json:"players"`
	Round        int                `json:"round"`
	TotalRounds  int                `json:"totalRounds"`
	Letters      []string           `json:"letters"`
	TopWord      string             `json:"topWord,omitempty"`
	PreEndsAt    int64              `json:"preEndsAt"`
	RoundEndsAt  int64              `json:"roundEndsAt"`
	ResultEndsAt int64              `json:"resultEndsAt"`
}

// SyncStatePayload is the full 1v1 snapshot sent on reconnect
type SyncStatePayload struct {
	Code         RoomCode  `json:"code"`
	Role         Role      `json:"role"`
	Phase        Phase     `json:"phase"`
	Names        NamePair  `json:"names"`
	Scores       ScorePair `json:"scores"`
	Ready        FlagPair  `json:"ready"`
	Rematch      FlagPair  `json:"rematch"`
	Letters      []string  `json:"letters"`
	PreEndsAt    int64     `json:"preEndsAt"`
	PickEndsAt   int64     `json:"pickEndsAt"`
	RoundEndsAt  int64     `json:"roundEndsAt"`
	ResultEndsAt int64     `json:"resultEndsAt"`
	WinningWord  string    `json:"winningWord,omitempty"`
}

// MatchFoundPayload proposes a matchmade game to both sides
type MatchFoundPayload struct {
	MatchID   MatchID `json:"matchId"`
	ExpiresAt int64   `json:"expiresAt"`
}

// MatchAcceptStatusPayload mirrors live accept state to both sides
type MatchAcceptStatusPayload struct {
	MatchID MatchID `json:"matchId"`
	P1      bool    `json:"p1"`
	P2      bool    `json:"p2"`
}

// MatchCancelledPayload ends a pending match without a game
type MatchCancelledPayload struct {
	Reason string `json:"reason"`
}

// ErrorMessagePayload surfaces a user-facing rejection. The same shape
// is used for rejoin_failed.
type ErrorMessagePayload struct {
	Message string `json:"message"`
}

// OnlineCountPayload carries the process-wide connected-client count
type OnlineCountPayload struct {
	Count int `json:"count"`
}
