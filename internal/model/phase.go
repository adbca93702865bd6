package model

// Phase represents the current stage of a room's state machine.
// Both game modes share the enum; royale never enters PhasePicking.
type Phase string

const (
	PhaseLobby       Phase = "LOBBY"        // Waiting for players to ready up / host to start
	PhasePre         Phase = "PRE"          // Fixed "get ready" countdown, no input accepted
	PhasePicking     Phase = "PICKING"      // 1v1 only: each player picks one letter
	PhaseRacing      Phase = "RACING"       // Letters live, word submissions accepted
	PhaseRoundResult Phase = "ROUND_RESULT" // Fixed display window, no input accepted
	PhaseGameOver    Phase = "GAME_OVER"    // Scores frozen until rematch / play again
)
