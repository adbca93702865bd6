package factory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wordrace/server/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.LoadTestDictionary())
}

// frame routes a raw intent through the gateway like a websocket client
func (s *IntegrationSuite) frame(conn model.ConnID, intent, data string) {
	msg := fmt.Sprintf(`{"type":%q,"data":%s}`, intent, data)
	s.app.Gateway.HandleMessage(s.ctx, conn, []byte(msg))
}

// Test: Complete 1v1 match from room creation to game over and
// rematch, driven entirely through wire frames
func (s *IntegrationSuite) TestCompleteMatchFlow() {
	s.app.MockRandom.QueueString("ROOM01", "k1")
	s.frame("conn-1", "create_room", `{}`)
	s.Equal(1, s.app.MatchController.RoomCount())

	s.app.MockRandom.QueueString("k2")
	s.frame("conn-2", "join_room", `{"code":"ROOM01","name":"Bea"}`)

	s.frame("conn-1", "player_ready", `{"code":"ROOM01","playerKey":"p1_k1"}`)
	s.frame("conn-2", "player_ready", `{"code":"ROOM01","playerKey":"p2_k2"}`)

	// First match in a room starts with the PRE countdown
	s.Require().True(s.app.MockScheduler.FireNext())

	// Player 1 wins every round until the match is decided
	for round := 0; round < 10; round++ {
		if round > 0 {
			// Result window elapses into the next picking phase
			s.Require().True(s.app.MockScheduler.FireNext())
		}
		s.frame("conn-1", "submit_letter", `{"code":"ROOM01","playerKey":"p1_k1","letter":"C"}`)
		s.frame("conn-2", "submit_letter", `{"code":"ROOM01","playerKey":"p2_k2","letter":"T"}`)
		s.frame("conn-1", "submit_word", `{"code":"ROOM01","playerKey":"p1_k1","word":"CART"}`)
	}

	over := s.app.Sink.LastOfType("conn-1", model.EventMatchOver)
	s.Require().NotNil(over)
	payload := over.Payload.(model.MatchOverPayload)
	s.Equal(model.RoleP1, payload.WinnerRole)
	s.Equal("cart", payload.WinningWord)
	s.Equal(10, payload.Scores.P1)
	s.Equal(0, payload.Scores.P2)

	// The completed match is recorded for the recent feed
	summaries, err := s.app.Storage.RecentMatchSummaries(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(summaries, 1)
	s.Equal(model.ModeClassic, summaries[0].Mode)
	s.Equal("cart", summaries[0].WinningWord)

	// Mutual rematch resets the room in place
	s.frame("conn-1", "request_rematch", `{"code":"ROOM01","playerKey":"p1_k1"}`)
	s.frame("conn-2", "request_rematch", `{"code":"ROOM01","playerKey":"p2_k2"}`)

	s.NotNil(s.app.Sink.LastOfType("conn-1", model.EventRematchStarted))
	s.Equal(1, s.app.MatchController.RoomCount())
}

// Test: Matchmaking handshake finalizes into a playable room
func (s *IntegrationSuite) TestMatchmakingToRoom() {
	s.frame("conn-1", "join_queue", `{}`)
	s.frame("conn-2", "join_queue", `{}`)
	s.Equal(0, s.app.MatchmakingController.QueueLen())

	found := s.app.Sink.LastOfType("conn-1", model.EventMatchFound)
	s.Require().NotNil(found)
	matchID := found.Payload.(model.MatchFoundPayload).MatchID

	s.app.MockRandom.QueueString("ROOM01", "k1", "k2")
	s.frame("conn-1", "accept_match", fmt.Sprintf(`{"matchId":%q}`, matchID))
	s.frame("conn-2", "accept_match", fmt.Sprintf(`{"matchId":%q}`, matchID))

	s.Equal(1, s.app.MatchController.RoomCount())
	s.Equal(0, s.app.MatchmakingController.PendingCount())
	s.NotNil(s.app.Sink.LastOfType("conn-1", model.EventRoomCreated))
	s.NotNil(s.app.Sink.LastOfType("conn-2", model.EventJoinedRoom))
}

// Test: Royale lobby fills, plays a round, and records rank scores
func (s *IntegrationSuite) TestRoyaleRoundFlow() {
	s.app.MockRandom.QueueString("LOBBY1", "h")
	s.frame("conn-1", "join_royale", `{"name":"Hana"}`)
	s.Equal(1, s.app.RoyaleController.LobbyCount())

	s.app.MockRandom.QueueString("k2")
	s.frame("conn-2", "join_royale", `{"name":"Bea"}`)

	s.frame("conn-1", "start_royale", `{"code":"LOBBY1","totalRounds":2}`)

	// PRE elapses into the first racing round
	s.app.MockRandom.QueueLetter("S", "N")
	s.Require().True(s.app.MockScheduler.FireNext())

	s.frame("conn-1", "submit_word", `{"code":"LOBBY1","playerKey":"r_h","word":"STAIN"}`)
	s.frame("conn-2", "submit_word", `{"code":"LOBBY1","playerKey":"r_k2","word":"swan"}`)

	state := s.app.Sink.LastOfType("conn-1", model.EventRoyaleState)
	s.Require().NotNil(state)
	snapshot := state.Payload.(model.RoyaleStatePayload)
	s.Equal(model.PhaseRoundResult, snapshot.Phase)
	s.Equal("stain", snapshot.TopWord)
	s.Require().Len(snapshot.Players, 2)
	s.Equal("Hana", snapshot.Players[0].Name)
	s.Equal(10, snapshot.Players[0].Score)
	s.Equal("Bea", snapshot.Players[1].Name)
	s.Equal(8, snapshot.Players[1].Score)
}
