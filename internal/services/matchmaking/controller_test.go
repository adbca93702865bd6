package matchmaking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/wordrace/server/internal/dependencies/mocks"
	"github.com/wordrace/server/internal/model"
	"github.com/wordrace/server/internal/testutil"
)

const (
	conn1 = model.ConnID("conn-1")
	conn2 = model.ConnID("conn-2")
	conn3 = model.ConnID("conn-3")
)

// stubCreator records finalization calls
type stubCreator struct {
	calls [][2]model.ConnID
	err   error
}

func (c *stubCreator) CreateMatchedRoom(ctx context.Context, p1, p2 model.ConnID) (model.RoomCode, error) {
	c.calls = append(c.calls, [2]model.ConnID{p1, p2})
	if c.err != nil {
		return "", c.err
	}
	return "ROOM01", nil
}

type ControllerSuite struct {
	suite.Suite
	sink       *testutil.RecordingSink
	clock      *mocks.MockClock
	sched      *mocks.ManualScheduler
	creator    *stubCreator
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.sink = testutil.NewRecordingSink()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.sched = mocks.NewManualScheduler()
	s.creator = &stubCreator{}
	s.ctx = context.Background()

	s.controller = NewController(DefaultConfig(), s.sink, s.creator, s.clock, s.sched, testutil.NopLogger())
}

// enqueuePair queues two connections and returns the proposed match id
func (s *ControllerSuite) enqueuePair() model.MatchID {
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn1))
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn2))

	ev := s.sink.LastOfType(conn1, model.EventMatchFound)
	s.Require().NotNil(ev)
	return ev.Payload.(model.MatchFoundPayload).MatchID
}

func (s *ControllerSuite) lastReason(conn model.ConnID) string {
	ev := s.sink.LastOfType(conn, model.EventMatchCancelled)
	s.Require().NotNil(ev)
	return ev.Payload.(model.MatchCancelledPayload).Reason
}

func (s *ControllerSuite) TestTwoEnqueuesPropose() {
	matchID := s.enqueuePair()

	ev := s.sink.LastOfType(conn2, model.EventMatchFound)
	s.Require().NotNil(ev)
	payload := ev.Payload.(model.MatchFoundPayload)
	s.Equal(matchID, payload.MatchID)
	s.Equal(s.clock.Now().Add(DefaultConfig().AcceptTimeout).UnixMilli(), payload.ExpiresAt)

	s.Equal(0, s.controller.QueueLen())
	s.Equal(1, s.controller.PendingCount())
}

func (s *ControllerSuite) TestEnqueueIsIdempotent() {
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn1))
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn1))

	// A connection never pairs with itself
	s.Equal(1, s.controller.QueueLen())
	s.Equal(0, s.controller.PendingCount())
	s.Nil(s.sink.LastOfType(conn1, model.EventMatchFound))
}

func (s *ControllerSuite) TestThirdEnqueueWaits() {
	s.enqueuePair()
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn3))

	s.Equal(1, s.controller.QueueLen())
	s.Equal(1, s.controller.PendingCount())
}

func (s *ControllerSuite) TestLeaveQueue() {
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn1))
	s.Require().NoError(s.controller.LeaveQueue(s.ctx, conn1))

	s.Equal(0, s.controller.QueueLen())

	// conn2 now waits alone
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn2))
	s.Equal(0, s.controller.PendingCount())
}

func (s *ControllerSuite) TestAcceptStatusBroadcast() {
	matchID := s.enqueuePair()

	s.Require().NoError(s.controller.Accept(s.ctx, conn1, matchID))

	for _, conn := range []model.ConnID{conn1, conn2} {
		ev := s.sink.LastOfType(conn, model.EventMatchAcceptStatus)
		s.Require().NotNil(ev)
		payload := ev.Payload.(model.MatchAcceptStatusPayload)
		s.True(payload.P1)
		s.False(payload.P2)
	}
	s.Empty(s.creator.calls)
}

func (s *ControllerSuite) TestMutualAcceptFinalizes() {
	matchID := s.enqueuePair()

	s.Require().NoError(s.controller.Accept(s.ctx, conn1, matchID))
	s.Require().NoError(s.controller.Accept(s.ctx, conn2, matchID))

	// First dequeued becomes slot 1
	s.Require().Len(s.creator.calls, 1)
	s.Equal([2]model.ConnID{conn1, conn2}, s.creator.calls[0])
	s.Equal(0, s.controller.PendingCount())
}

func (s *ControllerSuite) TestAcceptFromOutsiderIgnored() {
	matchID := s.enqueuePair()

	s.Require().NoError(s.controller.Accept(s.ctx, conn3, matchID))
	s.Nil(s.sink.LastOfType(conn1, model.EventMatchAcceptStatus))
}

func (s *ControllerSuite) TestDeclineCancelsBothSides() {
	matchID := s.enqueuePair()

	s.Require().NoError(s.controller.Decline(s.ctx, conn2, matchID))

	s.Equal(ReasonOpponentDeclined, s.lastReason(conn1))
	s.Equal(ReasonYouDeclined, s.lastReason(conn2))
	s.Equal(0, s.controller.PendingCount())

	// Neither side is put back in the queue
	s.Equal(0, s.controller.QueueLen())
}

func (s *ControllerSuite) TestTimeoutCancelsBothSides() {
	s.enqueuePair()

	s.Require().True(s.sched.FireNext())

	s.Equal(ReasonTimedOut, s.lastReason(conn1))
	s.Equal(ReasonTimedOut, s.lastReason(conn2))
	s.Equal(0, s.controller.PendingCount())
}

func (s *ControllerSuite) TestPartialAcceptanceStillTimesOut() {
	matchID := s.enqueuePair()
	s.Require().NoError(s.controller.Accept(s.ctx, conn1, matchID))

	s.Require().True(s.sched.FireNext())

	s.Equal(ReasonTimedOut, s.lastReason(conn1))
	s.Empty(s.creator.calls)
}

func (s *ControllerSuite) TestMutualAcceptStopsTimeout() {
	matchID := s.enqueuePair()
	s.Require().NoError(s.controller.Accept(s.ctx, conn1, matchID))
	s.Require().NoError(s.controller.Accept(s.ctx, conn2, matchID))

	s.False(s.sched.FireNext())
	s.Nil(s.sink.LastOfType(conn1, model.EventMatchCancelled))
}

func (s *ControllerSuite) TestDisconnectRemovesFromQueue() {
	s.Require().NoError(s.controller.JoinQueue(s.ctx, conn1))

	s.controller.Disconnect(s.ctx, conn1)
	s.Equal(0, s.controller.QueueLen())
}

func (s *ControllerSuite) TestDisconnectCancelsPendingMatch() {
	s.enqueuePair()

	s.controller.Disconnect(s.ctx, conn1)

	s.Equal(ReasonOpponentDeclined, s.lastReason(conn2))
	s.Equal(0, s.controller.PendingCount())
}

func (s *ControllerSuite) TestDeclineUnknownMatchIgnored() {
	err := s.controller.Decline(s.ctx, conn1, "nope")
	s.NoError(err)
}
