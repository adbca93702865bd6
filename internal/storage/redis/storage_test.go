package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/wordrace/server/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SummaryKeep = 3

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Dictionary tests

func (s *StorageSuite) TestGetDictionaryWordsWhenEmpty() {
	_, err := s.storage.GetDictionaryWords(s.ctx)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	words := []string{"apple", "banana", "cherry"}
	err := s.storage.SaveDictionaryWords(s.ctx, words)
	s.Require().NoError(err)

	got, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch(words, got)
}

func (s *StorageSuite) TestSaveDictionaryWordsReplaces() {
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"old"})
	_ = s.storage.SaveDictionaryWords(s.ctx, []string{"new", "words"})

	got, err := s.storage.GetDictionaryWords(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]string{"new", "words"}, got)
}

// Match summary tests

func (s *StorageSuite) TestRecentMatchSummariesWhenEmpty() {
	got, err := s.storage.RecentMatchSummaries(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StorageSuite) TestSaveAndGetMatchSummary() {
	summary := &model.MatchSummary{
		Code:        "ABCDEF",
		Mode:        model.ModeClassic,
		Winner:      "Alice",
		WinningWord: "apple",
		Scores:      map[string]int{"Alice": 10, "Bob": 7},
		Rounds:      17,
		CompletedAt: time.Now().UTC().Truncate(time.Second),
	}

	err := s.storage.SaveMatchSummary(s.ctx, summary)
	s.Require().NoError(err)

	got, err := s.storage.RecentMatchSummaries(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(summary.Code, got[0].Code)
	s.Equal(summary.Winner, got[0].Winner)
	s.Equal(summary.Scores, got[0].Scores)
}

func (s *StorageSuite) TestSummariesNewestFirstAndTrimmed() {
	codes := []model.RoomCode{"AAAAAA", "BBBBBB", "CCCCCC", "DDDDDD"}
	for _, code := range codes {
		err := s.storage.SaveMatchSummary(s.ctx, &model.MatchSummary{Code: code})
		s.Require().NoError(err)
	}

	// SummaryKeep is 3, so the oldest record is trimmed away
	got, err := s.storage.RecentMatchSummaries(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(model.RoomCode("DDDDDD"), got[0].Code)
	s.Equal(model.RoomCode("CCCCCC"), got[1].Code)
	s.Equal(model.RoomCode("BBBBBB"), got[2].Code)
}

func (s *StorageSuite) TestMatchesCompletedCountsBeyondTrim() {
	for _, code := range []model.RoomCode{"AAAAAA", "BBBBBB", "CCCCCC", "DDDDDD"} {
		_ = s.storage.SaveMatchSummary(s.ctx, &model.MatchSummary{Code: code})
	}

	count, err := s.storage.MatchesCompleted(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(4), count)
}

func (s *StorageSuite) TestMatchesCompletedWhenEmpty() {
	count, err := s.storage.MatchesCompleted(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(0), count)
}
