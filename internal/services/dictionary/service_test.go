package dictionary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/wordrace/server/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestIsNotLoadedByDefault() {
	s.False(s.service.IsLoaded())
	s.Equal(0, s.service.WordCount())
}

func (s *ServiceSuite) TestLoadWords() {
	words := []string{"apple", "banana", "cherry"}
	err := s.service.LoadWords(words)
	s.Require().NoError(err)

	s.True(s.service.IsLoaded())
	s.Equal(3, s.service.WordCount())
}

func (s *ServiceSuite) TestIsEnglishWordAfterLoading() {
	words := []string{"apple", "banana", "cherry"}
	_ = s.service.LoadWords(words)

	s.True(s.service.IsEnglishWord("apple"))
	s.True(s.service.IsEnglishWord("banana"))
	s.True(s.service.IsEnglishWord("cherry"))
	s.False(s.service.IsEnglishWord("grape"))
}

func (s *ServiceSuite) TestIsEnglishWordCaseInsensitive() {
	words := []string{"Apple", "BANANA"}
	_ = s.service.LoadWords(words)

	s.True(s.service.IsEnglishWord("apple"))
	s.True(s.service.IsEnglishWord("APPLE"))
	s.True(s.service.IsEnglishWord("Apple"))
	s.True(s.service.IsEnglishWord("banana"))
	s.True(s.service.IsEnglishWord("BANANA"))
}

func (s *ServiceSuite) TestIsEnglishWordWhenNotLoaded() {
	s.False(s.service.IsEnglishWord("apple"))
}

func (s *ServiceSuite) TestLoadFromStorage() {
	// Pre-populate storage with words
	words := []string{"test", "word", "example"}
	err := s.storage.SaveDictionaryWords(s.ctx, words)
	s.Require().NoError(err)

	err = s.service.LoadFromStorage(s.ctx)
	s.Require().NoError(err)

	s.True(s.service.IsLoaded())
	s.Equal(3, s.service.WordCount())
	s.True(s.service.IsEnglishWord("test"))
}

func (s *ServiceSuite) TestLoadFromStorageWhenEmpty() {
	err := s.service.LoadFromStorage(s.ctx)
	s.ErrorIs(err, ErrDictionaryNotLoaded)
}
