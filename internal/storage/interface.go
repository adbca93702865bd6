package storage

import (
	"context"

	"github.com/wordrace/server/internal/model"
)

// Storage defines the interface for data persistence. Live match state
// is owned by the in-process engines and never goes through here; this
// covers the dictionary word list and completed match records only.
type Storage interface {
	// Dictionary operations
	GetDictionaryWords(ctx context.Context) ([]string, error)
	SaveDictionaryWords(ctx context.Context, words []string) error

	// Match summary operations
	SaveMatchSummary(ctx context.Context, summary *model.MatchSummary) error
	RecentMatchSummaries(ctx context.Context, limit int) ([]*model.MatchSummary, error)
	MatchesCompleted(ctx context.Context) (int64, error)
}
