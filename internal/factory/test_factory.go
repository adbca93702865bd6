package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/wordrace/server/internal/dependencies/mocks"
	"github.com/wordrace/server/internal/services/match"
	"github.com/wordrace/server/internal/services/matchmaking"
	"github.com/wordrace/server/internal/services/royale"
	"github.com/wordrace/server/internal/storage/memory"
	"github.com/wordrace/server/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MockScheduler *mocks.ManualScheduler
	MemoryStorage *memory.Storage
	Sink          *testutil.RecordingSink
}

// NewTestApp creates an App configured for testing with mocked
// dependencies. Engine events go to the recording sink instead of the
// websocket hub.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockScheduler := mocks.NewManualScheduler()
	sink := testutil.NewRecordingSink()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	cfgs := configs{
		match:       match.DefaultConfig(),
		royale:      royale.DefaultConfig(),
		matchmaking: matchmaking.DefaultConfig(),
	}
	app := newWithDependencies(store, mockClock, mockRandom, mockScheduler, cfgs, sink, logger)

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MockScheduler: mockScheduler,
		MemoryStorage: store,
		Sink:          sink,
	}
}

// LoadTestDictionary loads a small dictionary for testing
func (t *TestApp) LoadTestDictionary() error {
	words := []string{
		"cat", "cart", "cut", "coat", "chat", "cost", "cant",
		"tot", "tat", "tart", "taut", "test", "toast",
		"sun", "stun", "swan", "stain", "satin", "scan",
		"nests", "nails", "notes", "table", "elect",
	}
	return t.DictionaryService.LoadWords(words)
}
