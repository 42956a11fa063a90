package factory

import (
	"time"

	"github.com/mcoot/boardbank/internal/config"
	"github.com/mcoot/boardbank/internal/dependencies/mocks"
	"github.com/mcoot/boardbank/internal/msgcat"
	"github.com/mcoot/boardbank/internal/storage/memory"
	"github.com/mcoot/boardbank/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock    *mocks.MockClock
	MockRandom   *mocks.MockRandom
	MockNotifier *mocks.MockNotifier
	Storage      *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(config.Default())
}

// NewTestAppWithConfig creates a test App using the given configuration
func NewTestAppWithConfig(cfg config.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockNotifier := mocks.NewMockNotifier()

	app := newWithDependencies(dependencies{
		games:    store,
		sessions: store,
		clock:    mockClock,
		random:   mockRandom,
		notifier: mockNotifier,
		catalog:  msgcat.Default(),
		logger:   testutil.NopLogger(),
	}, cfg)

	return &TestApp{
		App:          app,
		MockClock:    mockClock,
		MockRandom:   mockRandom,
		MockNotifier: mockNotifier,
		Storage:      store,
	}
}
