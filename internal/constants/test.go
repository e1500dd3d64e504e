package constants

import "time"

// Test constants. Do not use in production code.

const (
	// TestServerStartupDelay is the delay to wait for server startup in integration tests.
	TestServerStartupDelay = 100 * time.Millisecond

	// TestGracefulShutdownWait is the delay to wait for graceful shutdown in tests.
	TestGracefulShutdownWait = 100 * time.Millisecond
)

const (
	// TestConcurrentClientsSmall is the number of concurrent clients for small load tests.
	TestConcurrentClientsSmall = 10

	// TestConcurrentClientsLarge is the number of concurrent clients for large load tests.
	TestConcurrentClientsLarge = 20
)

const (
	// TestMaxPlayers is the max players value used in test fixtures.
	TestMaxPlayers = 1000

	// TestServerPort is the default game server port used in tests.
	TestServerPort = 8180
)
