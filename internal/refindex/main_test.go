package refindex

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no goroutines leak from the worker pool in any test in
// this package.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
