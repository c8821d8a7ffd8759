package pipeline

import (
	"io"
	"os"
	"testing"

	appLog "blockcal/internal/log"
)

func TestMain(m *testing.M) {
	// Fetch/parse logging is noise in test output.
	appLog.SetOutput(io.Discard)
	os.Exit(m.Run())
}
