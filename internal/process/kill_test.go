package process

// Notes:
// - Real kill behavior is covered by the PDF exporter tests that launch
//   Chromium. Here we only check that invalid PIDs are ignored.
// - PID 0 and negative PIDs are rejected before any syscall, so calling with
//   them is safe.

import "testing"

// ---------------------------------------------------------------------------
// TestKillProcessGroup - Invalid PID Handling
// ---------------------------------------------------------------------------

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{999999999, 0, -1} {
		KillProcessGroup(pid)
	}
}
