//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup terminates the Chromium process tree rooted at pid.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// /T walks the child tree
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
