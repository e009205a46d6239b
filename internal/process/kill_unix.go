//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the Chromium process group rooted at pid.
// Renderer and GPU helpers inherit the group, so a crashed PDF export leaves
// no orphans behind.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// launcher.Kill still runs after this, errors are irrelevant
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
