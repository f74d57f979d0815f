package platform

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// KillTree terminates a process together with all of its descendants.
// yt-dlp spawns helper processes (ffmpeg, aria2c) that must not outlive a
// cancelled session. Children are killed leaf-first so orphans cannot be
// reparented mid-walk.
func KillTree(pid int) error {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("failed to inspect process %d: %w", pid, err)
	}

	killDescendants(proc)

	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to kill process %d: %w", pid, err)
	}
	return nil
}

func killDescendants(proc *process.Process) {
	children, err := proc.Children()
	if err != nil {
		// No children or the process is already gone.
		return
	}
	for _, child := range children {
		killDescendants(child)
		_ = child.Kill()
	}
}
