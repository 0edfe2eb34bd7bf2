//go:build windows

package synth

import (
	"fmt"
	"os/exec"
)

// Windows has no SIGSTOP/SIGCONT, so eSpeak cannot be paused there.
func pauseProcess(cmd *exec.Cmd) error {
	return fmt.Errorf("pause not supported on Windows")
}

func resumeProcess(cmd *exec.Cmd) error {
	return fmt.Errorf("resume not supported on Windows")
}
