//go:build windows

package process

import (
	"errors"
	"os/exec"
)

func setProcAttr(*exec.Cmd) {}

// interrupt is unsupported for console-less children on Windows; Stop
// falls through to kill.
func interrupt(*exec.Cmd) error {
	return errors.ErrUnsupported
}

func kill(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
