package process

import "time"

// State is the lifecycle state of a Process.
type State string

// Process states.
const (
	StateIdle     State = "idle"     // created, not started
	StateRunning  State = "running"  // spawned and not yet reaped
	StateStopping State = "stopping" // Stop in progress
	StateExited   State = "exited"   // reaped
	StateError    State = "error"    // failed to start
)

// Info is a snapshot of a Process.
type Info struct {
	ID        string
	State     State
	PID       int
	StartedAt time.Time
	ExitCode  int
	LastError error
}
