package process

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/smazurov/camctl/internal/logging"
)

// LogParser maps a line of subprocess output to a level (fatal, error,
// warning, info, debug) and the message to log.
type LogParser func(line string) (level, msg string)

// Option configures a Process.
type Option func(*Process)

// WithLogParser routes stderr lines through parser to logger.
func WithLogParser(logger logging.Logger, parser LogParser) Option {
	return func(p *Process) {
		p.outputLogger = logger
		p.logParser = parser
	}
}

// WithGracefulTimeout sets how long Stop waits after the interrupt before
// killing. Zero skips the interrupt.
func WithGracefulTimeout(d time.Duration) Option {
	return func(p *Process) {
		p.gracefulTimeout = d
	}
}

// WithKillTimeout sets how long Stop waits for the process to be reaped
// after the kill signal.
func WithKillTimeout(d time.Duration) Option {
	return func(p *Process) {
		p.killTimeout = d
	}
}

// Process is one run of a subprocess. It cannot be restarted.
type Process struct {
	id              string
	args            []string
	logger          logging.Logger
	outputLogger    logging.Logger
	logParser       LogParser
	gracefulTimeout time.Duration
	killTimeout     time.Duration

	mu        sync.Mutex
	state     State
	cmd       *exec.Cmd
	stdout    *os.File
	startedAt time.Time
	waitErr   error
	done      chan struct{}
	stopOnce  sync.Once
}

// New creates a Process for args[0] with the remaining arguments.
func New(id string, args []string, logger logging.Logger, opts ...Option) *Process {
	p := &Process{
		id:              id,
		args:            args,
		logger:          logger,
		gracefulTimeout: 500 * time.Millisecond,
		killTimeout:     2 * time.Second,
		state:           StateIdle,
		done:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start spawns the subprocess. Its stdout is available from Stdout until
// the process exits or Stop is called.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return fmt.Errorf("process %s already started", p.id)
	}
	if len(p.args) == 0 {
		p.state = StateError
		return errors.New("empty command")
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		p.state = StateError
		return fmt.Errorf("stdout pipe: %w", err)
	}

	cmd := exec.Command(p.args[0], p.args[1:]...)
	setProcAttr(cmd)
	cmd.Stdout = stdoutW
	stderr := &lineWriter{emit: p.logLine}
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		p.state = StateError
		p.logger.Error("Failed to start process", "id", p.id, "command", p.args[0], "error", err)
		return err
	}
	// The child holds its own copy; closing ours lets reads see EOF on exit.
	stdoutW.Close()

	p.cmd = cmd
	p.stdout = stdoutR
	p.startedAt = time.Now()
	p.state = StateRunning
	p.logger.Info("Process started", "id", p.id, "pid", cmd.Process.Pid, "args", p.args)

	go func() {
		err := cmd.Wait()
		stderr.flush()

		p.mu.Lock()
		p.waitErr = err
		p.state = StateExited
		p.mu.Unlock()

		p.logger.Info("Process exited", "id", p.id, "exit_code", exitCodeFromError(err))
		close(p.done)
	}()

	return nil
}

// Stdout returns the read end of the subprocess's stdout. Reads return
// io.EOF once the process has exited, or an error after Stop.
func (p *Process) Stdout() io.Reader {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdout == nil {
		return eofReader{}
	}
	return p.stdout
}

// Done is closed once the process has been reaped.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// ID returns the identifier given to New.
func (p *Process) ID() string {
	return p.id
}

// Info returns a snapshot of the process state.
func (p *Process) Info() Info {
	p.mu.Lock()
	defer p.mu.Unlock()

	info := Info{
		ID:        p.id,
		State:     p.state,
		StartedAt: p.startedAt,
		LastError: p.waitErr,
	}
	if p.cmd != nil && p.cmd.Process != nil {
		info.PID = p.cmd.Process.Pid
	}
	if p.state == StateExited {
		info.ExitCode = exitCodeFromError(p.waitErr)
	}
	return info
}

// Stop interrupts the process, kills it if it has not exited within the
// graceful timeout, and releases the stdout pipe. It is idempotent and
// returns the exit code, -1 when the process was terminated by a signal.
func (p *Process) Stop() int {
	p.stopOnce.Do(p.stop)

	p.mu.Lock()
	defer p.mu.Unlock()
	return exitCodeFromError(p.waitErr)
}

func (p *Process) stop() {
	p.mu.Lock()
	cmd := p.cmd
	stdout := p.stdout
	if p.state == StateRunning {
		p.state = StateStopping
	}
	p.mu.Unlock()

	if cmd == nil {
		return
	}
	defer stdout.Close()

	select {
	case <-p.done:
		return
	default:
	}

	if p.gracefulTimeout > 0 {
		if err := interrupt(cmd); err == nil {
			select {
			case <-p.done:
				return
			case <-time.After(p.gracefulTimeout):
				p.logger.Warn("Graceful stop timed out, killing", "id", p.id, "timeout", p.gracefulTimeout)
			}
		}
	}

	if err := kill(cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Error("Failed to kill process", "id", p.id, "error", err)
	}

	select {
	case <-p.done:
	case <-time.After(p.killTimeout):
		p.logger.Error("Process did not exit after kill", "id", p.id, "timeout", p.killTimeout)
	}
}

func (p *Process) logLine(line string) {
	logger := p.outputLogger
	if logger == nil {
		logger = p.logger
	}

	level, msg := "info", line
	if p.logParser != nil {
		level, msg = p.logParser(line)
	}

	switch level {
	case "fatal", "error":
		logger.Error(msg, "id", p.id)
	case "warning":
		logger.Warn(msg, "id", p.id)
	case "debug", "trace":
		logger.Debug(msg, "id", p.id)
	default:
		logger.Info(msg, "id", p.id)
	}
}

// exitCodeFromError returns 0 for nil, the exit status for an ExitError
// (-1 if signalled), and 1 otherwise.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// lineWriter splits written bytes into lines.
type lineWriter struct {
	mu   sync.Mutex
	buf  []byte
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		line := bytes.TrimRight(w.buf[:i], "\r")
		if len(line) > 0 {
			w.emit(string(line))
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *lineWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emit(string(w.buf))
		w.buf = nil
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
