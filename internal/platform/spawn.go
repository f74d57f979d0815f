package platform

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Stream buffer sizes
const (
	eventBufferSize  = 64
	maxLineBytes     = 1024 * 1024
	initialLineBytes = 64 * 1024
)

// ProcessEventKind discriminates the multiplexed process event stream
type ProcessEventKind int

const (
	// EventStdoutLine carries one line read from the child's standard output
	EventStdoutLine ProcessEventKind = iota

	// EventStderrLine carries one line read from the child's standard error
	EventStderrLine

	// EventTerminated is the final event: the child was reaped and the
	// event channel closes after it
	EventTerminated
)

// ProcessEvent is one entry of a spawned process's multiplexed event stream.
// Lines from the same stream arrive in the order the process produced them;
// interleaving across streams is not guaranteed.
type ProcessEvent struct {
	Kind     ProcessEventKind
	Line     string
	ExitCode int
}

// ProcessHandle exposes a running child process to the supervisor and the
// cancellation path.
type ProcessHandle interface {
	PID() int
	Kill() error
	Events() <-chan ProcessEvent
}

// Spawner creates child processes with line-multiplexed output
type Spawner interface {
	Spawn(name string, args []string) (ProcessHandle, error)
}

// ExecSpawner spawns real OS processes via os/exec
type ExecSpawner struct{}

// NewExecSpawner creates an ExecSpawner
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{}
}

// Spawn starts the process and begins draining both output streams into the
// handle's event channel. The channel delivers every line, then exactly one
// EventTerminated, then closes.
func (s *ExecSpawner) Spawn(name string, args []string) (ProcessHandle, error) {
	cmd := exec.Command(name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	h := &execHandle{
		cmd:    cmd,
		events: make(chan ProcessEvent, eventBufferSize),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go h.scanLines(stdout, EventStdoutLine, &wg)
	go h.scanLines(stderr, EventStderrLine, &wg)

	go func() {
		wg.Wait()
		err := cmd.Wait()
		h.events <- ProcessEvent{Kind: EventTerminated, ExitCode: exitCode(err)}
		close(h.events)
	}()

	return h, nil
}

type execHandle struct {
	cmd    *exec.Cmd
	events chan ProcessEvent
}

func (h *execHandle) PID() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

func (h *execHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

func (h *execHandle) Events() <-chan ProcessEvent {
	return h.events
}

func (h *execHandle) scanLines(r io.Reader, kind ProcessEventKind, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBytes), maxLineBytes)
	for scanner.Scan() {
		h.events <- ProcessEvent{Kind: kind, Line: scanner.Text()}
	}
	if err := scanner.Err(); err != nil {
		// An oversized line or a read failure truncates the stream; surface
		// it as a stderr-style line so the truncation stays visible.
		h.events <- ProcessEvent{Kind: EventStderrLine, Line: "output stream error: " + err.Error()}
	}
}

// exitCode maps cmd.Wait's result to the child's exit code; -1 when the
// process was killed or the error is not an exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
