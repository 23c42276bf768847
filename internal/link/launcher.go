package link

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
)

// Launcher starts helper commands without waiting for them.
type Launcher interface {
	Launch(name string, args ...string) error
}

// ExecLauncher runs helpers as child processes. A goroutine per child
// reaps it when it exits.
type ExecLauncher struct {
	logger  *slog.Logger
	running atomic.Int32
	wg      sync.WaitGroup
	command func(name string, args ...string) *exec.Cmd
}

// NewExecLauncher creates a launcher that logs helper exits to l.
func NewExecLauncher(l *slog.Logger) *ExecLauncher {
	if l == nil {
		l = slog.Default()
	}
	return &ExecLauncher{logger: l, command: exec.Command}
}

// Launch starts name with args.
func (e *ExecLauncher) Launch(name string, args ...string) error {
	if name == "" {
		return ErrNoHelper
	}
	cmd := e.command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start helper: %w", err)
	}
	e.running.Add(1)
	e.wg.Add(1)
	go e.reap(cmd)
	return nil
}

func (e *ExecLauncher) reap(cmd *exec.Cmd) {
	defer e.wg.Done()
	defer e.running.Add(-1)
	err := cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		e.logger.Debug("helper exited", "cmd", cmd.Path, "code", exitErr.ExitCode())
	default:
		e.logger.Debug("helper wait", "cmd", cmd.Path, "err", err)
	}
}

// Running returns the number of helpers not yet reaped.
func (e *ExecLauncher) Running() int {
	return int(e.running.Load())
}

// Wait blocks until every started helper has been reaped.
func (e *ExecLauncher) Wait() {
	e.wg.Wait()
}
