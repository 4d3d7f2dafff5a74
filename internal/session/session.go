// Package session manages the lifecycle of a single server-under-test
// process: spawn, write requests to stdin, collect stdout and stderr in the
// background, and shut down without ever blocking on a wedged child.
package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"mcpcheck/pkg/logging"
)

// execCommand is swapped out in tests to avoid spawning real servers.
var execCommand = exec.CommandContext

// Spec describes the process to spawn for one session.
type Spec struct {
	Command string
	Args    []string
	// Env is the full child environment. Nil inherits the parent's.
	Env []string
	Dir string
}

// Session is a running server process with buffered output capture. One
// session serves exactly one test case; it is not reused.
type Session struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu     sync.Mutex
	stdout bytes.Buffer
	stderr bytes.Buffer

	drained sync.WaitGroup
	// done is closed once the child has exited and both pipes are drained.
	done    chan struct{}
	waitErr error

	closeOnce sync.Once
}

// Open spawns the process described by spec. The context bounds the process
// lifetime: cancellation kills the child.
func Open(ctx context.Context, spec Spec) (*Session, error) {
	cmd := execCommand(ctx, spec.Command, spec.Args...)
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	cmd.Dir = spec.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe for %s: %w", spec.Command, err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe for %s: %w", spec.Command, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return nil, fmt.Errorf("stderr pipe for %s: %w", spec.Command, err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, fmt.Errorf("start %s: %w", spec.Command, err)
	}
	logging.Debug("Session", "Started %s (pid %d)", spec.Command, cmd.Process.Pid)

	s := &Session{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}

	// Both pipes are consumed continuously so the child can never stall on
	// a full pipe buffer while we are waiting elsewhere.
	s.drained.Add(2)
	go s.capture(stdoutPipe, &s.stdout)
	go s.capture(stderrPipe, &s.stderr)

	go func() {
		s.drained.Wait()
		s.waitErr = cmd.Wait()
		close(s.done)
	}()

	return s, nil
}

func (s *Session) capture(r io.Reader, buf *bytes.Buffer) {
	defer s.drained.Done()
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			s.mu.Lock()
			buf.Write(chunk[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send writes a request payload to the child's stdin.
func (s *Session) Send(data []byte) error {
	if _, err := s.stdin.Write(data); err != nil {
		return fmt.Errorf("write to server stdin: %w", err)
	}
	return nil
}

// Output returns a snapshot of everything the child has written so far.
func (s *Session) Output() (stdout, stderr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdout.String(), s.stderr.String()
}

// Drain closes stdin, waits up to timeout for the child to exit on its own,
// kills it if it has not, and returns the captured output. The child's exit
// status is deliberately ignored: many servers exit nonzero when their stdin
// closes mid-stream, and the captured output is what the caller judges.
func (s *Session) Drain(timeout time.Duration) (stdout, stderr string) {
	s.closeStdin()

	select {
	case <-s.done:
	case <-time.After(timeout):
		logging.Debug("Session", "Server did not exit within %s, killing pid %d", timeout, s.cmd.Process.Pid)
		s.kill()
		<-s.done
	}

	return s.Output()
}

// Close terminates the session unconditionally. Safe to call after Drain and
// safe to call more than once.
func (s *Session) Close() {
	s.closeStdin()
	select {
	case <-s.done:
	default:
		s.kill()
		<-s.done
	}
}

// Err reports how the child exited. Valid once Drain or Close has returned.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.waitErr
	default:
		return nil
	}
}

func (s *Session) closeStdin() {
	s.closeOnce.Do(func() {
		if err := s.stdin.Close(); err != nil {
			logging.Debug("Session", "Closing server stdin: %v", err)
		}
	})
}

func (s *Session) kill() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
}
