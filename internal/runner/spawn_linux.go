//go:build linux

package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// runProcess starts argv in dir and supervises it until it exits, the wall
// clock runs out, or the caller's context is canceled.
//
// PROCESS GROUPS:
// Setpgid puts the child in its own process group, so a misbehaving program
// that forks (a shell, a JVM, a fork bomb) can be killed as a unit: the
// watchdog signals -pid, which delivers SIGKILL to every process in the
// group. Pdeathsig additionally ties the group leader's life to ours, so
// children do not outlive a crashed server.
//
// Partial output survives either way: the capped writers hold whatever was
// flushed before the kill.
func runProcess(ctx context.Context, argv []string, dir string, wallLimit time.Duration, maxOutput int64) Outcome {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = []string{
		"PATH=/usr/local/bin:/usr/bin:/bin",
		"HOME=" + dir,
		"LANG=C.UTF-8",
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: unix.SIGKILL,
	}

	capture := NewCapture(maxOutput)
	cmd.Stdout = capture.Stdout()
	cmd.Stderr = capture.Stderr()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Outcome{
			SpawnError: fmt.Errorf("starting %s: %w", argv[0], err),
			ExitCode:   -1,
		}
	}

	var timedOut, canceled atomic.Bool
	done := make(chan struct{})
	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			canceled.Store(true)
			killGroup(cmd.Process.Pid)
		case <-time.After(wallLimit):
			timedOut.Store(true)
			killGroup(cmd.Process.Pid)
		}
	}()

	waitErr := cmd.Wait()
	close(done)
	stdoutStr, stderrStr, truncated := capture.Finalize()

	return Outcome{
		Stdout:          stdoutStr,
		Stderr:          stderrStr,
		ExitCode:        exitStatus(waitErr),
		Duration:        time.Since(start),
		MemoryPeakBytes: peakRSS(cmd),
		TimedOut:        timedOut.Load(),
		Canceled:        canceled.Load(),
		Truncated:       truncated,
	}
}

// killGroup sends SIGKILL to an entire process group.
func killGroup(pid int) {
	_ = unix.Kill(-pid, unix.SIGKILL)
}

// peakRSS reads the child's maximum resident set size from its rusage.
// Linux reports Maxrss in kilobytes.
func peakRSS(cmd *exec.Cmd) int64 {
	if cmd.ProcessState == nil {
		return 0
	}
	ru, ok := cmd.ProcessState.SysUsage().(*syscall.Rusage)
	if !ok {
		return 0
	}
	return ru.Maxrss * 1024
}

// exitStatus folds a Wait error into a numeric exit code. Signal deaths use
// the shell convention 128+signal, so a SIGKILLed run reports 137.
func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return 128 + int(status.Signal())
		}
		return exitErr.ExitCode()
	}
	return -1
}
