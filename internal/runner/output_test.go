package runner

import (
	"strings"
	"testing"
)

// === SHARED OUTPUT BUDGET ===
//
// stdout and stderr of one process draw from a single byte allowance. These
// tests pin the arithmetic: the captured total never exceeds the budget, and
// the truncation marker appears exactly once, on the stream that overflowed.

func TestCaptureSharedBudget(t *testing.T) {
	c := NewCapture(10)

	c.Stdout().Write([]byte("123456"))  // 6 of 10
	c.Stderr().Write([]byte("abcdef"))  // only 4 left
	c.Stdout().Write([]byte("ignored")) // nothing left

	stdout, stderr, truncated := c.Finalize()

	if stdout != "123456" {
		t.Errorf("stdout = %q, want %q", stdout, "123456")
	}
	wantStderr := "abcd" + OutputTruncationMarker
	if stderr != wantStderr {
		t.Errorf("stderr = %q, want %q", stderr, wantStderr)
	}
	if !truncated {
		t.Error("capture should report truncation")
	}
}

func TestCaptureCombinedLength(t *testing.T) {
	const budget = 64
	c := NewCapture(budget)

	for i := 0; i < 20; i++ {
		c.Stdout().Write([]byte(strings.Repeat("o", 7)))
		c.Stderr().Write([]byte(strings.Repeat("e", 5)))
	}
	stdout, stderr, _ := c.Finalize()

	combined := len(stdout) + len(stderr)
	want := budget + len(OutputTruncationMarker)
	if combined != want {
		t.Errorf("combined output length = %d, want %d", combined, want)
	}
	marker := strings.Count(stdout, OutputTruncationMarker) +
		strings.Count(stderr, OutputTruncationMarker)
	if marker != 1 {
		t.Errorf("marker appears %d times, want exactly 1", marker)
	}
}

func TestCaptureUnderBudget(t *testing.T) {
	c := NewCapture(1024)

	c.Stdout().Write([]byte("hello\n"))
	stdout, stderr, truncated := c.Finalize()

	if stdout != "hello\n" {
		t.Errorf("stdout = %q, want %q", stdout, "hello\n")
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
	if truncated {
		t.Error("nothing was cut, truncated should be false")
	}
}

func TestCaptureAlwaysReportsFullWrite(t *testing.T) {
	// The writer must claim success even past the cap, otherwise the exec
	// copier stops draining and the child blocks on a full pipe.
	c := NewCapture(3)

	n, err := c.Stdout().Write([]byte("overflowing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len("overflowing") {
		t.Errorf("n = %d, want %d", n, len("overflowing"))
	}
}
