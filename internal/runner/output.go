package runner

import (
	"bytes"
	"io"
	"sync"
)

// Capture owns the two output streams of one supervised process. Both
// streams draw on a single byte allowance: a learner program that floods
// either stream eats the whole budget, so the combined capture can never
// exceed the cap. Sandbox backends hand Stdout()/Stderr() to whatever copies
// the process output and call Finalize() once the process is done — or
// presumed dead, since Finalize snapshots under the same lock the writers
// take and so tolerates a copier that has not fully wound down yet.
type Capture struct {
	budget *outputBudget
	stdout cappedWriter
	stderr cappedWriter
}

// NewCapture builds a capture with max shared bytes across both streams.
func NewCapture(max int64) *Capture {
	c := &Capture{budget: newOutputBudget(max)}
	c.stdout.budget = c.budget
	c.stderr.budget = c.budget
	return c
}

func (c *Capture) Stdout() io.Writer { return &c.stdout }
func (c *Capture) Stderr() io.Writer { return &c.stderr }

// Finalize appends the truncation marker to the stream that overflowed and
// returns a snapshot of both captures.
func (c *Capture) Finalize() (stdout, stderr string, truncated bool) {
	b := c.budget
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.starved != nil && !b.marked {
		b.starved.buf.WriteString(OutputTruncationMarker)
		b.marked = true
	}
	return c.stdout.buf.String(), c.stderr.buf.String(), b.starved != nil
}

// outputBudget is the allowance shared by the two writers. The mutex
// matters: os/exec and the docker stream demultiplexer copy stdout and
// stderr on separate goroutines, so the writers race for the remainder.
type outputBudget struct {
	mu        sync.Mutex
	remaining int64
	starved   *cappedWriter // first writer that ran out of room
	marked    bool          // truncation marker already appended
}

func newOutputBudget(max int64) *outputBudget {
	return &outputBudget{remaining: max}
}

// cappedWriter captures one stream, honouring the shared budget. Writes past
// the budget are silently swallowed but still reported as successful so the
// copier keeps draining the pipe and the child never blocks on a full buffer
// it cannot know about.
type cappedWriter struct {
	budget *outputBudget
	buf    bytes.Buffer
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	b := w.budget
	b.mu.Lock()
	defer b.mu.Unlock()

	keep := int64(len(p))
	if keep > b.remaining {
		keep = b.remaining
		if b.starved == nil {
			b.starved = w
		}
	}
	if keep > 0 && !b.marked {
		w.buf.Write(p[:keep])
		b.remaining -= keep
	}
	return len(p), nil
}
