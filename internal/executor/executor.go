// Package executor defines the boundary between the orchestration layer and
// the sandbox backends. Everything above this interface reasons in terms of
// "run this code, give me a result"; everything below it deals with
// processes, containers and limits.
package executor

import (
	"context"

	"github.com/nbekzat/codelab/internal/model"
)

// Request is one piece of host-dialect source code bound for a sandbox. By
// the time a request reaches an executor it has already passed the security
// check and, for teaching-dialect submissions, translation.
type Request struct {
	Code     string
	Language string
}

// Executor runs untrusted code in an isolated environment.
//
// THE ERROR CONTRACT:
// Every outcome with a story to tell the learner — a crash, an infinite
// loop, output floods, a compile error, even a toolchain missing from the
// sandbox host — comes back inside the ExecutionResult with the matching
// status and a descriptive message. The error return is reserved for the
// narrow cases where no result exists at all: an unsupported language, a
// canceled context, or a scratch-area fault before anything ran.
type Executor interface {
	Execute(ctx context.Context, req Request) (*model.ExecutionResult, error)
}
