// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
//
// Every struct in this package is created fresh for each request and never
// mutated after construction. The core keeps no request data around — what
// you see here flows in one side of the pipeline and out the other.
package model

// Language identifiers shared across the pipeline.
//
// LanguageEduScript is the teaching dialect students write in. It is never
// executed directly — the translator rewrites it into the host language
// (Python) first, and the runner registry only ever sees host languages.
const (
	LanguageEduScript = "eduscript"
	LanguagePython    = "python"
)

// Status is the terminal outcome of one execution attempt.
//
// WHY A STRING TYPE (not iota)?
// The status travels over the wire and into logs. A typed string gives us
// compile-time safety (you can't pass a random string where a Status goes)
// AND readable JSON/log output without a String() mapping table.
// Exactly one status describes any given result.
type Status string

const (
	StatusSuccess           Status = "success"
	StatusFailure           Status = "failure"
	StatusSecurityViolation Status = "security_violation"
	StatusTimeout           Status = "timeout"
	StatusCompilationError  Status = "compilation_error"
)

// ExecutionRequest represents one request to run a piece of student code.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize/deserialize
// this struct to/from JSON. This is called a "struct tag" — metadata attached to fields.
type ExecutionRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	UserID   string `json:"user_id"`           // Optional — empty means anonymous, no stats recorded
	TaskID   string `json:"task_id,omitempty"` // Optional assignment/task reference, carried for logging only
}

// ExecutionResult is the structured outcome of a sandboxed run.
//
// Stdout and Stderr are captured separately but share one output budget: their
// combined length never exceeds the configured cap plus the truncation marker.
// ExecutionTime is wall-clock seconds measured by the executor itself.
// MemoryUsed is a best-effort peak resident set size in bytes (0 when the
// platform can't report it).
type ExecutionResult struct {
	Status        Status  `json:"status"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	ExitCode      int     `json:"exit_code"`
	ExecutionTime float64 `json:"execution_time"`
	MemoryUsed    int64   `json:"memory_used"`
}

// OK reports whether the run finished with the success status.
func (r *ExecutionResult) OK() bool {
	return r.Status == StatusSuccess
}
