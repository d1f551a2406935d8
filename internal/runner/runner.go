// Package runner knows how to turn one language's source code into a running
// process: where the source file goes, how it is compiled (when the language
// needs that), and what command runs it.
//
// TWO RUNNER SHAPES:
// Interpreted languages (python, javascript) write the artifact and run it in
// one step. Compiled languages (c, cpp, java) first run the compiler under
// its own, shorter timeout, then run the produced binary, then remove the
// binary. Both shapes share one LanguageSpec table and one process-spawning
// helper — the difference is entirely in Run.
//
// Command lines are declared as templates ("gcc {src} -O2 -o {bin}") and
// split into argv with shlex, so a spec reads like the shell command a
// human would type while still never passing through an actual shell.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
)

// OutputTruncationMarker is appended exactly once when a run produces more
// output than the budget allows. Learners see their first MaxOutputBytes of
// output followed by this marker.
const OutputTruncationMarker = "\n[output truncated]"

// Limits bound a single run.
type Limits struct {
	WallTimeout    time.Duration // total wall-clock budget for the run phase
	CompileTimeout time.Duration // wall-clock budget for the compile phase alone
	MaxOutputBytes int64         // shared stdout+stderr budget
}

// Outcome is the raw result of preparing and running an artifact. The
// executor layer maps it onto the wire-facing result statuses.
type Outcome struct {
	Stdout          string
	Stderr          string
	ExitCode        int
	Duration        time.Duration
	MemoryPeakBytes int64

	TimedOut      bool  // wall-clock limit hit, process group killed
	Truncated     bool  // output budget exhausted, marker appended
	CompileFailed bool  // compiler refused the source; Stderr holds diagnostics
	Canceled      bool  // parent context canceled mid-run
	SpawnError    error // process could not start at all (missing toolchain and friends)
}

// Runner prepares and executes source code for one language.
type Runner interface {
	// Language returns the registry id this runner serves.
	Language() string

	// Prepare materialises the source code as a file inside dir and returns
	// the artifact path. The file name is fixed per language (Java insists
	// the file be named after its public class).
	Prepare(dir, code string) (string, error)

	// Run executes the prepared artifact under the given limits. All
	// failures are folded into the Outcome; Run itself never panics.
	Run(ctx context.Context, artifact string, limits Limits) Outcome
}

// LanguageSpec declares everything the runners need to know about one
// language. CompileTpl empty means the language is interpreted.
type LanguageSpec struct {
	ID         string
	Name       string // display name for the languages listing
	SourceFile string // fixed artifact name inside the scratch dir
	BinaryFile string // compiled output name, empty for interpreted languages
	CompileTpl string // e.g. "gcc {src} -O2 -o {bin}"
	RunTpl     string // e.g. "python3 {src}" or "{bin}"
}

// Compiled reports whether this language has a compile phase.
func (s LanguageSpec) Compiled() bool {
	return s.CompileTpl != ""
}

// templateVars builds the substitution map for one artifact.
func templateVars(spec LanguageSpec, artifact string) map[string]string {
	dir := filepath.Dir(artifact)
	vars := map[string]string{
		"{src}": artifact,
		"{dir}": dir,
	}
	if spec.BinaryFile != "" {
		vars["{bin}"] = filepath.Join(dir, spec.BinaryFile)
	}
	return vars
}

// buildCommand expands a command template and splits it into argv.
func buildCommand(tpl string, vars map[string]string) ([]string, error) {
	expanded := tpl
	for placeholder, value := range vars {
		expanded = strings.ReplaceAll(expanded, placeholder, value)
	}

	argv, err := shlex.Split(expanded)
	if err != nil {
		return nil, fmt.Errorf("runner: splitting command %q: %w", tpl, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("runner: empty command template %q", tpl)
	}
	return argv, nil
}
