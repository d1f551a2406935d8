package translator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/nbekzat/codelab/internal/model"
)

// Keywords from other languages that students paste in by accident. Seeing
// one at the start of a statement almost always means the code is not
// actually EduScript.
var foreignKeywords = map[string]string{
	"func":     "Go",
	"function": "JavaScript",
	"fn":       "Rust",
	"let":      "JavaScript",
	"const":    "JavaScript",
	"def":      "Python",
	"begin":    "Ruby",
	"end":      "Ruby",
}

// pythonCheckTimeout bounds the ast.parse round trip so a wedged interpreter
// can't hold the request hostage.
const pythonCheckTimeout = 5 * time.Second

// ValidateSyntax runs a lightweight well-formedness check over code in the
// given dialect and returns a list of findings (empty means nothing found).
//
// HEURISTIC, NOT A VERDICT:
// For EduScript this is a dry run of the translation fold — its warnings
// (unbalanced markers, malformed openers) ARE the findings — plus a scan for
// keywords that belong to other languages. For Python we borrow the real
// parser when one is installed: `python3 -c "import ast; ..."` is a complete
// syntax check for free. Without an interpreter on PATH we fall back to a
// colon/indentation heuristic. Either way, an empty result is "nothing
// obviously wrong", not "guaranteed to run".
func (t *Translator) ValidateSyntax(ctx context.Context, code, dialect string) []string {
	findings := []string{}

	switch dialect {
	case model.LanguageEduScript:
		_, warnings := t.teachingToHost(code)
		findings = append(findings, warnings...)

		for lineNo, raw := range strings.Split(code, "\n") {
			for _, stmt := range splitStatements(raw) {
				if strings.HasPrefix(stmt, teachingComment) {
					continue
				}
				first, _, _ := strings.Cut(stmt, " ")
				if lang, ok := foreignKeywords[first]; ok {
					findings = append(findings,
						fmt.Sprintf("line %d: %q looks like a %s keyword, not EduScript", lineNo+1, first, lang))
				}
			}
		}

	case model.LanguagePython:
		findings = append(findings, t.validatePython(ctx, code)...)

	default:
		findings = append(findings, fmt.Sprintf("unknown dialect %q", dialect))
	}

	return findings
}

// validatePython checks Python syntax, preferring the interpreter's own parser.
func (t *Translator) validatePython(ctx context.Context, code string) []string {
	python, err := exec.LookPath("python3")
	if err != nil {
		return pythonHeuristic(code)
	}

	ctx, cancel := context.WithTimeout(ctx, pythonCheckTimeout)
	defer cancel()

	// ast.parse compiles without executing — the student code never runs here.
	cmd := exec.CommandContext(ctx, python, "-c",
		"import ast, sys; ast.parse(sys.stdin.read())")
	cmd.Stdin = strings.NewReader(code)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return []string{"python syntax check timed out"}
		}
		return []string{"python syntax error: " + lastLine(stderr.String())}
	}
	return nil
}

// pythonHeuristic is the interpreter-less fallback: it only catches the
// gross structural mistakes (a block header with nothing under it, tabs
// mixed into space indentation).
func pythonHeuristic(code string) []string {
	var findings []string
	lines := strings.Split(code, "\n")
	warnedTabs := false

	for i, raw := range lines {
		stmt := strings.TrimSpace(raw)
		if stmt == "" || strings.HasPrefix(stmt, hostComment) {
			continue
		}

		if strings.Contains(indentPrefix(raw), "\t") && strings.Contains(indentPrefix(raw), " ") && !warnedTabs {
			findings = append(findings, fmt.Sprintf("line %d: mixed tabs and spaces in indentation", i+1))
			warnedTabs = true
		}

		if strings.HasSuffix(stmt, ":") {
			width, _ := indentWidth(raw)
			if next, ok := nextCodeLine(lines, i+1); !ok {
				findings = append(findings, fmt.Sprintf("line %d: block header with no body", i+1))
			} else if nextWidth, _ := indentWidth(next); nextWidth <= width {
				findings = append(findings, fmt.Sprintf("line %d: block header with no indented body", i+1))
			}
		}
	}
	return findings
}

// nextCodeLine returns the first non-blank, non-comment line at or after idx.
func nextCodeLine(lines []string, idx int) (string, bool) {
	for ; idx < len(lines); idx++ {
		stmt := strings.TrimSpace(lines[idx])
		if stmt != "" && !strings.HasPrefix(stmt, hostComment) {
			return lines[idx], true
		}
	}
	return "", false
}

// indentPrefix returns the leading whitespace of a line.
func indentPrefix(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// lastLine extracts the final non-empty line of interpreter stderr — for a
// SyntaxError that's the one naming the problem.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
