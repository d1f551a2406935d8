package translator

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nbekzat/codelab/internal/model"
)

// Translator converts source code between EduScript and Python.
//
// The zero value is not usable — construct with New. A single Translator is
// shared by all requests; it holds no per-request state (the indentation
// accumulator lives on the stack of each Translate call).
type Translator struct {
	patterns *PatternTable
	logger   *slog.Logger
}

// New creates a Translator with the standard pattern table.
func New(logger *slog.Logger) *Translator {
	return &Translator{
		patterns: NewPatternTable(),
		logger:   logger,
	}
}

// Translate rewrites source in the given direction and reports the outcome.
//
// TOTAL BY CONTRACT:
// Translate never returns an error and never lets a panic escape. Constructs
// it does not recognise pass through with a warning where that's detectable;
// only an internal fault (a bug in the fold itself) fills the Errors list.
// Success is true exactly when Errors is empty — callers must not run the
// translated output of an unsuccessful result.
func (t *Translator) Translate(source string, dir model.Direction) (res *model.TranslationResult) {
	res = &model.TranslationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	// A panicking translation must surface as a structured error list, not
	// a 500 from the recoverer three layers up.
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("translation fold panicked",
				slog.String("direction", string(dir)),
				slog.Any("panic", r),
			)
			res.Success = false
			res.TranslatedCode = ""
			res.Errors = append(res.Errors, fmt.Sprintf("internal translation fault: %v", r))
		}
	}()

	var lines, warnings []string
	switch dir {
	case model.TeachingToHost:
		res.SourceLanguage = model.LanguageEduScript
		res.TargetLanguage = model.LanguagePython
		lines, warnings = t.teachingToHost(source)
	case model.HostToTeaching:
		res.SourceLanguage = model.LanguagePython
		res.TargetLanguage = model.LanguageEduScript
		lines, warnings = t.hostToTeaching(source)
	default:
		res.Errors = append(res.Errors, fmt.Sprintf("unknown translation direction %q", dir))
	}

	res.TranslatedCode = strings.Join(lines, "\n")
	res.Warnings = append(res.Warnings, warnings...)
	res.Success = len(res.Errors) == 0
	res.Metadata = model.TranslationMetadata{
		OriginalLength:   len(source),
		TranslatedLength: len(res.TranslatedCode),
		Direction:        string(dir),
		Timestamp:        time.Now().UTC(),
	}
	return res
}

// splitStatements breaks one physical EduScript line into logical statements.
//
// Two separators are at work:
//  1. The statement terminator `;` — students often write several statements
//     on one line ("var x: 1; print(x);").
//  2. The block-open marker `->` — an opener and its first body statement may
//     share a segment ("can add(a,b) -> return a+b"), so we split after each
//     arrow, keeping the arrow attached to its opener.
//
// Comment lines are returned whole: a `;` or `->` inside a comment is text,
// not structure.
func splitStatements(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, teachingComment) {
		return []string{trimmed}
	}

	var stmts []string
	for _, seg := range strings.Split(trimmed, statementTerminator) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		for {
			idx := strings.Index(seg, blockOpenMarker)
			if idx < 0 {
				break
			}
			head := strings.TrimSpace(seg[:idx+len(blockOpenMarker)])
			rest := strings.TrimSpace(seg[idx+len(blockOpenMarker):])
			if rest == "" {
				seg = head
				break
			}
			stmts = append(stmts, head)
			seg = rest
		}
		stmts = append(stmts, seg)
	}
	return stmts
}

// teachingToHost folds EduScript statements into indented Python lines.
//
// The indentation accumulator is the whole trick: block openers emit at the
// current level and then deepen it, the end marker shallows it without
// emitting anything, and everything else emits at the current level.
//
// BRANCH HANDLING (else/elif):
// A branch closes the arm above it and opens its own, so it shallows the
// indent, emits at the shallowed level, then deepens again. The shallow step
// clamps at zero — a stray top-level else still renders rather than
// corrupting the accumulator.
func (t *Translator) teachingToHost(source string) (out, warnings []string) {
	indent := 0

	for lineNo, raw := range strings.Split(source, "\n") {
		for _, stmt := range splitStatements(raw) {
			kind, rendered := t.patterns.applyTeaching(stmt)

			switch kind {
			case kindBlockClose:
				if indent == 0 {
					warnings = append(warnings,
						fmt.Sprintf("line %d: end marker %q without an open block", lineNo+1, blockCloseMarker))
					continue
				}
				indent--

			case kindBranch:
				if indent > 0 {
					indent--
				}
				out = append(out, indentOf(indent)+rendered)
				indent++

			case kindFunction, kindBlockOpen:
				out = append(out, indentOf(indent)+rendered)
				indent++

			default:
				// An unmatched statement still ending in the open marker is a
				// malformed opener (e.g. "can add(a,b ->"). It passes through,
				// but the author should hear about it.
				if strings.HasSuffix(stmt, blockOpenMarker) {
					warnings = append(warnings,
						fmt.Sprintf("line %d: malformed block opener %q passed through", lineNo+1, stmt))
				}
				out = append(out, indentOf(indent)+rendered)
			}
		}
	}

	if indent > 0 {
		warnings = append(warnings, fmt.Sprintf("%d block(s) left open at end of input", indent))
	}
	return out, warnings
}

// hostToTeaching folds indented Python lines into flat, marker-delimited
// EduScript statements.
//
// depth tracks how many blocks are currently open. Each line's indentation
// level is compared against it: a dedent emits one end marker per closed
// level, an unexpected extra indent is reported and the line is kept at the
// current depth. Blank lines are structural noise in Python and are skipped
// entirely (their zero indentation must not close blocks).
func (t *Translator) hostToTeaching(source string) (out, warnings []string) {
	depth := 0
	warnedTabs := false

	for lineNo, raw := range strings.Split(source, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}

		spaces, hadTabs := indentWidth(raw)
		if hadTabs && !warnedTabs {
			warnings = append(warnings,
				fmt.Sprintf("line %d: tab indentation treated as %d spaces", lineNo+1, len(indentUnit)))
			warnedTabs = true
		}
		if spaces%len(indentUnit) != 0 {
			warnings = append(warnings,
				fmt.Sprintf("line %d: indentation of %d is not a multiple of %d, rounding down", lineNo+1, spaces, len(indentUnit)))
		}
		level := spaces / len(indentUnit)

		stmt := strings.TrimSpace(raw)
		kind, rendered := t.patterns.applyHost(stmt)

		// A branch re-attaches to the block it dedented out of, so it closes
		// one block fewer than a plain dedent would.
		closeTo := level
		if kind == kindBranch {
			closeTo = level + 1
		}
		for depth > closeTo {
			out = append(out, blockCloseMarker+statementTerminator)
			depth--
		}
		if level > depth && kind != kindBranch {
			warnings = append(warnings,
				fmt.Sprintf("line %d: unexpected indent (level %d with %d open block(s))", lineNo+1, level, depth))
		}

		switch kind {
		case kindComment:
			out = append(out, rendered)
		case kindFunction, kindBlockOpen, kindBranch:
			out = append(out, rendered)
			depth = level + 1
		default:
			out = append(out, rendered+statementTerminator)
		}
	}

	for depth > 0 {
		out = append(out, blockCloseMarker+statementTerminator)
		depth--
	}
	return out, warnings
}

// indentOf returns the host-dialect prefix for n indentation levels.
func indentOf(n int) string {
	return strings.Repeat(indentUnit, n)
}

// indentWidth counts the leading whitespace of a line in spaces, expanding
// each tab to one indent unit. hadTabs reports whether any tab was seen.
func indentWidth(line string) (width int, hadTabs bool) {
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += len(indentUnit)
			hadTabs = true
		default:
			return width, hadTabs
		}
	}
	return width, hadTabs
}
