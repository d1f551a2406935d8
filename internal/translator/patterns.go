// Package translator rewrites code between the EduScript teaching dialect and
// the Python host dialect, line by line, in both directions.
//
// HOW THE DIALECTS RELATE:
// EduScript is marker-significant: `->` opens a block, `ye` closes it, `;`
// terminates a statement, and indentation is purely cosmetic. Python is
// indentation-significant. Translating between them is therefore mostly a
// matter of rewriting statement shapes and converting explicit block markers
// to indentation levels (and back).
//
// This is NOT a parser. Each statement is matched against a small ordered
// table of regular expressions; anything unrecognised passes through
// untouched. That keeps the translator total — it never rejects input —
// at the cost of being fooled by things like arrows inside string literals.
package translator

import "regexp"

// Structural markers of the teaching dialect.
const (
	blockOpenMarker     = "->"
	blockCloseMarker    = "ye"
	statementTerminator = ";"
	teachingComment     = "//"
	hostComment         = "#"

	// indentUnit is the host-dialect indentation step. Four spaces, the
	// conventional Python unit; the reverse direction divides by its width.
	indentUnit = "    "
)

// patternKind tells the translation fold how a matched statement affects
// block structure. The regexp rewrites the text; the kind drives indentation.
type patternKind int

const (
	kindStatement   patternKind = iota // plain statement, no structural effect
	kindComment                        // comment line, no structural effect
	kindDeclaration                    // variable declaration
	kindFunction                       // function header, opens a block
	kindBlockOpen                      // if/while/for header, opens a block
	kindBranch                         // else/elif, closes the previous arm and opens its own
	kindBlockClose                     // end marker, closes the innermost block
)

// rule pairs one compiled pattern with its replacement and structural kind.
// First matching rule wins, so order in the tables below matters: comments
// must be checked before anything else (a comment may contain keywords), and
// specific keyword forms before the generic fallthrough.
type rule struct {
	re   *regexp.Regexp
	repl string
	kind patternKind
}

// PatternTable holds the compiled rewrite rules for both directions.
//
// IMMUTABILITY & CONCURRENCY:
// The table is built once at construction and never written again, which is
// what makes it safe to share across concurrent requests without locking.
// compiled *regexp.Regexp values are themselves safe for concurrent use.
type PatternTable struct {
	teaching []rule // EduScript statement → Python line
	host     []rule // Python statement → EduScript statement
}

// NewPatternTable compiles the rewrite rules.
//
// regexp.MustCompile panics on a bad pattern, which is exactly what we want
// here: a broken rule is a programming error that should fail at startup,
// not surface as a per-request translation error.
func NewPatternTable() *PatternTable {
	return &PatternTable{
		teaching: []rule{
			{regexp.MustCompile(`^//\s?(.*)$`), "# $1", kindComment},
			{regexp.MustCompile(`^ye$`), "", kindBlockClose},
			{regexp.MustCompile(`^can\s+([A-Za-z_]\w*)\s*\((.*)\)\s*->$`), "def $1($2):", kindFunction},
			{regexp.MustCompile(`^(if|while|for)\s+(.+?)\s*->$`), "$1 $2:", kindBlockOpen},
			{regexp.MustCompile(`^elif\s+(.+?)\s*->$`), "elif $1:", kindBranch},
			{regexp.MustCompile(`^else\s*->$`), "else:", kindBranch},
			{regexp.MustCompile(`^var\s+([A-Za-z_]\w*)\s*[:=]\s*(.+)$`), "$1 = $2", kindDeclaration},
		},
		host: []rule{
			{regexp.MustCompile(`^#\s?(.*)$`), "// $1", kindComment},
			{regexp.MustCompile(`^def\s+([A-Za-z_]\w*)\s*\((.*)\)\s*:$`), "can $1($2) ->", kindFunction},
			{regexp.MustCompile(`^elif\s+(.+?)\s*:$`), "elif $1 ->", kindBranch},
			{regexp.MustCompile(`^else\s*:$`), "else ->", kindBranch},
			{regexp.MustCompile(`^(if|while|for)\s+(.+?)\s*:$`), "$1 $2 ->", kindBlockOpen},
			{regexp.MustCompile(`^([A-Za-z_]\w*)\s*=\s*([^=].*)$`), "var $1 = $2", kindDeclaration},
		},
	}
}

// applyTeaching rewrites one EduScript statement into its Python form.
// Unmatched statements come back unchanged as kindStatement.
func (pt *PatternTable) applyTeaching(stmt string) (patternKind, string) {
	for _, r := range pt.teaching {
		if r.re.MatchString(stmt) {
			return r.kind, r.re.ReplaceAllString(stmt, r.repl)
		}
	}
	return kindStatement, stmt
}

// applyHost rewrites one dedented Python statement into its EduScript form.
// Statement terminators are the fold's job, not the table's — rules produce
// the bare rewritten text.
func (pt *PatternTable) applyHost(stmt string) (patternKind, string) {
	for _, r := range pt.host {
		if r.re.MatchString(stmt) {
			return r.kind, r.re.ReplaceAllString(stmt, r.repl)
		}
	}
	return kindStatement, stmt
}
