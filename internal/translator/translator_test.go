package translator

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/nbekzat/codelab/internal/model"
)

func newTestTranslator() *Translator {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(logger)
}

// translate is a small helper so tests read as input → expected output.
func translate(t *testing.T, dir model.Direction, source string) *model.TranslationResult {
	t.Helper()
	res := newTestTranslator().Translate(source, dir)
	if !res.Success {
		t.Fatalf("Translate() failed with errors: %v", res.Errors)
	}
	return res
}

// =========================================================================
// STATEMENT SPLITTING
// =========================================================================

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "terminator and arrow on one line",
			line: "var x: int; can add(a,b) -> return a+b; ye;",
			want: []string{"var x: int", "can add(a,b) ->", "return a+b", "ye"},
		},
		{
			name: "chained openers",
			line: "if a -> if b -> print(1)",
			want: []string{"if a ->", "if b ->", "print(1)"},
		},
		{
			name: "comment line stays whole",
			line: "// keep; this -> intact",
			want: []string{"// keep; this -> intact"},
		},
		{
			name: "lone opener keeps its arrow",
			line: "while x < 3 ->",
			want: []string{"while x < 3 ->"},
		},
		{
			name: "blank line",
			line: "   ",
			want: nil,
		},
		{
			name: "empty segments dropped",
			line: " ; ; ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitStatements(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitStatements(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

// =========================================================================
// TEACHING → HOST
// =========================================================================

func TestTeachingToHost_FunctionAndDeclaration(t *testing.T) {
	// A declaration, a one-line function, and an end marker — the bread and
	// butter of student submissions.
	res := translate(t, model.TeachingToHost, "var x: int; can add(a,b) -> return a+b; ye;")

	want := "x = int\ndef add(a,b):\n    return a+b"
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
	if res.SourceLanguage != model.LanguageEduScript || res.TargetLanguage != model.LanguagePython {
		t.Errorf("labels = %s → %s, want eduscript → python", res.SourceLanguage, res.TargetLanguage)
	}
}

func TestTeachingToHost_DeclarationForms(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"colon form", "var x: int;", "x = int"},
		{"equals form", "var total = 0;", "total = 0"},
		{"expression value", "var area = w * h;", "area = w * h"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := translate(t, model.TeachingToHost, tt.source)
			if res.TranslatedCode != tt.want {
				t.Errorf("TranslatedCode = %q, want %q", res.TranslatedCode, tt.want)
			}
		})
	}
}

func TestTeachingToHost_IfElse(t *testing.T) {
	source := strings.Join([]string{
		"var count = 3;",
		"if count > 2 ->",
		`print("big");`,
		"else ->",
		`print("small");`,
		"ye;",
	}, "\n")

	want := strings.Join([]string{
		"count = 3",
		"if count > 2:",
		`    print("big")`,
		"else:",
		`    print("small")`,
	}, "\n")

	res := translate(t, model.TeachingToHost, source)
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestTeachingToHost_ElseAttachesToInnermostOpenBlock(t *testing.T) {
	// Without an explicit close, the branch belongs to the innermost block:
	// the indent steps back one level for the header, then forward again for
	// the branch body.
	res := translate(t, model.TeachingToHost,
		"if a -> if b -> print(1); else -> print(2); ye; ye;")

	want := strings.Join([]string{
		"if a:",
		"    if b:",
		"        print(1)",
		"    else:",
		"        print(2)",
	}, "\n")
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestTeachingToHost_ElseAfterExplicitClose(t *testing.T) {
	// Closing the inner block first re-attaches the branch one level up.
	res := translate(t, model.TeachingToHost,
		"if a -> if b -> print(1); ye; else -> print(2); ye;")

	want := strings.Join([]string{
		"if a:",
		"    if b:",
		"        print(1)",
		"else:",
		"    print(2)",
	}, "\n")
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestTeachingToHost_ElifChain(t *testing.T) {
	res := translate(t, model.TeachingToHost,
		"if n < 0 -> print(\"neg\"); elif n == 0 -> print(\"zero\"); else -> print(\"pos\"); ye;")

	want := strings.Join([]string{
		"if n < 0:",
		`    print("neg")`,
		"elif n == 0:",
		`    print("zero")`,
		"else:",
		`    print("pos")`,
	}, "\n")
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestTeachingToHost_NestedLoop(t *testing.T) {
	source := strings.Join([]string{
		"can table(n) ->",
		"for i in range(n) ->",
		"print(i * n);",
		"ye;",
		"ye;",
	}, "\n")

	want := strings.Join([]string{
		"def table(n):",
		"    for i in range(n):",
		"        print(i * n)",
	}, "\n")

	res := translate(t, model.TeachingToHost, source)
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestTeachingToHost_Comments(t *testing.T) {
	source := "// loop forever\nwhile x < 10 -> var x = x + 1; ye;\nvar y = 5; // trailing note"
	want := strings.Join([]string{
		"# loop forever",
		"while x < 10:",
		"    x = x + 1",
		"y = 5",
		"# trailing note",
	}, "\n")

	res := translate(t, model.TeachingToHost, source)
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestTeachingToHost_StrayEndMarkerWarns(t *testing.T) {
	res := translate(t, model.TeachingToHost, "ye;")

	if res.TranslatedCode != "" {
		t.Errorf("TranslatedCode = %q, want empty", res.TranslatedCode)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "without an open block") {
		t.Errorf("Warnings = %v, want a stray end marker warning", res.Warnings)
	}
}

func TestTeachingToHost_UnclosedBlockWarns(t *testing.T) {
	res := translate(t, model.TeachingToHost, "if x > 0 ->\nprint(x);")

	if !strings.Contains(res.TranslatedCode, "if x > 0:") {
		t.Errorf("TranslatedCode = %q, expected the opener to translate", res.TranslatedCode)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "left open") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want an unclosed block warning", res.Warnings)
	}
}

func TestTeachingToHost_MalformedOpenerPassesThroughWithWarning(t *testing.T) {
	res := translate(t, model.TeachingToHost, "can add(a,b ->")

	if !strings.Contains(res.TranslatedCode, "can add(a,b ->") {
		t.Errorf("TranslatedCode = %q, malformed opener should pass through", res.TranslatedCode)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "malformed block opener") {
		t.Errorf("Warnings = %v, want a malformed opener warning", res.Warnings)
	}
	// A malformed opener must NOT change indentation for what follows.
	res = translate(t, model.TeachingToHost, "can add(a,b ->\nprint(1);")
	if !strings.Contains(res.TranslatedCode, "\nprint(1)") {
		t.Errorf("TranslatedCode = %q, following statement should stay at top level", res.TranslatedCode)
	}
}

// =========================================================================
// HOST → TEACHING
// =========================================================================

func TestHostToTeaching_FunctionAndAssignment(t *testing.T) {
	source := "x = int\ndef add(a,b):\n    return a+b"
	want := strings.Join([]string{
		"var x = int;",
		"can add(a,b) ->",
		"return a+b;",
		"ye;",
	}, "\n")

	res := translate(t, model.HostToTeaching, source)
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
	if res.SourceLanguage != model.LanguagePython || res.TargetLanguage != model.LanguageEduScript {
		t.Errorf("labels = %s → %s, want python → eduscript", res.SourceLanguage, res.TargetLanguage)
	}
}

func TestHostToTeaching_BranchesDoNotDoubleClose(t *testing.T) {
	source := strings.Join([]string{
		"if n < 0:",
		"    print(1)",
		"elif n == 0:",
		"    print(2)",
		"else:",
		"    print(3)",
	}, "\n")

	want := strings.Join([]string{
		"if n < 0 ->",
		"print(1);",
		"elif n == 0 ->",
		"print(2);",
		"else ->",
		"print(3);",
		"ye;",
	}, "\n")

	res := translate(t, model.HostToTeaching, source)
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestHostToTeaching_DedentEmitsEndMarkers(t *testing.T) {
	source := strings.Join([]string{
		"def f():",
		"    if x:",
		"        print(1)",
		"print(2)",
	}, "\n")

	want := strings.Join([]string{
		"can f() ->",
		"if x ->",
		"print(1);",
		"ye;",
		"ye;",
		"print(2);",
	}, "\n")

	res := translate(t, model.HostToTeaching, source)
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestHostToTeaching_BlankLinesDoNotCloseBlocks(t *testing.T) {
	source := "def f():\n    a = 1\n\n    b = 2"
	want := strings.Join([]string{
		"can f() ->",
		"var a = 1;",
		"var b = 2;",
		"ye;",
	}, "\n")

	res := translate(t, model.HostToTeaching, source)
	if res.TranslatedCode != want {
		t.Errorf("TranslatedCode =\n%s\nwant\n%s", res.TranslatedCode, want)
	}
}

func TestHostToTeaching_AssignmentEdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"plain assignment becomes declaration", "x = 5", "var x = 5;"},
		{"augmented assignment passes through", "x += 1", "x += 1;"},
		{"comparison passes through", "x == y", "x == y;"},
		{"comment rewritten", "# hello", "// hello"},
		{"call passes through", "print(x)", "print(x);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := translate(t, model.HostToTeaching, tt.source)
			if res.TranslatedCode != tt.want {
				t.Errorf("TranslatedCode = %q, want %q", res.TranslatedCode, tt.want)
			}
		})
	}
}

func TestHostToTeaching_IndentWarnings(t *testing.T) {
	res := translate(t, model.HostToTeaching, "if a:\n   b = 1")

	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "not a multiple of") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want an odd indentation warning", res.Warnings)
	}

	res = translate(t, model.HostToTeaching, "if a:\n\tb = 1")
	found = false
	for _, w := range res.Warnings {
		if strings.Contains(w, "tab indentation") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a tab indentation warning", res.Warnings)
	}
}

// =========================================================================
// ROUND TRIPS & INVARIANTS
// =========================================================================

// TestRoundTrip_StructurallyStable translates teaching → host → teaching →
// host and requires both host renderings to be identical. Byte equality of
// the teaching forms is NOT promised (var x: int comes back as var x = int),
// but the host normal form must be a fixpoint.
func TestRoundTrip_StructurallyStable(t *testing.T) {
	sources := []string{
		"var x: int; can add(a,b) -> return a+b; ye;",
		"if a -> if b -> print(1); else -> print(2); ye; ye;",
		"can table(n) ->\nfor i in range(n) ->\nprint(i * n);\nye;\nye;",
		"// comment\nvar x = 1;\nprint(x);",
		"if n < 0 -> print(\"neg\"); elif n == 0 -> print(\"zero\"); else -> print(\"pos\"); ye;",
	}

	tr := newTestTranslator()
	for _, src := range sources {
		first := tr.Translate(src, model.TeachingToHost)
		if !first.Success {
			t.Fatalf("forward translation failed: %v", first.Errors)
		}
		back := tr.Translate(first.TranslatedCode, model.HostToTeaching)
		if !back.Success {
			t.Fatalf("reverse translation failed: %v", back.Errors)
		}
		second := tr.Translate(back.TranslatedCode, model.TeachingToHost)
		if !second.Success {
			t.Fatalf("second forward translation failed: %v", second.Errors)
		}
		if first.TranslatedCode != second.TranslatedCode {
			t.Errorf("round trip diverged for %q:\nfirst:\n%s\nsecond:\n%s",
				src, first.TranslatedCode, second.TranslatedCode)
		}
	}
}

func TestTranslate_SuccessMirrorsErrors(t *testing.T) {
	tr := newTestTranslator()

	ok := tr.Translate("var x = 1;", model.TeachingToHost)
	if !ok.Success || len(ok.Errors) != 0 {
		t.Errorf("Success = %v, Errors = %v; want success with no errors", ok.Success, ok.Errors)
	}

	bad := tr.Translate("var x = 1;", model.Direction("sideways"))
	if bad.Success {
		t.Error("Success = true for unknown direction, want false")
	}
	if len(bad.Errors) == 0 {
		t.Error("Errors empty for unknown direction, want at least one")
	}
}

func TestTranslate_Metadata(t *testing.T) {
	source := "var x = 1;"
	res := translate(t, model.TeachingToHost, source)

	if res.Metadata.OriginalLength != len(source) {
		t.Errorf("OriginalLength = %d, want %d", res.Metadata.OriginalLength, len(source))
	}
	if res.Metadata.TranslatedLength != len(res.TranslatedCode) {
		t.Errorf("TranslatedLength = %d, want %d", res.Metadata.TranslatedLength, len(res.TranslatedCode))
	}
	if res.Metadata.Direction != string(model.TeachingToHost) {
		t.Errorf("Direction = %q, want %q", res.Metadata.Direction, model.TeachingToHost)
	}
	if res.Metadata.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestTranslate_EmptyInput(t *testing.T) {
	res := translate(t, model.TeachingToHost, "")
	if res.TranslatedCode != "" {
		t.Errorf("TranslatedCode = %q, want empty", res.TranslatedCode)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

// =========================================================================
// SYNTAX VALIDATION
// =========================================================================

func TestValidateSyntax_EduScript(t *testing.T) {
	tr := newTestTranslator()
	ctx := context.Background()

	clean := tr.ValidateSyntax(ctx, "var x = 1; if x > 0 -> print(x); ye;", model.LanguageEduScript)
	if len(clean) != 0 {
		t.Errorf("findings = %v, want none for clean code", clean)
	}

	unbalanced := tr.ValidateSyntax(ctx, "if x > 0 -> print(x);", model.LanguageEduScript)
	if len(unbalanced) == 0 {
		t.Error("want a finding for an unclosed block")
	}

	foreign := tr.ValidateSyntax(ctx, "func main() -> print(1); ye;", model.LanguageEduScript)
	found := false
	for _, f := range foreign {
		if strings.Contains(f, `"func"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("findings = %v, want a foreign keyword finding for func", foreign)
	}
}

func TestValidateSyntax_Python(t *testing.T) {
	tr := newTestTranslator()
	ctx := context.Background()

	// Both the interpreter path and the heuristic fallback must agree on
	// these: valid code is clean, a block header with no body is not.
	clean := tr.ValidateSyntax(ctx, "x = 1\nprint(x)", model.LanguagePython)
	if len(clean) != 0 {
		t.Errorf("findings = %v, want none for valid python", clean)
	}

	bad := tr.ValidateSyntax(ctx, "def f():", model.LanguagePython)
	if len(bad) == 0 {
		t.Error("want a finding for a block header with no body")
	}
}

func TestValidateSyntax_UnknownDialect(t *testing.T) {
	tr := newTestTranslator()
	findings := tr.ValidateSyntax(context.Background(), "anything", "cobol")
	if len(findings) != 1 || !strings.Contains(findings[0], "unknown dialect") {
		t.Errorf("findings = %v, want exactly one unknown dialect finding", findings)
	}
}
