package security

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func newTestValidator() *Validator {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(logger)
}

// =========================================================================
// DENIED CONSTRUCTS
// =========================================================================

func TestValidate_DeniedConstructs(t *testing.T) {
	tests := []struct {
		name     string
		language string
		code     string
		category string // expected category named in the refusal
	}{
		{
			name:     "python subprocess",
			language: "python",
			code:     "import subprocess\nsubprocess.run(['ls'])",
			category: "process control",
		},
		{
			name:     "python os.system",
			language: "python",
			code:     "import os\nos.system('whoami')",
			category: "process control",
		},
		{
			name:     "python shutil.rmtree",
			language: "python",
			code:     "import shutil\nshutil.rmtree('/')",
			category: "filesystem access",
		},
		{
			name:     "python socket",
			language: "python",
			code:     "import socket\ns = socket.socket()",
			category: "network access",
		},
		{
			name:     "eduscript carrying a python payload",
			language: "eduscript",
			code:     "var cmd = __x__; os.system(cmd);",
			category: "process control",
		},
		{
			name:     "javascript child_process",
			language: "javascript",
			code:     "const cp = require('child_process');",
			category: "process control",
		},
		{
			name:     "javascript fetch",
			language: "javascript",
			code:     "fetch('https://example.com')",
			category: "network access",
		},
		{
			name:     "java Runtime.exec",
			language: "java",
			code:     `Runtime.getRuntime().exec("rm file");`,
			category: "process control",
		},
		{
			name:     "java socket",
			language: "java",
			code:     "java.net.Socket s = new java.net.Socket(host, 80);",
			category: "network access",
		},
		{
			name:     "c system call",
			language: "c",
			code:     `#include <stdlib.h>` + "\n" + `int main() { system("ls"); }`,
			category: "process control",
		},
		{
			name:     "cpp fork",
			language: "cpp",
			code:     "int main() { fork(); }",
			category: "process control",
		},
		{
			name:     "shell rm -rf in any language",
			language: "python",
			code:     `cmd = "rm -rf /"`,
			category: "filesystem access",
		},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := v.Validate(tt.code, tt.language)
			if d.Allowed {
				t.Fatalf("Validate() allowed code that should be refused: %q", tt.code)
			}
			if !strings.Contains(d.Reason, tt.category) {
				t.Errorf("Reason = %q, want it to name category %q", d.Reason, tt.category)
			}
		})
	}
}

// =========================================================================
// ALLOWED CODE
// =========================================================================

func TestValidate_AllowsHarmlessCode(t *testing.T) {
	tests := []struct {
		name     string
		language string
		code     string
	}{
		{"python arithmetic", "python", "x = 2 + 2\nprint(x)"},
		{"python function", "python", "def fib(n):\n    return n if n <= 1 else fib(n-1) + fib(n-2)"},
		{"eduscript function", "eduscript", "can add(a,b) -> return a+b; ye;"},
		{"javascript loop", "javascript", "for (let i = 0; i < 3; i++) console.log(i);"},
		{"java hello", "java", `public class Main { public static void main(String[] a) { System.out.println("hi"); } }`},
		{"c hello", "c", `#include <stdio.h>` + "\n" + `int main() { printf("hi\n"); return 0; }`},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := v.Validate(tt.code, tt.language)
			if !d.Allowed {
				t.Errorf("Validate() refused harmless code: %s", d.Reason)
			}
			if d.Reason != "" {
				t.Errorf("Reason = %q, want empty for allowed code", d.Reason)
			}
		})
	}
}

// =========================================================================
// FAIL-CLOSED BEHAVIOUR
// =========================================================================

func TestValidate_UnknownLanguageScansEverything(t *testing.T) {
	v := newTestValidator()

	// "zig" has no list of its own, so the python patterns must still fire.
	d := v.Validate("os.system('whoami')", "zig")
	if d.Allowed {
		t.Fatal("Validate() must fail closed for unknown languages")
	}

	// And a javascript pattern fires for the same unknown language.
	d = v.Validate("require('child_process')", "zig")
	if d.Allowed {
		t.Fatal("Validate() must scan all lists for unknown languages")
	}
}

func TestValidate_EmptyCodeAllowed(t *testing.T) {
	v := newTestValidator()
	if d := v.Validate("", "python"); !d.Allowed {
		t.Errorf("Validate(\"\") refused: %s", d.Reason)
	}
}
