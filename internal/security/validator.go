// Package security screens student code before it reaches the sandbox.
//
// WHAT THIS IS (AND ISN'T):
// A static deny-list scan over the raw source. It catches the obvious ways a
// student (or a pasted snippet) tries to leave the sandbox — spawning
// processes, deleting files outside the scratch directory, opening network
// connections. It is a first gate, not a proof: the sandbox behind it still
// enforces isolation at the process level. Defence comes from the pair.
//
// The scan runs BEFORE translation, on whatever the student submitted. Code
// it refuses never reaches the translator or the executor.
package security

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/nbekzat/codelab/internal/model"
)

// Decision is the validator's verdict on one piece of code.
type Decision struct {
	Allowed bool
	Reason  string // human-readable refusal, empty when allowed
}

// Refusal categories, used in the reason shown to the student.
const (
	categoryProcess    = "process control"
	categoryFilesystem = "filesystem access"
	categoryNetwork    = "network access"
)

// pattern is one denied construct: the regexp that detects it, the label we
// name it by when refusing, and which category it belongs to.
type pattern struct {
	re       *regexp.Regexp
	label    string
	category string
}

func deny(category, label, expr string) pattern {
	return pattern{re: regexp.MustCompile(expr), label: label, category: category}
}

// Validator holds the compiled deny lists. Built once, never mutated, safe
// for concurrent use.
type Validator struct {
	logger     *slog.Logger
	byLanguage map[string][]pattern
	all        []pattern // union of every list, for languages we don't know
}

// New compiles the deny lists for all supported languages.
//
// EduScript shares Python's list: unrecognised EduScript statements pass
// through translation verbatim, so anything Python-dangerous is just as
// dangerous written inside EduScript.
func New(logger *slog.Logger) *Validator {
	python := []pattern{
		deny(categoryProcess, "subprocess", `\bsubprocess\b`),
		deny(categoryProcess, "os.system", `\bos\.system\b`),
		deny(categoryProcess, "os.popen", `\bos\.popen\b`),
		deny(categoryProcess, "os.exec*", `\bos\.exec\w*\b`),
		deny(categoryProcess, "os.spawn*", `\bos\.spawn\w*\b`),
		deny(categoryProcess, "os.fork", `\bos\.fork\b`),
		deny(categoryFilesystem, "shutil.rmtree", `\bshutil\.rmtree\b`),
		deny(categoryFilesystem, "os.remove", `\bos\.remove\b`),
		deny(categoryFilesystem, "os.unlink", `\bos\.unlink\b`),
		deny(categoryFilesystem, "os.rmdir", `\bos\.rmdir\b`),
		deny(categoryFilesystem, "os.removedirs", `\bos\.removedirs\b`),
		deny(categoryNetwork, "socket", `\bsocket\b`),
		deny(categoryNetwork, "urllib", `\burllib\b`),
		deny(categoryNetwork, "requests", `\brequests\b`),
		deny(categoryNetwork, "http.client", `\bhttp\.client\b`),
		deny(categoryNetwork, "ftplib", `\bftplib\b`),
	}

	javascript := []pattern{
		deny(categoryProcess, "child_process", `\bchild_process\b`),
		deny(categoryProcess, "execSync", `\bexecSync\b`),
		deny(categoryFilesystem, "fs.unlink", `\bfs\.unlink\w*\b`),
		deny(categoryFilesystem, "fs.rm", `\bfs\.rm\w*\b`),
		deny(categoryFilesystem, "rimraf", `\brimraf\b`),
		deny(categoryNetwork, "net module", `require\s*\(\s*['"]net['"]\s*\)`),
		deny(categoryNetwork, "http module", `require\s*\(\s*['"]https?['"]\s*\)`),
		deny(categoryNetwork, "fetch", `\bfetch\s*\(`),
		deny(categoryNetwork, "XMLHttpRequest", `\bXMLHttpRequest\b`),
	}

	java := []pattern{
		deny(categoryProcess, "Runtime.exec", `Runtime\.getRuntime\s*\(\s*\)\s*\.exec`),
		deny(categoryProcess, "ProcessBuilder", `\bProcessBuilder\b`),
		deny(categoryFilesystem, "File.delete", `\.delete\s*\(\s*\)`),
		deny(categoryFilesystem, "Files.delete", `\bFiles\.delete\w*\b`),
		deny(categoryNetwork, "java.net.Socket", `\bjava\.net\.Socket\b`),
		deny(categoryNetwork, "java.net.URL", `\bjava\.net\.URL\b`),
		deny(categoryNetwork, "HttpURLConnection", `\bHttpURLConnection\b`),
		deny(categoryNetwork, "HttpClient", `\bHttpClient\b`),
	}

	c := []pattern{
		deny(categoryProcess, "system()", `\bsystem\s*\(`),
		deny(categoryProcess, "fork()", `\bfork\s*\(`),
		deny(categoryProcess, "exec family", `\bexec[lv]p?e?\s*\(`),
		deny(categoryProcess, "popen()", `\bpopen\s*\(`),
		deny(categoryFilesystem, "remove()", `\bremove\s*\(`),
		deny(categoryFilesystem, "unlink()", `\bunlink\s*\(`),
		deny(categoryFilesystem, "rmdir()", `\brmdir\s*\(`),
		deny(categoryNetwork, "socket()", `\bsocket\s*\(`),
		deny(categoryNetwork, "socket headers", `<sys/socket\.h>`),
	}

	// Shell-level constructs that are dangerous no matter what language
	// claims to wrap them.
	generic := []pattern{
		deny(categoryFilesystem, "rm -rf", `\brm\s+-[a-z]*f`),
		deny(categoryFilesystem, "mkfs", `\bmkfs\b`),
		deny(categoryProcess, "dd if=", `\bdd\s+if=`),
	}

	byLanguage := map[string][]pattern{
		model.LanguagePython:    append(python, generic...),
		model.LanguageEduScript: append(python, generic...),
		"javascript":            append(javascript, generic...),
		"java":                  append(java, generic...),
		"c":                     append(c, generic...),
		"cpp":                   append(c, generic...),
	}

	var all []pattern
	for _, list := range [][]pattern{python, javascript, java, c, generic} {
		all = append(all, list...)
	}

	return &Validator{
		logger:     logger,
		byLanguage: byLanguage,
		all:        all,
	}
}

// Validate scans code and decides whether it may run.
//
// FAIL CLOSED:
// A language the validator has no list for is scanned against every list we
// have. Unknown input gets the strictest treatment, never a free pass.
func (v *Validator) Validate(code, language string) Decision {
	patterns, ok := v.byLanguage[language]
	if !ok {
		patterns = v.all
	}

	for _, p := range patterns {
		if p.re.MatchString(code) {
			v.logger.Warn("code refused by security scan",
				slog.String("language", language),
				slog.String("construct", p.label),
				slog.String("category", p.category),
			)
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("%s: %s is not allowed in the sandbox", p.category, p.label),
			}
		}
	}

	return Decision{Allowed: true}
}
