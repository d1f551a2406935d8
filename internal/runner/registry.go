package runner

import (
	"github.com/nbekzat/codelab/internal/apperror"
)

// LanguageInfo is the listing shape for one supported language.
type LanguageInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Compiled bool   `json:"compiled"`
}

// Registry maps language ids to their runners. It is built once at startup
// and never mutated afterwards, so lookups need no locking.
type Registry struct {
	runners map[string]Runner
	order   []string // listing order, fixed at construction
}

// NewRegistry builds the registry with the built-in language table.
func NewRegistry() *Registry {
	specs := []LanguageSpec{
		{
			ID:         "python",
			Name:       "Python 3",
			SourceFile: "main.py",
			RunTpl:     "python3 {src}",
		},
		{
			ID:         "javascript",
			Name:       "JavaScript (Node.js)",
			SourceFile: "main.js",
			RunTpl:     "node {src}",
		},
		{
			ID:         "java",
			Name:       "Java",
			SourceFile: "Main.java",
			BinaryFile: "Main.class",
			CompileTpl: "javac {src}",
			RunTpl:     "java -cp {dir} Main",
		},
		{
			ID:         "c",
			Name:       "C (gcc)",
			SourceFile: "main.c",
			BinaryFile: "program",
			CompileTpl: "gcc {src} -O2 -o {bin}",
			RunTpl:     "{bin}",
		},
		{
			ID:         "cpp",
			Name:       "C++ (g++)",
			SourceFile: "main.cpp",
			BinaryFile: "program",
			CompileTpl: "g++ {src} -O2 -std=c++17 -o {bin}",
			RunTpl:     "{bin}",
		},
	}

	r := &Registry{runners: make(map[string]Runner, len(specs))}
	for _, spec := range specs {
		if spec.Compiled() {
			r.runners[spec.ID] = &compiledRunner{spec: spec}
		} else {
			r.runners[spec.ID] = &interpretedRunner{spec: spec}
		}
		r.order = append(r.order, spec.ID)
	}
	return r
}

// Lookup returns the runner for a language id.
func (r *Registry) Lookup(language string) (Runner, error) {
	runner, ok := r.runners[language]
	if !ok {
		return nil, apperror.UnsupportedLanguage(language)
	}
	return runner, nil
}

// Supported reports whether a language id has a runner.
func (r *Registry) Supported(language string) bool {
	_, ok := r.runners[language]
	return ok
}

// Languages lists supported language ids in declaration order.
func (r *Registry) Languages() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List describes every supported language for the public listing.
func (r *Registry) List() []LanguageInfo {
	out := make([]LanguageInfo, 0, len(r.order))
	for _, id := range r.order {
		spec := r.spec(id)
		out = append(out, LanguageInfo{
			ID:       spec.ID,
			Name:     spec.Name,
			Compiled: spec.Compiled(),
		})
	}
	return out
}

func (r *Registry) spec(id string) LanguageSpec {
	switch runner := r.runners[id].(type) {
	case *interpretedRunner:
		return runner.spec
	case *compiledRunner:
		return runner.spec
	}
	return LanguageSpec{}
}
