package model

import "time"

// Direction selects which way the dialect translator rewrites code.
//
// The wire format uses the same strings ("teaching_to_host" / "host_to_teaching"),
// so no extra mapping layer is needed between JSON and the core.
type Direction string

const (
	TeachingToHost Direction = "teaching_to_host"
	HostToTeaching Direction = "host_to_teaching"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == TeachingToHost || d == HostToTeaching
}

// TranslationRequest represents one request to translate between dialects.
type TranslationRequest struct {
	SourceCode string    `json:"code"`
	Direction  Direction `json:"direction"`
}

// TranslationMetadata carries bookkeeping about a completed translation.
type TranslationMetadata struct {
	OriginalLength   int       `json:"original_length"`
	TranslatedLength int       `json:"translated_length"`
	Direction        string    `json:"direction"`
	Timestamp        time.Time `json:"timestamp"`
}

// TranslationResult is the outcome of one translation.
//
// INVARIANT: Success is true exactly when Errors is empty. The translator is
// deliberately forgiving — malformed constructs become Warnings and the line
// passes through untranslated — so Errors only fills when the translation
// pipeline itself fails, which callers must treat as "do not run this output".
type TranslationResult struct {
	Success        bool                `json:"success"`
	TranslatedCode string              `json:"translated_code"`
	SourceLanguage string              `json:"source_language"`
	TargetLanguage string              `json:"target_language"`
	Errors         []string            `json:"errors"`
	Warnings       []string            `json:"warnings"`
	Metadata       TranslationMetadata `json:"metadata"`
}
