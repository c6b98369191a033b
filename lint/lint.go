// Package lint validates the structural integrity of TS catalogs.
//
// The checks are data-quality properties, not behavior: a catalog that
// fails them still loads, but lookups may be ambiguous or substitutions
// may break at runtime in the host application.
package lint

import (
	"fmt"

	ts "github.com/linguakit/tskit/tsfile"
)

// Severity classifies an issue.
type Severity int

const (
	// Warning marks a quality concern that does not break lookup.
	Warning Severity = iota
	// Error marks a defect that breaks lookup or runtime substitution.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Issue is a single finding against a catalog.
type Issue struct {
	Severity Severity
	// Context and Source identify the offending message; Context alone for
	// context-level findings.
	Context string
	Source  string
	// Message is the human-readable description.
	Message string
}

func (i Issue) String() string {
	loc := i.Context
	if i.Source != "" {
		src := i.Source
		if len(src) > 48 {
			src = src[:45] + "..."
		}
		loc = fmt.Sprintf("%s: %q", i.Context, src)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, loc, i.Message)
}

// Check runs all integrity checks over a catalog and returns the findings
// in document order.
func Check(f *ts.File) []Issue {
	var issues []Issue

	for _, c := range f.Contexts {
		if c.Name == "" {
			issues = append(issues, Issue{
				Severity: Error,
				Message:  "context has an empty <name>",
			})
		}

		seen := make(map[string]int)
		for _, m := range c.Messages {
			issues = append(issues, checkMessage(c.Name, m)...)

			if m.IsObsolete() {
				continue
			}
			seen[m.Source]++
			// Report on the second hit so output stays in document order.
			if seen[m.Source] == 2 {
				issues = append(issues, Issue{
					Severity: Error,
					Context:  c.Name,
					Source:   m.Source,
					Message:  "duplicate (context, source) pair; lookup is ambiguous",
				})
			}
		}
	}

	return issues
}

// checkMessage validates one message.
func checkMessage(context string, m *ts.Message) []Issue {
	var issues []Issue

	if m.Source == "" {
		issues = append(issues, Issue{
			Severity: Error,
			Context:  context,
			Message:  "message has an empty <source>",
		})
		return issues
	}

	// Obsolete entries are retained for reference only; their translations
	// are never substituted, so placeholder drift there is harmless.
	if m.IsObsolete() {
		return issues
	}

	if m.Type == ts.TypeUnfinished && m.Translation != "" {
		issues = append(issues, Issue{
			Severity: Warning,
			Context:  context,
			Source:   m.Source,
			Message:  "unfinished entry carries translation text; finish it or clear it",
		})
	}

	texts := []string{m.Translation}
	if m.Numerus {
		texts = m.NumerusForms
	}
	srcTokens := tokenSet(ts.Placeholders(m.Source))
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, tok := range ts.Placeholders(text) {
			if !srcTokens[tok] {
				issues = append(issues, Issue{
					Severity: Error,
					Context:  context,
					Source:   m.Source,
					Message:  fmt.Sprintf("translation introduces placeholder %s absent from source", tok),
				})
			}
		}
	}

	if hasAccelerator(m.Source) && m.Translation != "" && !hasAccelerator(m.Translation) {
		issues = append(issues, Issue{
			Severity: Warning,
			Context:  context,
			Source:   m.Source,
			Message:  "source has a keyboard accelerator (&) but the translation does not",
		})
	}

	return issues
}

func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// hasAccelerator reports whether s contains a Qt mnemonic marker: a single
// '&' directly before an alphanumeric ("&&" is a literal ampersand).
func hasAccelerator(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '&' {
			i++ // literal
			continue
		}
		if i+1 < len(s) && isAlnum(s[i+1]) {
			return true
		}
	}
	return false
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// Errors filters issues down to Error severity.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, i := range issues {
		if i.Severity == Error {
			out = append(out, i)
		}
	}
	return out
}
