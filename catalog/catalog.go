// Package catalog loads a directory of per-locale TS files and serves
// translation lookups with source-string fallback, the way the host UI
// framework would at runtime.
//
// Locale resolution goes through golang.org/x/text's matcher, so a request
// for "de_AT" picks the de_DE catalog when no Austrian one exists, and
// "nb_NO" can match a plain "no" catalog.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"

	ts "github.com/linguakit/tskit/tsfile"
)

// Set holds the catalogs of one project, keyed by locale code.
type Set struct {
	files   map[string]*ts.File
	locales []string
	tags    []language.Tag
	matcher language.Matcher
}

// Load reads every .ts file in dir. The locale key is the file's language
// attribute when present, otherwise the trailing locale segment of the file
// name (filtermate_de.ts → de). Catalogs that fail to parse are skipped:
// a malformed catalog behaves as if absent and lookups fall back to source.
func Load(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory: %w", err)
	}

	s := &Set{files: make(map[string]*ts.File)}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".ts") {
			continue
		}
		f, err := ts.ParseFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: ignoring %s: %v\n", name, err)
			continue
		}
		locale := f.Language
		if locale == "" {
			locale = LocaleFromFilename(name)
		}
		if locale == "" {
			continue
		}
		s.files[locale] = f
	}

	for locale := range s.files {
		s.locales = append(s.locales, locale)
	}
	sort.Strings(s.locales)

	for _, locale := range s.locales {
		tag, err := language.Parse(normalize(locale))
		if err != nil {
			tag = language.Und
		}
		s.tags = append(s.tags, tag)
	}
	if len(s.tags) > 0 {
		s.matcher = language.NewMatcher(s.tags)
	}

	return s, nil
}

// Locales returns the loaded locale codes, sorted.
func (s *Set) Locales() []string {
	return append([]string(nil), s.locales...)
}

// Catalog returns the catalog stored under the exact locale key, or nil.
func (s *Set) Catalog(locale string) *ts.File {
	return s.files[locale]
}

// Pick resolves a requested locale to the best loaded catalog. Exact key
// match wins; otherwise the x/text matcher decides (base-language
// fallback, region collapsing). Returns nil when nothing fits.
func (s *Set) Pick(locale string) *ts.File {
	if f, ok := s.files[locale]; ok {
		return f
	}
	if s.matcher == nil {
		return nil
	}
	want, err := language.Parse(normalize(locale))
	if err != nil {
		return nil
	}
	_, idx, conf := s.matcher.Match(want)
	if conf == language.No {
		return nil
	}
	return s.files[s.locales[idx]]
}

// Translator answers lookups against one resolved catalog.
type Translator struct {
	file *ts.File
}

// Translator returns a Translator for the requested locale. It never
// fails: with no matching catalog every lookup falls back to the source
// string, mirroring an application running without translations.
func (s *Set) Translator(locale string) *Translator {
	return &Translator{file: s.Pick(locale)}
}

// Tr returns the stored translation for (context, source), or the source
// string itself when the catalog is absent or the entry is missing,
// unfinished, or obsolete.
func (t *Translator) Tr(context, source string) string {
	if t.file == nil {
		return source
	}
	if translated, ok := t.file.Lookup(context, source); ok {
		return translated
	}
	return source
}

// LocaleFromFilename extracts the locale suffix from a TS file name:
// "FilterMate_am.ts" → "am", "filtermate_pt_BR.ts" → "pt_BR".
func LocaleFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), ".ts")
	idx := strings.Index(base, "_")
	if idx < 0 {
		return ""
	}
	suffix := base[idx+1:]
	// A region part means the final two segments form the locale.
	if j := strings.LastIndex(suffix, "_"); j >= 0 {
		lang, region := suffix[:j], suffix[j+1:]
		if isLangCode(lang) && isRegionCode(region) {
			return lang + "_" + region
		}
		if isLangCode(region) {
			return region
		}
	}
	if isLangCode(suffix) {
		return suffix
	}
	return ""
}

// normalize maps underscore locale codes (de_DE) to BCP 47 (de-DE).
func normalize(locale string) string {
	return strings.ReplaceAll(locale, "_", "-")
}

func isLangCode(s string) bool {
	if len(s) != 2 && len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func isRegionCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	return s[0] >= 'A' && s[0] <= 'Z' && s[1] >= 'A' && s[1] <= 'Z'
}
