// Package config implements auto-detection of project settings from a
// QGIS plugin tree: metadata.txt, the i18n/ catalog directory, and the
// source directories worth scanning.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Project holds auto-detected project configuration.
type Project struct {
	// Name is the plugin name from metadata.txt, or the directory name.
	Name string
	// Version from metadata.txt.
	Version string
	// Root is the absolute project root.
	Root string
	// I18nDir is the directory containing .ts catalogs.
	I18nDir string
	// FilePrefix names catalogs: <FilePrefix>_<locale>.ts.
	FilePrefix string
	// SourceDirs are directories to scan for tr() calls and .ui files.
	SourceDirs []string
	// Languages detected from existing .ts files.
	Languages []string
	// SourceLang is the language the source strings are written in.
	SourceLang string
	// FallbackContext is used for strings extracted outside any class.
	FallbackContext string
}

// TSPath returns the catalog path for a locale.
func (p *Project) TSPath(locale string) string {
	return filepath.Join(p.I18nDir, p.FilePrefix+"_"+locale+".ts")
}

// Detect auto-detects project settings from a plugin directory.
func Detect(rootDir string) *Project {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		absRoot = rootDir
	}

	p := &Project{
		Root:       absRoot,
		Name:       filepath.Base(absRoot),
		I18nDir:    filepath.Join(absRoot, "i18n"),
		SourceLang: "en",
	}

	if name, version, ok := parseMetadata(filepath.Join(absRoot, "metadata.txt")); ok {
		if name != "" {
			p.Name = name
		}
		p.Version = version
	}
	if p.Version == "" {
		p.Version = "0.0.0"
	}
	p.FallbackContext = p.Name

	// Sources: the plugin root itself, plus conventional subtrees when
	// present. The extractor skips i18n/, help/ and caches on its own.
	p.SourceDirs = []string{absRoot}
	p.FilePrefix, p.Languages = detectCatalogs(p.I18nDir)
	if p.FilePrefix == "" {
		p.FilePrefix = p.Name
	}

	return p
}

// detectCatalogs scans an i18n directory for <prefix>_<locale>.ts files
// and returns the dominant prefix plus the sorted locale list.
func detectCatalogs(dir string) (prefix string, locales []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", nil
	}

	prefixCount := make(map[string]int)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".ts") {
			continue
		}
		base := strings.TrimSuffix(name, ".ts")
		locale := localeSuffix(base)
		if locale == "" {
			continue
		}
		locales = append(locales, locale)
		prefixCount[strings.TrimSuffix(base, "_"+locale)]++
	}
	sort.Strings(locales)

	best := 0
	for cand, n := range prefixCount {
		if n > best || (n == best && cand < prefix) {
			prefix, best = cand, n
		}
	}
	return prefix, locales
}

// localeSuffix returns the trailing locale of a catalog base name:
// "FilterMate_pt_BR" → "pt_BR", "FilterMate_am" → "am".
func localeSuffix(base string) string {
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return ""
	}
	last := parts[len(parts)-1]
	if len(parts) >= 3 && isLang(parts[len(parts)-2]) && isRegion(last) {
		return parts[len(parts)-2] + "_" + last
	}
	if isLang(last) {
		return last
	}
	return ""
}

func isLang(s string) bool {
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

func isRegion(s string) bool {
	return len(s) == 2 && s[0] >= 'A' && s[0] <= 'Z' && s[1] >= 'A' && s[1] <= 'Z'
}

// parseMetadata extracts name and version from a QGIS metadata.txt,
// an INI file with a [general] section.
func parseMetadata(path string) (name, version string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", false
	}
	defer f.Close()

	section := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(line[1 : len(line)-1])
			continue
		}
		if section != "general" && section != "" {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		switch strings.ToLower(key) {
		case "name":
			name = value
		case "version":
			version = value
		}
	}
	return name, version, true
}
