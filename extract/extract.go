// Package extract builds a TS template catalog from a plugin source tree,
// filling the role lupdate plays in a Qt build.
//
// Two kinds of sources are scanned:
//   - Python files: self.tr("…") calls (context = enclosing class) and
//     QCoreApplication.translate("Ctx", "…") / QApplication.translate(…)
//     calls (context = first argument).
//   - Qt Designer .ui files: <string> properties under the form's
//     top-level widget (context = the widget's class name).
//
// The result is a locale-less template: every message is unfinished and
// carries a location reference for each occurrence.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	ts "github.com/linguakit/tskit/tsfile"
)

// skipDirs are directory names never scanned.
var skipDirs = map[string]bool{
	".git":        true,
	".svn":        true,
	"__pycache__": true,
	"node_modules": true,
	"venv":        true,
	".venv":       true,
	"i18n":        true,
	"help":        true,
}

// Result describes one extraction run.
type Result struct {
	// Template is the extracted catalog (all messages unfinished).
	Template *ts.File
	// SourceFiles lists every file that was scanned.
	SourceFiles []string
	// Strings is the number of distinct (context, source) pairs found.
	Strings int
}

// occurrence is a single translatable string hit during scanning.
type occurrence struct {
	context  string
	source   string
	filename string
	line     int
}

// Run scans the given directories and produces a template catalog.
// FallbackContext names the context used for tr() calls found outside any
// class (commonly the plugin name).
func Run(dirs []string, fallbackContext string) (*Result, error) {
	var pyFiles, uiFiles []string
	for _, dir := range dirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if skipDirs[info.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			switch filepath.Ext(path) {
			case ".py":
				pyFiles = append(pyFiles, path)
			case ".ui":
				uiFiles = append(uiFiles, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
	}

	var occurrences []occurrence
	var scanned []string

	for _, path := range pyFiles {
		occs, err := scanPythonFile(path, fallbackContext)
		if err != nil {
			// One unreadable file should not kill the whole run.
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			continue
		}
		occurrences = append(occurrences, occs...)
		scanned = append(scanned, path)
	}

	for _, path := range uiFiles {
		occs, err := scanUIFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			continue
		}
		occurrences = append(occurrences, occs...)
		scanned = append(scanned, path)
	}

	template := buildTemplate(occurrences)
	total, _, _, _ := template.Stats()

	return &Result{
		Template:    template,
		SourceFiles: scanned,
		Strings:     total,
	}, nil
}

// buildTemplate folds occurrences into a template catalog. Duplicate
// (context, source) hits collapse into one message with multiple locations.
// Context order follows first appearance; messages keep scan order.
func buildTemplate(occurrences []occurrence) *ts.File {
	f := ts.NewFile("")

	index := make(map[string]*ts.Message) // context\x04source
	for _, occ := range occurrences {
		k := occ.context + "\x04" + occ.source
		if m, ok := index[k]; ok {
			m.Locations = append(m.Locations, ts.Location{Filename: occ.filename, Line: occ.line})
			continue
		}
		m := &ts.Message{
			Source:    occ.source,
			Type:      ts.TypeUnfinished,
			Locations: []ts.Location{{Filename: occ.filename, Line: occ.line}},
		}
		index[k] = m
		c := f.EnsureContext(occ.context)
		c.Messages = append(c.Messages, m)
	}

	// Deterministic context order regardless of filesystem walk order.
	sort.SliceStable(f.Contexts, func(i, j int) bool {
		return f.Contexts[i].Name < f.Contexts[j].Name
	})
	// Rebuild the name index after sorting.
	reindexed := ts.NewFile("")
	for _, c := range f.Contexts {
		rc := reindexed.EnsureContext(c.Name)
		rc.Messages = c.Messages
	}
	return reindexed
}

// relPath makes location references slash-separated, matching the advisory
// style Qt tooling writes.
func relPath(path string) string {
	return filepath.ToSlash(path)
}
