// Line-oriented scanner for translatable strings in Python sources.
//
// A real Python parser is overkill for this: tr()/translate() arguments in
// Qt plugins are string literals by convention (lupdate itself rejects
// anything else), so a class tracker plus literal matching covers what the
// toolchain would see.
package extract

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var (
	// class FilterMateDockWidget(QDockWidget):
	reClassDef = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(:]`)

	// self.tr("…") / self.tr('…')  — also matches cls.tr / <ident>.tr
	reTrCall = regexp.MustCompile(`\btr\(\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')`)

	// QCoreApplication.translate("Ctx", "…") and QApplication.translate
	reTranslateCall = regexp.MustCompile(`\btranslate\(\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')\s*,\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')`)
)

// classFrame tracks one enclosing class during the scan.
type classFrame struct {
	name   string
	indent int
}

// scanPythonFile extracts tr()/translate() string literals from one file.
// tr() calls take the innermost enclosing class as context; module-level
// calls fall back to fallbackContext.
func scanPythonFile(path, fallbackContext string) ([]occurrence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var occs []occurrence
	var stack []classFrame

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		// Pop classes we dedented out of.
		indent := indentWidth(line)
		for len(stack) > 0 && indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}

		if m := reClassDef.FindStringSubmatch(line); m != nil {
			stack = append(stack, classFrame{name: m[2], indent: len(m[1])})
			continue
		}

		context := fallbackContext
		if len(stack) > 0 {
			context = stack[len(stack)-1].name
		}

		for _, m := range reTrCall.FindAllStringSubmatch(line, -1) {
			source := unescapePy(firstNonEmpty(m[1], m[2]))
			if source == "" {
				continue
			}
			occs = append(occs, occurrence{
				context:  context,
				source:   source,
				filename: relPath(path),
				line:     lineNum,
			})
		}

		for _, m := range reTranslateCall.FindAllStringSubmatch(line, -1) {
			ctx := unescapePy(firstNonEmpty(m[1], m[2]))
			source := unescapePy(firstNonEmpty(m[3], m[4]))
			if ctx == "" || source == "" {
				continue
			}
			occs = append(occs, occurrence{
				context:  ctx,
				source:   source,
				filename: relPath(path),
				line:     lineNum,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return occs, nil
}

// indentWidth counts leading whitespace, tabs as 8 columns the way CPython
// tokenizes them.
func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 8
		default:
			return w
		}
	}
	return w
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// unescapePy resolves the escape sequences that occur in tr() literals.
func unescapePy(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
