// Package tsfile implements reading and writing of Qt Linguist TS files —
// the XML translation catalogs consumed by Qt's translation loader and
// edited with Qt Linguist.
//
// A TS file holds one target locale. Messages are grouped into contexts
// (usually named after a UI class) and carry a status: finished (the
// default), "unfinished" (awaiting translation), or "obsolete"/"vanished"
// (source string no longer present in the application). Placeholder tokens
// like {filename}, {0} or %1 inside source/translation text are opaque to
// the format and pass through uninterpreted.
package tsfile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// MessageType is the value of the <translation type="…"> attribute.
type MessageType string

const (
	// TypeFinished is the default (no type attribute): a valid translation.
	TypeFinished MessageType = ""
	// TypeUnfinished marks a message awaiting translation. The host
	// application falls back to the source string at runtime.
	TypeUnfinished MessageType = "unfinished"
	// TypeObsolete marks a message whose source string no longer appears
	// in the application. Retained for reference, ignored on lookup.
	TypeObsolete MessageType = "obsolete"
	// TypeVanished is the TS 2.1 spelling of obsolete emitted by lupdate.
	TypeVanished MessageType = "vanished"
)

// Location is an advisory source reference (<location filename="…" line="…"/>).
// Often stale or symbolic; never used for lookup.
type Location struct {
	Filename string
	Line     int
}

// Message is the atomic translation unit: a source string paired with a
// target-language translation and a status flag.
type Message struct {
	// Locations are advisory source references, in document order.
	Locations []Location
	// Source is the authoring-language text. May contain {placeholders},
	// HTML entities and embedded newlines, all preserved verbatim.
	Source string
	// Comment is the optional <comment> disambiguation string.
	Comment string
	// Translation is the target-language text. Empty for unfinished entries.
	Translation string
	// Type is the message status (finished/unfinished/obsolete/vanished).
	Type MessageType
	// Numerus is true for plural messages (numerus="yes").
	Numerus bool
	// NumerusForms holds the <numerusform> texts when Numerus is set.
	NumerusForms []string
}

// IsObsolete reports whether the message is retired (obsolete or vanished).
func (m *Message) IsObsolete() bool {
	return m.Type == TypeObsolete || m.Type == TypeVanished
}

// IsFinished reports whether the message carries a valid translation.
func (m *Message) IsFinished() bool {
	if m.Type != TypeFinished {
		return false
	}
	if m.Numerus {
		if len(m.NumerusForms) == 0 {
			return false
		}
		for _, f := range m.NumerusForms {
			if f == "" {
				return false
			}
		}
		return true
	}
	return m.Translation != ""
}

// Context groups messages under a name, conventionally the UI class the
// strings belong to. Purely organizational.
type Context struct {
	Name     string
	Messages []*Message
}

// MessageBySource returns the first non-obsolete message with the given
// source string, or nil. Duplicate (context, source) pairs occur in real
// catalogs; first match wins.
func (c *Context) MessageBySource(source string) *Message {
	for _, m := range c.Messages {
		if m.Source == source && !m.IsObsolete() {
			return m
		}
	}
	return nil
}

// File represents a parsed TS catalog for one target locale.
type File struct {
	// Version is the TS format version attribute (e.g. "2.1").
	Version string
	// Language is the target locale code (e.g. "de_DE").
	Language string
	// SourceLanguage is the authoring locale (typically "en_US"); optional.
	SourceLanguage string
	// Contexts in document order.
	Contexts []*Context

	// byName maps context name to index in Contexts (first occurrence).
	byName map[string]int
}

// NewFile creates an empty catalog for the given target locale.
func NewFile(language string) *File {
	return &File{
		Version:        "2.1",
		Language:       language,
		SourceLanguage: "en_US",
		byName:         make(map[string]int),
	}
}

// Context returns the context with the given name, or nil.
func (f *File) Context(name string) *Context {
	if idx, ok := f.byName[name]; ok {
		return f.Contexts[idx]
	}
	return nil
}

// EnsureContext returns the named context, creating it if absent.
func (f *File) EnsureContext(name string) *Context {
	if c := f.Context(name); c != nil {
		return c
	}
	c := &Context{Name: name}
	if f.byName == nil {
		f.byName = make(map[string]int)
	}
	f.byName[name] = len(f.Contexts)
	f.Contexts = append(f.Contexts, c)
	return c
}

// Lookup returns the stored translation for (context, source). Unfinished
// and obsolete entries do not resolve — callers fall back to the source
// string, matching the host framework's behavior.
func (f *File) Lookup(context, source string) (string, bool) {
	c := f.Context(context)
	if c == nil {
		return "", false
	}
	for _, m := range c.Messages {
		if m.Source == source && m.IsFinished() {
			return m.Translation, true
		}
	}
	return "", false
}

// SetTranslation stores a translation for (context, source) and marks the
// message finished. Returns false if no such message exists.
func (f *File) SetTranslation(context, source, translation string) bool {
	c := f.Context(context)
	if c == nil {
		return false
	}
	m := c.MessageBySource(source)
	if m == nil {
		return false
	}
	m.Translation = translation
	m.Type = TypeFinished
	return true
}

// Stats returns catalog counts. Obsolete/vanished messages are counted
// separately and excluded from total.
func (f *File) Stats() (total, finished, unfinished, obsolete int) {
	for _, c := range f.Contexts {
		for _, m := range c.Messages {
			if m.IsObsolete() {
				obsolete++
				continue
			}
			total++
			if m.IsFinished() {
				finished++
			} else {
				unfinished++
			}
		}
	}
	return
}

// UnfinishedMessages returns all non-obsolete messages that lack a valid
// translation, paired with their context name.
func (f *File) UnfinishedMessages() []MessageRef {
	var refs []MessageRef
	for _, c := range f.Contexts {
		for _, m := range c.Messages {
			if !m.IsObsolete() && !m.IsFinished() {
				refs = append(refs, MessageRef{Context: c.Name, Message: m})
			}
		}
	}
	return refs
}

// MessageRef pairs a message with the name of its enclosing context.
type MessageRef struct {
	Context string
	Message *Message
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a TS file from disk.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse parses TS XML data. Malformed XML yields an error so that callers
// can treat the catalog as absent and fall back to source-language strings.
func Parse(data []byte) (*File, error) {
	f := &File{byName: make(map[string]int)}

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	sawTS := false

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("malformed TS XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "TS":
				sawTS = true
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "version":
						f.Version = attr.Value
					case "language":
						f.Language = attr.Value
					case "sourcelanguage":
						f.SourceLanguage = attr.Value
					}
				}
			case "context":
				if !sawTS {
					return nil, fmt.Errorf("malformed TS XML: <context> outside <TS>")
				}
				c, err := parseContext(dec)
				if err != nil {
					return nil, err
				}
				// First occurrence wins in byName; later same-named
				// contexts stay addressable by index.
				if _, exists := f.byName[c.Name]; !exists {
					f.byName[c.Name] = len(f.Contexts)
				}
				f.Contexts = append(f.Contexts, c)
			default:
				if sawTS {
					dec.Skip()
				}
			}
		}
	}

	if !sawTS {
		return nil, fmt.Errorf("malformed TS XML: missing <TS> root element")
	}
	return f, nil
}

// parseContext parses a <context> element already opened.
func parseContext(dec *xml.Decoder) (*Context, error) {
	c := &Context{}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed TS XML: unterminated <context>: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				s, err := readCharData(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <name>: %w", err)
				}
				c.Name = s
			case "message":
				m, err := parseMessage(dec, t)
				if err != nil {
					return nil, err
				}
				c.Messages = append(c.Messages, m)
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return c, nil
}

// parseMessage parses a <message> element already opened.
func parseMessage(dec *xml.Decoder, elem xml.StartElement) (*Message, error) {
	m := &Message{}
	for _, attr := range elem.Attr {
		if attr.Name.Local == "numerus" && strings.EqualFold(attr.Value, "yes") {
			m.Numerus = true
		}
	}

	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed TS XML: unterminated <message>: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "location":
				loc := Location{}
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "filename":
						loc.Filename = attr.Value
					case "line":
						loc.Line, _ = strconv.Atoi(attr.Value)
					}
				}
				m.Locations = append(m.Locations, loc)
				dec.Skip()
			case "source":
				s, err := readCharData(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <source>: %w", err)
				}
				m.Source = s
			case "comment":
				s, err := readCharData(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <comment>: %w", err)
				}
				m.Comment = s
			case "translation":
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" {
						m.Type = MessageType(attr.Value)
					}
				}
				if m.Numerus {
					forms, err := readNumerusForms(dec)
					if err != nil {
						return nil, err
					}
					m.NumerusForms = forms
				} else {
					s, err := readCharData(dec)
					if err != nil {
						return nil, fmt.Errorf("reading <translation>: %w", err)
					}
					m.Translation = s
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return m, nil
}

// readCharData reads text content up to the element's matching close tag.
// Entities are decoded by the XML decoder; embedded newlines survive intact.
func readCharData(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			// Inline markup (e.g. <byte value="…"/>) is rare in TS; keep
			// the raw tag text so round-trips don't lose it.
			depth++
			b.WriteString("<" + t.Name.Local + ">")
		case xml.EndElement:
			depth--
			if depth > 0 {
				b.WriteString("</" + t.Name.Local + ">")
			}
		}
	}
	return b.String(), nil
}

// readNumerusForms reads <numerusform> children of an opened <translation>.
func readNumerusForms(dec *xml.Decoder) ([]string, error) {
	var forms []string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading <numerusform>: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "numerusform" && depth == 1 {
				s, err := readCharData(dec)
				if err != nil {
					return nil, fmt.Errorf("reading <numerusform>: %w", err)
				}
				forms = append(forms, s)
			} else {
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return forms, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteFile writes the catalog to disk.
func (f *File) WriteFile(path string) error {
	return os.WriteFile(path, f.Marshal(), 0644)
}

// Marshal produces TS XML in the layout Qt Linguist emits, so that diffs
// against lupdate output stay minimal. Every (context, source, translation,
// status) tuple round-trips exactly.
func (f *File) Marshal() []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<!DOCTYPE TS>\n")

	b.WriteString("<TS")
	if f.Version != "" {
		fmt.Fprintf(&b, " version=\"%s\"", xmlEscapeAttr(f.Version))
	}
	if f.Language != "" {
		fmt.Fprintf(&b, " language=\"%s\"", xmlEscapeAttr(f.Language))
	}
	if f.SourceLanguage != "" {
		fmt.Fprintf(&b, " sourcelanguage=\"%s\"", xmlEscapeAttr(f.SourceLanguage))
	}
	b.WriteString(">\n")

	for _, c := range f.Contexts {
		b.WriteString("<context>\n")
		fmt.Fprintf(&b, "    <name>%s</name>\n", xmlEscape(c.Name))
		for _, m := range c.Messages {
			writeMessage(&b, m)
		}
		b.WriteString("</context>\n")
	}

	b.WriteString("</TS>\n")
	return []byte(b.String())
}

func writeMessage(b *strings.Builder, m *Message) {
	if m.Numerus {
		b.WriteString("    <message numerus=\"yes\">\n")
	} else {
		b.WriteString("    <message>\n")
	}

	for _, loc := range m.Locations {
		fmt.Fprintf(b, "        <location filename=\"%s\" line=\"%d\"/>\n", xmlEscapeAttr(loc.Filename), loc.Line)
	}

	fmt.Fprintf(b, "        <source>%s</source>\n", xmlEscape(m.Source))
	if m.Comment != "" {
		fmt.Fprintf(b, "        <comment>%s</comment>\n", xmlEscape(m.Comment))
	}

	typeAttr := ""
	if m.Type != TypeFinished {
		typeAttr = fmt.Sprintf(" type=\"%s\"", string(m.Type))
	}

	if m.Numerus {
		fmt.Fprintf(b, "        <translation%s>\n", typeAttr)
		for _, form := range m.NumerusForms {
			fmt.Fprintf(b, "            <numerusform>%s</numerusform>\n", xmlEscape(form))
		}
		b.WriteString("        </translation>\n")
	} else {
		fmt.Fprintf(b, "        <translation%s>%s</translation>\n", typeAttr, xmlEscape(m.Translation))
	}

	b.WriteString("    </message>\n")
}

// xmlEscape escapes text content for TS output. Newlines stay literal —
// Qt Linguist keeps them raw inside elements.
func xmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// xmlEscapeAttr escapes a value for use inside a double-quoted attribute.
func xmlEscapeAttr(s string) string {
	s = xmlEscape(s)
	return strings.ReplaceAll(s, "\"", "&quot;")
}

// ---------------------------------------------------------------------------
// Placeholder tokens
// ---------------------------------------------------------------------------

// rePlaceholder matches {identifier} and {0}-style substitution markers.
// Doubled braces ({{ / }}) are literals and never captured.
var rePlaceholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*|[0-9]+)\}`)

// reQtArg matches Qt positional arguments %1 … %99.
var reQtArg = regexp.MustCompile(`%[1-9][0-9]?`)

// Placeholders returns the substitution tokens in s, sorted and
// deduplicated: brace forms ({count}, {0}) and Qt arg markers (%1).
// The format treats them as opaque; they matter only for integrity checks.
func Placeholders(s string) []string {
	set := make(map[string]bool)
	for _, m := range rePlaceholder.FindAllStringIndex(s, -1) {
		// Skip doubled-brace literals: "{{name}}" is not a marker.
		if m[0] > 0 && s[m[0]-1] == '{' {
			continue
		}
		if m[1] < len(s) && s[m[1]] == '}' {
			continue
		}
		set[s[m[0]:m[1]]] = true
	}
	for _, m := range reQtArg.FindAllStringIndex(s, -1) {
		// Skip doubled-percent literals: the %1 in "100%%1" is not a marker.
		// An even run of preceding percents still leaves a real marker,
		// as in "%%%1".
		run := 0
		for i := m[0] - 1; i >= 0 && s[i] == '%'; i-- {
			run++
		}
		if run%2 == 1 {
			continue
		}
		set[s[m[0]:m[1]]] = true
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
