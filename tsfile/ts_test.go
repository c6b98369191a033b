package tsfile

import (
	"reflect"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Parse tests
// ---------------------------------------------------------------------------

const sampleTS = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="de_DE" sourcelanguage="en_US">
<context>
    <name>FilterMate</name>
    <message>
        <location filename="../filter_mate.py" line="142"/>
        <source>Reset Configuration</source>
        <translation>Konfiguration Zurücksetzen</translation>
    </message>
    <message>
        <source>Database deleted: {filename}</source>
        <translation>Datenbank gelöscht: {filename}</translation>
    </message>
    <message>
        <source>Export canceled</source>
        <translation type="unfinished"></translation>
    </message>
</context>
<context>
    <name>OptimizationDialog</name>
    <message>
        <source>Materialized Views</source>
        <translation type="obsolete">Materialisierte Sichten</translation>
    </message>
</context>
</TS>
`

func TestParse_Basic(t *testing.T) {
	f, err := Parse([]byte(sampleTS))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if f.Version != "2.1" {
		t.Errorf("version: got %q, want 2.1", f.Version)
	}
	if f.Language != "de_DE" {
		t.Errorf("language: got %q, want de_DE", f.Language)
	}
	if f.SourceLanguage != "en_US" {
		t.Errorf("sourcelanguage: got %q, want en_US", f.SourceLanguage)
	}
	if len(f.Contexts) != 2 {
		t.Fatalf("contexts: got %d, want 2", len(f.Contexts))
	}

	c := f.Context("FilterMate")
	if c == nil {
		t.Fatal("context FilterMate not found")
	}
	if len(c.Messages) != 3 {
		t.Fatalf("messages: got %d, want 3", len(c.Messages))
	}

	m := c.Messages[0]
	if m.Source != "Reset Configuration" {
		t.Errorf("source: got %q", m.Source)
	}
	if m.Translation != "Konfiguration Zurücksetzen" {
		t.Errorf("translation: got %q", m.Translation)
	}
	if m.Type != TypeFinished {
		t.Errorf("type: got %q, want finished", m.Type)
	}
	if len(m.Locations) != 1 || m.Locations[0].Filename != "../filter_mate.py" || m.Locations[0].Line != 142 {
		t.Errorf("locations: got %+v", m.Locations)
	}
}

func TestParse_StatusFlags(t *testing.T) {
	f, err := Parse([]byte(sampleTS))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	unfinished := f.Context("FilterMate").Messages[2]
	if unfinished.Type != TypeUnfinished {
		t.Errorf("type: got %q, want unfinished", unfinished.Type)
	}
	if unfinished.IsFinished() {
		t.Error("unfinished entry must not report finished")
	}

	obsolete := f.Context("OptimizationDialog").Messages[0]
	if !obsolete.IsObsolete() {
		t.Error("obsolete entry not detected")
	}
	// Obsolete entries keep their last translation for reference.
	if obsolete.Translation != "Materialisierte Sichten" {
		t.Errorf("obsolete translation: got %q", obsolete.Translation)
	}
}

func TestParse_EntitiesAndNewlines(t *testing.T) {
	ts := `<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1" language="de_DE">
<context>
    <name>dw</name>
    <message>
        <source>Use R-tree &amp; BBox
pre-filtering</source>
        <translation>R-Baum &amp; BBox
Vorfilterung verwenden</translation>
    </message>
</context>
</TS>
`
	f, err := Parse([]byte(ts))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	m := f.Context("dw").Messages[0]
	if m.Source != "Use R-tree & BBox\npre-filtering" {
		t.Errorf("source: got %q", m.Source)
	}
	got, ok := f.Lookup("dw", "Use R-tree & BBox\npre-filtering")
	if !ok || got != "R-Baum & BBox\nVorfilterung verwenden" {
		t.Errorf("lookup: got %q ok=%v", got, ok)
	}
}

func TestParse_Numerus(t *testing.T) {
	ts := `<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1" language="pl">
<context>
    <name>FilterMate</name>
    <message numerus="yes">
        <source>%n feature(s) selected</source>
        <translation>
            <numerusform>%n obiekt wybrany</numerusform>
            <numerusform>%n obiekty wybrane</numerusform>
            <numerusform>%n obiektów wybranych</numerusform>
        </translation>
    </message>
</context>
</TS>
`
	f, err := Parse([]byte(ts))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	m := f.Context("FilterMate").Messages[0]
	if !m.Numerus {
		t.Fatal("numerus flag not parsed")
	}
	if len(m.NumerusForms) != 3 {
		t.Fatalf("numerus forms: got %d, want 3", len(m.NumerusForms))
	}
	if m.NumerusForms[2] != "%n obiektów wybranych" {
		t.Errorf("form[2]: got %q", m.NumerusForms[2])
	}
	if !m.IsFinished() {
		t.Error("fully populated numerus entry should be finished")
	}
}

func TestParse_MalformedXML(t *testing.T) {
	if _, err := Parse([]byte(`<TS version="2.1"><context><name>X</name>`)); err == nil {
		t.Error("truncated document should fail")
	}
	if _, err := Parse([]byte(`not xml at all`)); err == nil {
		t.Error("non-XML should fail")
	}
	if _, err := Parse([]byte(`<resources></resources>`)); err == nil {
		t.Error("document without <TS> root should fail")
	}
}

func TestParse_DuplicateSourcePairs(t *testing.T) {
	// Real catalogs carry duplicate (context, source) pairs; parsing must
	// preserve them all and Lookup returns the first finished match.
	ts := `<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1" language="es">
<context>
    <name>FilterMate</name>
    <message>
        <source>Apply</source>
        <translation type="unfinished"></translation>
    </message>
    <message>
        <source>Apply</source>
        <translation>Aplicar</translation>
    </message>
</context>
</TS>
`
	f, err := Parse([]byte(ts))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(f.Context("FilterMate").Messages) != 2 {
		t.Fatal("duplicate messages must not be collapsed")
	}
	got, ok := f.Lookup("FilterMate", "Apply")
	if !ok || got != "Aplicar" {
		t.Errorf("lookup skipped unfinished duplicate: got %q ok=%v", got, ok)
	}
}

// ---------------------------------------------------------------------------
// Round-trip
// ---------------------------------------------------------------------------

func TestRoundTrip_PreservesTuples(t *testing.T) {
	f, err := Parse([]byte(sampleTS))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	out := f.Marshal()
	f2, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parse error: %v\noutput:\n%s", err, out)
	}

	type tuple struct {
		ctx, src, trans string
		typ             MessageType
	}
	collect := func(f *File) []tuple {
		var ts []tuple
		for _, c := range f.Contexts {
			for _, m := range c.Messages {
				ts = append(ts, tuple{c.Name, m.Source, m.Translation, m.Type})
			}
		}
		return ts
	}

	if got, want := collect(f2), collect(f); !reflect.DeepEqual(got, want) {
		t.Errorf("round trip changed tuples:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestRoundTrip_EscapesAndNewlines(t *testing.T) {
	f := NewFile("de_DE")
	c := f.EnsureContext("PostgresInfoDialog")
	c.Messages = append(c.Messages, &Message{
		Source:      "Rows < 1000 & views > 2\nsecond line",
		Translation: "Zeilen < 1000 & Sichten > 2\nzweite Zeile",
	})

	f2, err := Parse(f.Marshal())
	if err != nil {
		t.Fatalf("re-parse error: %v", err)
	}
	m := f2.Context("PostgresInfoDialog").Messages[0]
	if m.Source != "Rows < 1000 & views > 2\nsecond line" {
		t.Errorf("source mangled: %q", m.Source)
	}
	if m.Translation != "Zeilen < 1000 & Sichten > 2\nzweite Zeile" {
		t.Errorf("translation mangled: %q", m.Translation)
	}
}

func TestRoundTrip_AttributeEscaping(t *testing.T) {
	f := NewFile(`de"DE & <x>`)
	c := f.EnsureContext("FilterMate")
	c.Messages = append(c.Messages, &Message{
		Source:      "Open project",
		Translation: "Projekt öffnen",
		Locations:   []Location{{Filename: `gui/a"b & <c>.py`, Line: 42}},
	})

	out := f.Marshal()
	f2, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parse error: %v\noutput:\n%s", err, out)
	}
	if f2.Language != f.Language {
		t.Errorf("language mangled: %q", f2.Language)
	}
	m := f2.Context("FilterMate").Messages[0]
	if len(m.Locations) != 1 || m.Locations[0].Filename != `gui/a"b & <c>.py` {
		t.Errorf("location mangled: %+v", m.Locations)
	}
}

func TestMarshal_UnfinishedCarriesTypeAttr(t *testing.T) {
	f := NewFile("no")
	c := f.EnsureContext("dw")
	c.Messages = append(c.Messages, &Message{Source: "Two-Phase Filtering", Type: TypeUnfinished})

	out := string(f.Marshal())
	if !strings.Contains(out, `<translation type="unfinished"></translation>`) {
		t.Errorf("missing unfinished marker:\n%s", out)
	}
	if !strings.Contains(out, `language="no"`) {
		t.Errorf("missing language attribute:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func TestStats(t *testing.T) {
	f, err := Parse([]byte(sampleTS))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	total, finished, unfinished, obsolete := f.Stats()
	if total != 3 || finished != 2 || unfinished != 1 || obsolete != 1 {
		t.Errorf("stats: total=%d finished=%d unfinished=%d obsolete=%d", total, finished, unfinished, obsolete)
	}
}

func TestUnfinishedMessages(t *testing.T) {
	f, err := Parse([]byte(sampleTS))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	refs := f.UnfinishedMessages()
	if len(refs) != 1 {
		t.Fatalf("unfinished: got %d, want 1", len(refs))
	}
	if refs[0].Context != "FilterMate" || refs[0].Message.Source != "Export canceled" {
		t.Errorf("unexpected ref: %+v", refs[0])
	}
}

func TestSetTranslation(t *testing.T) {
	f, err := Parse([]byte(sampleTS))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !f.SetTranslation("FilterMate", "Export canceled", "Export abgebrochen") {
		t.Fatal("SetTranslation returned false")
	}
	got, ok := f.Lookup("FilterMate", "Export canceled")
	if !ok || got != "Export abgebrochen" {
		t.Errorf("lookup after set: got %q ok=%v", got, ok)
	}
	if f.SetTranslation("FilterMate", "No Such Source", "x") {
		t.Error("SetTranslation should fail for unknown source")
	}
}

func TestLookup_ObsoleteAndUnfinishedMiss(t *testing.T) {
	f, err := Parse([]byte(sampleTS))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if _, ok := f.Lookup("OptimizationDialog", "Materialized Views"); ok {
		t.Error("obsolete entries must not resolve on lookup")
	}
	if _, ok := f.Lookup("FilterMate", "Export canceled"); ok {
		t.Error("unfinished entries must not resolve on lookup")
	}
	if _, ok := f.Lookup("NoSuchContext", "Apply"); ok {
		t.Error("unknown context must not resolve")
	}
}

// ---------------------------------------------------------------------------
// Placeholders
// ---------------------------------------------------------------------------

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Database deleted: {filename}", []string{"{filename}"}},
		{"{0} of {1} layers", []string{"{0}", "{1}"}},
		{"Loaded %1 features in %2 ms", []string{"%1", "%2"}},
		{"no markers here", nil},
		{"literal {{braces}} stay put", nil},
		{"100%% done, {count} left", []string{"{count}"}},
		{"mixed %1 and {name}", []string{"%1", "{name}"}},
		{"progress 100%%1 done", nil},
		{"%%%1 applied", []string{"%1"}},
	}
	for _, tt := range tests {
		got := Placeholders(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Placeholders(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
