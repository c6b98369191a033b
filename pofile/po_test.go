package pofile

import (
	"bytes"
	"strings"
	"testing"
)

const samplePO = `msgid ""
msgstr ""
"Project-Id-Version: FilterMate\n"
"Language: de_DE\n"
"Content-Type: text/plain; charset=UTF-8\n"
"X-Qt-Contexts: true\n"

#: filter_mate.py:512
msgctxt "FilterMate"
msgid "Reset Configuration"
msgstr "Konfiguration Zurücksetzen"

#: filter_mate_dockwidget.py:90
#, fuzzy
msgctxt "FilterMate"
msgid "Exporting"
msgstr "Exportiere"

#: db_utils.py:33
msgctxt "FilterMate"
msgid "Database deleted: {filename}"
msgstr ""

#~ msgctxt "FilterMate"
#~ msgid "Old action"
#~ msgstr "Alte Aktion"
`

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePO))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := f.HeaderField("Language"); got != "de_DE" {
		t.Errorf("Language = %q", got)
	}
	if got := f.HeaderField("x-qt-contexts"); got != "true" {
		t.Errorf("case-insensitive header lookup = %q", got)
	}
	if len(f.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(f.Entries))
	}

	e := f.Lookup("FilterMate", "Reset Configuration")
	if e == nil {
		t.Fatal("Lookup returned nil")
	}
	if e.MsgStr != "Konfiguration Zurücksetzen" {
		t.Errorf("msgstr = %q", e.MsgStr)
	}
	if len(e.References) != 1 || e.References[0] != "filter_mate.py:512" {
		t.Errorf("references = %v", e.References)
	}

	if e := f.Entries[1]; !e.IsFuzzy() {
		t.Error("second entry should be fuzzy")
	}
	if e := f.Entries[3]; !e.Obsolete || e.MsgID != "Old action" {
		t.Errorf("obsolete entry not recognized: %+v", e)
	}
	if f.Lookup("FilterMate", "Old action") != nil {
		t.Error("Lookup must skip obsolete entries")
	}
}

func TestStats(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePO))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	total, translated, fuzzy, untranslated := f.Stats()
	if total != 3 || translated != 1 || fuzzy != 1 || untranslated != 1 {
		t.Errorf("Stats = %d/%d/%d/%d, want 3/1/1/1", total, translated, fuzzy, untranslated)
	}
}

func TestRoundTrip(t *testing.T) {
	f, err := Parse(strings.NewReader(samplePO))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f2, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(f2.Entries) != len(f.Entries) {
		t.Fatalf("entries changed: %d -> %d", len(f.Entries), len(f2.Entries))
	}
	for i := range f.Entries {
		a, b := f.Entries[i], f2.Entries[i]
		if a.MsgCtxt != b.MsgCtxt || a.MsgID != b.MsgID || a.MsgStr != b.MsgStr ||
			a.Obsolete != b.Obsolete || a.IsFuzzy() != b.IsFuzzy() {
			t.Errorf("entry %d changed: %+v -> %+v", i, a, b)
		}
	}
}

func TestMultilineAndEscapes(t *testing.T) {
	f := NewFile()
	f.Entries = append(f.Entries, &Entry{
		MsgCtxt: "FilterMate",
		MsgID:   "Line one\nLine \"two\"\twith tab",
		MsgStr:  "Zeile eins\nZeile zwei",
	})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f2, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if f2.Entries[0].MsgID != "Line one\nLine \"two\"\twith tab" {
		t.Errorf("msgid = %q", f2.Entries[0].MsgID)
	}
	if f2.Entries[0].MsgStr != "Zeile eins\nZeile zwei" {
		t.Errorf("msgstr = %q", f2.Entries[0].MsgStr)
	}
}

func TestPluralForms(t *testing.T) {
	f := NewFile()
	f.Entries = append(f.Entries, &Entry{
		MsgCtxt:      "FilterMate",
		MsgID:        "%n feature(s) selected",
		MsgIDPlural:  "%n feature(s) selected",
		MsgStrPlural: map[int]string{0: "%n Objekt ausgewählt", 1: "%n Objekte ausgewählt"},
	})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f2, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	e := f2.Entries[0]
	if e.MsgIDPlural == "" || len(e.MsgStrPlural) != 2 {
		t.Fatalf("plural forms lost: %+v", e)
	}
	if e.MsgStrPlural[1] != "%n Objekte ausgewählt" {
		t.Errorf("msgstr[1] = %q", e.MsgStrPlural[1])
	}
	if !e.IsTranslated() {
		t.Error("complete plural entry should count as translated")
	}
}

func TestSetHeaderField(t *testing.T) {
	f := NewFile()
	f.Header = MakeHeader("FilterMate", "de_DE", "en")
	if got := f.HeaderField("X-Qt-Contexts"); got != "true" {
		t.Errorf("X-Qt-Contexts = %q", got)
	}
	f.SetHeaderField("Language", "fr")
	if got := f.HeaderField("Language"); got != "fr" {
		t.Errorf("after set, Language = %q", got)
	}
	f.SetHeaderField("X-Generator", "tskit")
	if got := f.HeaderField("X-Generator"); got != "tskit" {
		t.Errorf("new field = %q", got)
	}
}
