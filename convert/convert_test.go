package convert

import (
	"testing"

	ts "github.com/linguakit/tskit/tsfile"
)

func buildTS() *ts.File {
	f := ts.NewFile("de_DE")
	f.SourceLanguage = "en"
	ctx := f.EnsureContext("FilterMate")
	ctx.Messages = append(ctx.Messages,
		&ts.Message{
			Locations:   []ts.Location{{Filename: "filter_mate.py", Line: 512}},
			Source:      "Reset Configuration",
			Translation: "Konfiguration Zurücksetzen",
		},
		&ts.Message{
			Locations:   []ts.Location{{Filename: "filter_mate_dockwidget.py", Line: 90}},
			Source:      "Exporting",
			Translation: "Exportiere",
			Type:        ts.TypeUnfinished,
		},
		&ts.Message{
			Source: "Missing one",
			Type:   ts.TypeUnfinished,
		},
		&ts.Message{
			Source:      "Old action",
			Translation: "Alte Aktion",
			Type:        ts.TypeObsolete,
		},
		&ts.Message{
			Locations:    []ts.Location{{Filename: "filter_mate.py", Line: 700}},
			Source:       "%n feature(s) selected",
			Numerus:      true,
			NumerusForms: []string{"%n Objekt ausgewählt", "%n Objekte ausgewählt"},
		},
	)
	return f
}

func TestTSToPO(t *testing.T) {
	po := TSToPO(buildTS(), "FilterMate")

	if got := po.HeaderField("Language"); got != "de_DE" {
		t.Errorf("Language = %q", got)
	}
	if got := po.HeaderField("X-Source-Language"); got != "en" {
		t.Errorf("X-Source-Language = %q", got)
	}
	if len(po.Entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(po.Entries))
	}

	finished := po.Lookup("FilterMate", "Reset Configuration")
	if finished == nil || finished.MsgStr != "Konfiguration Zurücksetzen" || finished.IsFuzzy() {
		t.Errorf("finished entry wrong: %+v", finished)
	}
	if got := finished.References; len(got) != 1 || got[0] != "filter_mate.py:512" {
		t.Errorf("references = %v", got)
	}

	// Unfinished with draft text maps to fuzzy; unfinished without text
	// stays a plain untranslated entry.
	if e := po.Lookup("FilterMate", "Exporting"); e == nil || !e.IsFuzzy() {
		t.Error("unfinished draft should be fuzzy")
	}
	if e := po.Lookup("FilterMate", "Missing one"); e == nil || e.IsFuzzy() || e.MsgStr != "" {
		t.Error("empty unfinished should be untranslated, not fuzzy")
	}

	if e := po.Entries[3]; !e.Obsolete {
		t.Error("obsolete message should map to #~ entry")
	}

	plural := po.Lookup("FilterMate", "%n feature(s) selected")
	if plural == nil || plural.MsgIDPlural == "" {
		t.Fatal("numerus entry missing plural")
	}
	if plural.MsgStrPlural[1] != "%n Objekte ausgewählt" {
		t.Errorf("msgstr[1] = %q", plural.MsgStrPlural[1])
	}
}

func TestRoundTrip(t *testing.T) {
	orig := buildTS()
	back := POToTS(TSToPO(orig, "FilterMate"), "", "FilterMate")

	if back.Language != "de_DE" || back.SourceLanguage != "en" {
		t.Errorf("locale attrs = %q/%q", back.Language, back.SourceLanguage)
	}
	origCtx := orig.Context("FilterMate")
	backCtx := back.Context("FilterMate")
	if backCtx == nil || len(backCtx.Messages) != len(origCtx.Messages) {
		t.Fatalf("message count changed")
	}
	for i, want := range origCtx.Messages {
		got := backCtx.Messages[i]
		if got.Source != want.Source || got.Translation != want.Translation || got.Type != want.Type {
			t.Errorf("message %d: got %q/%q/%q, want %q/%q/%q",
				i, got.Source, got.Translation, got.Type, want.Source, want.Translation, want.Type)
		}
		if len(got.Locations) != len(want.Locations) {
			t.Errorf("message %d: locations %v, want %v", i, got.Locations, want.Locations)
		}
		if got.Numerus != want.Numerus || len(got.NumerusForms) != len(want.NumerusForms) {
			t.Errorf("message %d: numerus forms changed", i)
		}
	}
}

func TestPOToTSFallbackContext(t *testing.T) {
	po := TSToPO(buildTS(), "FilterMate")
	po.Entries[0].MsgCtxt = ""

	back := POToTS(po, "de_DE", "FilterMate")
	if got, ok := back.Lookup("FilterMate", "Reset Configuration"); !ok || got != "Konfiguration Zurücksetzen" {
		t.Errorf("fallback context lookup = %q, %v", got, ok)
	}
}
