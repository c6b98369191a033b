package catalog

import (
	"os"
	"path/filepath"
	"testing"

	ts "github.com/linguakit/tskit/tsfile"
)

func writeCatalog(t *testing.T, dir, name, language string, fill func(*ts.File)) {
	t.Helper()
	f := ts.NewFile(language)
	if fill != nil {
		fill(f)
	}
	if err := os.WriteFile(filepath.Join(dir, name), f.Marshal(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func fillGerman(f *ts.File) {
	ctx := f.EnsureContext("FilterMate")
	ctx.Messages = append(ctx.Messages,
		&ts.Message{Source: "Reset Configuration", Translation: "Konfiguration Zurücksetzen"},
		&ts.Message{Source: "Exporting", Translation: "Exportiere", Type: ts.TypeUnfinished},
	)
}

func TestLoadAndLocales(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "filtermate_de.ts", "de_DE", fillGerman)
	writeCatalog(t, dir, "filtermate_fr.ts", "fr", nil)
	writeCatalog(t, dir, "filtermate_pt_BR.ts", "pt_BR", nil)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := set.Locales()
	want := []string{"de_DE", "fr", "pt_BR"}
	if len(got) != len(want) {
		t.Fatalf("locales = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("locale[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "filtermate_de.ts", "de_DE", fillGerman)
	if err := os.WriteFile(filepath.Join(dir, "filtermate_it.ts"), []byte("<TS><context>"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(set.Locales()) != 1 {
		t.Fatalf("locales = %v, want only de_DE", set.Locales())
	}
}

func TestPickExactAndFallback(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "filtermate_de.ts", "de_DE", fillGerman)
	writeCatalog(t, dir, "filtermate_fr.ts", "fr", nil)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if f := set.Pick("de_DE"); f == nil || f.Language != "de_DE" {
		t.Error("exact pick of de_DE failed")
	}
	// Plain "de" and Austrian German both resolve to the de_DE catalog.
	if f := set.Pick("de"); f == nil || f.Language != "de_DE" {
		t.Error("base-language pick of de failed")
	}
	if f := set.Pick("de_AT"); f == nil || f.Language != "de_DE" {
		t.Error("sibling-region pick of de_AT failed")
	}
	if f := set.Pick("fr_CA"); f == nil || f.Language != "fr" {
		t.Error("region collapse to fr failed")
	}
}

func TestTranslatorFallback(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "filtermate_de.ts", "de_DE", fillGerman)

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tr := set.Translator("de")
	if got := tr.Tr("FilterMate", "Reset Configuration"); got != "Konfiguration Zurücksetzen" {
		t.Errorf("Tr finished = %q", got)
	}
	// Unfinished and missing entries fall back to the source string.
	if got := tr.Tr("FilterMate", "Exporting"); got != "Exporting" {
		t.Errorf("Tr unfinished = %q", got)
	}
	if got := tr.Tr("FilterMate", "No such string"); got != "No such string" {
		t.Errorf("Tr missing = %q", got)
	}

	// No catalog at all: every lookup echoes the source.
	none := set.Translator("zz")
	if got := none.Tr("FilterMate", "Reset Configuration"); got != "Reset Configuration" {
		t.Errorf("Tr without catalog = %q", got)
	}
}

func TestLocaleFromFilename(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"FilterMate_am.ts", "am"},
		{"filtermate_de.ts", "de"},
		{"filtermate_pt_BR.ts", "pt_BR"},
		{"filter_mate_de.ts", "de"},
		{"plain.ts", ""},
		{"filtermate_notalocale.ts", ""},
	}
	for _, tc := range cases {
		if got := LocaleFromFilename(tc.name); got != tc.want {
			t.Errorf("LocaleFromFilename(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
