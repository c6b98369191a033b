package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("catalog", "catalogs", 1); got != "catalog" {
		t.Fatalf("N singular fallback = %q, want %q", got, "catalog")
	}

	if got := N("catalog", "catalogs", 2); got != "catalogs" {
		t.Fatalf("N plural fallback = %q, want %q", got, "catalogs")
	}

	if got := T("Found %d catalogs", 3); got != "Found 3 catalogs" {
		t.Fatalf("T formatted fallback = %q", got)
	}

	if got := N("Found %d catalog", "Found %d catalogs", 3, 3); got != "Found 3 catalogs" {
		t.Fatalf("N formatted fallback = %q", got)
	}
}

func TestEmbeddedFrenchLocale(t *testing.T) {
	Init("fr")
	t.Cleanup(func() { po = nil })

	if got := T("Translation complete"); got != "Traduction terminée" {
		t.Fatalf("T = %q", got)
	}

	if got := N("Found %d catalog", "Found %d catalogs", 3); got != "%d catalogues trouvés" {
		t.Fatalf("N = %q", got)
	}

	if got := N("Found %d catalog", "Found %d catalogs", 3, 3); got != "3 catalogues trouvés" {
		t.Fatalf("N formatted = %q", got)
	}
}
