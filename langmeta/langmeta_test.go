package langmeta

import "testing"

func TestResolve(t *testing.T) {
	cases := []struct {
		lang string
		name string
	}{
		{"de", "Deutsch"},
		{"de_DE", "Deutsch"},
		{"pt_BR", "Português (Brasil)"},
		{"pt-br", "Português (Brasil)"},
		{"zh-TW", "繁體中文"},
		{"fr_CA", "Français"},
		{"xx", "xx"},
	}
	for _, tc := range cases {
		if got := Resolve(tc.lang); got.Name != tc.name {
			t.Errorf("Resolve(%q).Name = %q, want %q", tc.lang, got.Name, tc.name)
		}
	}
}

func TestResolveFlags(t *testing.T) {
	if got := Resolve("de_DE").Flag; got != "🇩🇪" {
		t.Errorf("de_DE flag = %q", got)
	}
	if got := Resolve("xx").Flag; got != "" {
		t.Errorf("unknown flag = %q", got)
	}
}

func TestEnglishName(t *testing.T) {
	cases := []struct {
		lang string
		want string
	}{
		{"de", "German"},
		{"de_DE", "German (Germany)"},
		{"pt_BR", "Brazilian Portuguese"},
		{"ja", "Japanese"},
	}
	for _, tc := range cases {
		if got := EnglishName(tc.lang); got != tc.want {
			t.Errorf("EnglishName(%q) = %q, want %q", tc.lang, got, tc.want)
		}
	}
}
