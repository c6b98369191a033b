package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func setupStore(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
}

func TestSetAndGetAPIKey(t *testing.T) {
	setupStore(t)

	if err := SetAPIKey("groq", "gsk_test123456"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	if got := GetAPIKey("groq"); got != "gsk_test123456" {
		t.Errorf("GetAPIKey = %q", got)
	}
	if got := GetAPIKey("google"); got != "" {
		t.Errorf("missing provider key = %q", got)
	}
}

func TestOAuthRoundTrip(t *testing.T) {
	setupStore(t)

	if err := SetOAuth("copilot", "acc_1", "ref_1", 1700000000); err != nil {
		t.Fatalf("SetOAuth: %v", err)
	}
	info := GetOAuth("copilot")
	if info == nil || info.Access != "acc_1" || info.Refresh != "ref_1" {
		t.Fatalf("GetOAuth = %+v", info)
	}

	// Refreshing the access token without a new refresh token keeps
	// the stored one.
	if err := SetOAuth("copilot", "acc_2", "", 1700001000); err != nil {
		t.Fatalf("SetOAuth refresh: %v", err)
	}
	info = GetOAuth("copilot")
	if info.Access != "acc_2" || info.Refresh != "ref_1" {
		t.Errorf("after refresh: %+v", info)
	}
}

func TestOAuthAndAPIDistinct(t *testing.T) {
	setupStore(t)

	if err := SetAPIKey("google", "AIza_test"); err != nil {
		t.Fatal(err)
	}
	if GetOAuth("google") != nil {
		t.Error("API entry must not surface as OAuth")
	}
	if err := SetOAuth("copilot", "acc", "ref", 0); err != nil {
		t.Fatal(err)
	}
	if GetAPIKey("copilot") != "" {
		t.Error("OAuth entry must not surface as API key")
	}
}

func TestBaseURL(t *testing.T) {
	setupStore(t)

	if err := SetAPIKeyWithBaseURL("custom-openai", "sk_x", "http://localhost:8080/v1"); err != nil {
		t.Fatal(err)
	}
	if got := GetBaseURL("custom-openai"); got != "http://localhost:8080/v1" {
		t.Errorf("GetBaseURL = %q", got)
	}
}

func TestRemove(t *testing.T) {
	setupStore(t)

	if err := SetAPIKey("groq", "gsk_x"); err != nil {
		t.Fatal(err)
	}
	if err := Remove("groq"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if GetAPIKey("groq") != "" {
		t.Error("key survived Remove")
	}
	// Removing a missing provider is not an error.
	if err := Remove("nonexistent"); err != nil {
		t.Errorf("Remove missing: %v", err)
	}
}

func TestFilePermissions(t *testing.T) {
	setupStore(t)

	if err := SetAPIKey("groq", "gsk_x"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(FilePath())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("auth.json mode = %o, want 600", perm)
	}
	if filepath.Base(FilePath()) != "auth.json" {
		t.Errorf("FilePath = %q", FilePath())
	}
}

func TestLoadCorrupt(t *testing.T) {
	setupStore(t)

	dir, err := dataDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if store := Load(); len(store) != 0 {
		t.Errorf("corrupt store should load empty, got %v", store)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("short"); got != "****" {
		t.Errorf("MaskKey short = %q", got)
	}
	if got := MaskKey("gsk_abcdefghij"); got != "gsk_...ghij" {
		t.Errorf("MaskKey = %q", got)
	}
}
