// Package settings stores tskit user settings, chiefly authentication
// credentials for machine translation providers.
//
// Everything lives in the XDG data directory:
//
//	$XDG_DATA_HOME/tskit/  (default: ~/.local/share/tskit/)
//
// auth.json is a JSON object keyed by provider ID; each value is a
// discriminated union on the "type" field:
//
//   - "oauth" — OAuth tokens (copilot)
//   - "api"   — API keys (google, groq, custom-openai)
//
// File permissions are 0600.
//
// Lookup order for API keys:
//  1. --api-key flag
//  2. TSKIT_API_KEY environment variable
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dataDirName = "tskit"
	fileName    = "auth.json"
)

// Info is the per-provider record stored in auth.json.
type Info struct {
	// Type discriminator: "oauth" or "api".
	Type string `json:"type"`

	// OAuth fields (type == "oauth").
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
	Expires int64  `json:"expires,omitempty"` // Unix timestamp (0 = no expiry)

	// API key fields (type == "api").
	Key string `json:"key,omitempty"`

	// Custom endpoint URL (custom-openai).
	BaseURL string `json:"baseUrl,omitempty"`
}

// IsOAuth returns true for OAuth entries.
func (i *Info) IsOAuth() bool {
	return i.Type == "oauth"
}

// IsAPI returns true for API key entries.
func (i *Info) IsAPI() bool {
	return i.Type == "api"
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// dataDir returns the XDG data directory for tskit, respecting
// $XDG_DATA_HOME.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// Load reads the credential store from disk. Returns an empty store if
// the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return make(Store)
	}
	if store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// Get returns the auth entry for a provider, or nil.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// Set stores an auth entry for a provider (upsert).
func Set(providerID string, info *Info) error {
	store := Load()
	store[providerID] = info
	return Save(store)
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// SetOAuth stores OAuth credentials for a provider, keeping the old
// refresh token when the new one is empty.
func SetOAuth(providerID, access, refresh string, expires int64) error {
	store := Load()
	info := &Info{
		Type:    "oauth",
		Access:  access,
		Refresh: refresh,
		Expires: expires,
	}
	if existing := store[providerID]; existing != nil && existing.IsOAuth() {
		if info.Refresh == "" {
			info.Refresh = existing.Refresh
		}
	}
	store[providerID] = info
	return Save(store)
}

// GetOAuth returns OAuth credentials for a provider, or nil.
func GetOAuth(providerID string) *Info {
	info := Get(providerID)
	if info == nil || !info.IsOAuth() {
		return nil
	}
	return info
}

// SetAPIKey stores an API key for a provider.
func SetAPIKey(providerID, key string) error {
	return Set(providerID, &Info{Type: "api", Key: key})
}

// SetAPIKeyWithBaseURL stores an API key and endpoint for custom-openai.
func SetAPIKeyWithBaseURL(providerID, key, baseURL string) error {
	return Set(providerID, &Info{Type: "api", Key: key, BaseURL: baseURL})
}

// GetAPIKey retrieves the stored API key for a provider, or "".
func GetAPIKey(providerID string) string {
	info := Get(providerID)
	if info == nil || !info.IsAPI() {
		return ""
	}
	return info.Key
}

// GetBaseURL retrieves the stored base URL for a provider, or "".
func GetBaseURL(providerID string) string {
	info := Get(providerID)
	if info == nil {
		return ""
	}
	return info.BaseURL
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}
