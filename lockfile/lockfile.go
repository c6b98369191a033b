// Package lockfile implements tskit.lock — a lock file that tracks MD5
// checksums of source strings per catalog. This enables incremental
// translation: only new or changed strings are sent to the provider.
//
// The lock file is stored in the project root as tskit.lock.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "tskit.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the tskit.lock file structure. The first map key
// is the catalog (relative .ts path), the second is the message key.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// Load reads a lock file from the given directory. Returns an empty
// lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path
	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}
	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// CatalogKey builds the per-catalog key, e.g. "i18n/FilterMate_de.ts".
func CatalogKey(path string) string {
	return filepath.ToSlash(path)
}

// MessageKey builds a lock file key from a TS context and source.
func MessageKey(context, source string) string {
	return context + "|" + source
}

// IsChanged reports whether a source string is new or has changed since
// the last recorded translation.
func (lf *LockFile) IsChanged(catalog, key, source string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	keys, ok := lf.Checksums[catalog]
	if !ok {
		return true
	}
	oldHash, ok := keys[key]
	if !ok {
		return true
	}
	return oldHash != Hash(source)
}

// Update records the checksum of a source string after translation.
func (lf *LockFile) Update(catalog, key, source string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[catalog] == nil {
		lf.Checksums[catalog] = make(map[string]string)
	}
	lf.Checksums[catalog][key] = Hash(source)
}

// FilterChanged returns only the entries whose source content has
// changed since the last translation. Input and output map key to
// source content.
func (lf *LockFile) FilterChanged(catalog string, entries map[string]string) map[string]string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[catalog]
	changed := make(map[string]string)
	for key, content := range entries {
		if existing == nil || existing[key] != Hash(content) {
			changed[key] = content
		}
	}
	return changed
}

// Clean removes entries no longer present in the current key set, so
// retired messages don't accumulate.
func (lf *LockFile) Clean(catalog string, currentKeys []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[catalog]
	if existing == nil {
		return
	}
	valid := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		valid[k] = true
	}
	for k := range existing {
		if !valid[k] {
			delete(existing, k)
		}
	}
}

// Stats returns the number of catalogs and total keys.
func (lf *LockFile) Stats() (catalogs, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	catalogs = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Catalogs returns the sorted list of catalog keys.
func (lf *LockFile) Catalogs() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	out := make([]string, 0, len(lf.Checksums))
	for c := range lf.Checksums {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	catalogs, keys := lf.Stats()
	if catalogs == 0 {
		return "empty"
	}
	var parts []string
	for _, c := range lf.Catalogs() {
		parts = append(parts, fmt.Sprintf("%s: %d keys", c, len(lf.Checksums[c])))
	}
	return fmt.Sprintf("%d catalogs, %d keys (%s)", catalogs, keys, strings.Join(parts, ", "))
}
