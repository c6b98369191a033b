// Package config — .tskit.yaml configuration file support.
//
// When a .tskit.yaml file exists in the project root, tskit uses it as
// the sole source of truth. No auto-detection is performed — languages,
// catalog layout and source directories come from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TskitFile is the top-level .tskit.yaml structure.
type TskitFile struct {
	// Name is the project name used in headers and logs.
	Name string `yaml:"name,omitempty"`
	// Languages are the target locales, e.g. [de_DE, fr, pt_BR].
	Languages []string `yaml:"languages"`
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// I18nDir is the catalog directory relative to the project root
	// (default "i18n").
	I18nDir string `yaml:"i18n_dir,omitempty"`
	// FilePrefix names catalogs <prefix>_<locale>.ts (default: Name).
	FilePrefix string `yaml:"file_prefix,omitempty"`
	// Sources are directories to scan, relative to the project root
	// (default: ["."]).
	Sources []string `yaml:"sources,omitempty"`
	// FallbackContext receives strings extracted outside any class.
	FallbackContext string `yaml:"fallback_context,omitempty"`
	// Prompt overrides the machine translation system prompt.
	Prompt string `yaml:"prompt,omitempty"`
}

// TskitFileName is the config file name looked up in the project root.
const TskitFileName = ".tskit.yaml"

// LoadTskitFile loads and validates .tskit.yaml from the given
// directory. Returns nil if no .tskit.yaml exists.
func LoadTskitFile(rootDir string) (*TskitFile, error) {
	path := filepath.Join(rootDir, TskitFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var tf TskitFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(tf.Languages) == 0 {
		return nil, fmt.Errorf("%s: languages list is empty", path)
	}
	if tf.SourceLang == "" {
		tf.SourceLang = "en"
	}
	if tf.I18nDir == "" {
		tf.I18nDir = "i18n"
	}
	if len(tf.Sources) == 0 {
		tf.Sources = []string{"."}
	}
	return &tf, nil
}

// Apply overlays the explicit configuration onto a detected project.
func (tf *TskitFile) Apply(p *Project) {
	if tf.Name != "" {
		p.Name = tf.Name
	}
	p.Languages = tf.Languages
	p.SourceLang = tf.SourceLang
	p.I18nDir = filepath.Join(p.Root, tf.I18nDir)
	if tf.FilePrefix != "" {
		p.FilePrefix = tf.FilePrefix
	} else if p.FilePrefix == "" {
		p.FilePrefix = p.Name
	}
	p.SourceDirs = p.SourceDirs[:0]
	for _, src := range tf.Sources {
		p.SourceDirs = append(p.SourceDirs, filepath.Join(p.Root, src))
	}
	if tf.FallbackContext != "" {
		p.FallbackContext = tf.FallbackContext
	}
}

// Load resolves the effective project configuration for a root
// directory: auto-detection first, then .tskit.yaml overrides when the
// file exists.
func Load(rootDir string) (*Project, *TskitFile, error) {
	p := Detect(rootDir)
	tf, err := LoadTskitFile(p.Root)
	if err != nil {
		return nil, nil, err
	}
	if tf != nil {
		tf.Apply(p)
	}
	return p, tf, nil
}
