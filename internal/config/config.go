// Package config holds the importer settings and the tables packaged with
// it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no settings file is given and it exists.
const DefaultFile = "graphipedia.yaml"

// Dump files and working files inside a language directory.
const (
	PagesSuffix      = "pages-articles.xml.bz2"
	LanglinksSuffix  = "langlinks.sql.gz"
	GeotagsSuffix    = "geo_tags.sql.gz"
	NamespacesFile   = "namespaces.tsv"
	DisambigFile     = "disambiguation-pages.txt"
	InfoboxFile      = "infobox-templates.txt"
	IntermediateFile = "intermediate.xml.bz2"
	CrosslinksFile   = "cross-links.csv"
	DatabaseFile     = "graph.db"
	CheckpointFile   = "gp-checkpoint"
)

// Defaults of the tuning settings.
const (
	DefaultBatchSize          = 10000
	DefaultCrosslinkGroupSize = 5
)

// languageCode matches edition codes such as en, simple, zh-yue or be-tarask.
var languageCode = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Settings configures an import.
type Settings struct {
	Root               string   `yaml:"root"`
	Database           string   `yaml:"database,omitempty"`
	Languages          []string `yaml:"languages,omitempty"`
	BatchSize          int      `yaml:"batch_size"`
	CrosslinkGroupSize int      `yaml:"crosslink_group_size"`
	KeepFiles          bool     `yaml:"keep_files"`
	Verbose            bool     `yaml:"verbose"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Root:               ".",
		BatchSize:          DefaultBatchSize,
		CrosslinkGroupSize: DefaultCrosslinkGroupSize,
	}
}

// Load reads settings from path over the defaults. An empty path reads
// DefaultFile when present.
func Load(path string) (Settings, error) {
	s := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("reading settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, s.Validate()
}

// Validate checks the settings for values the importer cannot use.
func (s Settings) Validate() error {
	if s.Root == "" {
		return errors.New("settings: root must not be empty")
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("settings: batch_size must be positive, got %d", s.BatchSize)
	}
	if s.CrosslinkGroupSize <= 0 {
		return fmt.Errorf("settings: crosslink_group_size must be positive, got %d", s.CrosslinkGroupSize)
	}
	if err := ValidateLanguages(s.Languages); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

// ValidateLanguages rejects codes that are not plain edition codes, so a
// language directory can never leave the import root.
func ValidateLanguages(langs []string) error {
	for _, lang := range langs {
		if !languageCode.MatchString(lang) {
			return fmt.Errorf("invalid language code %q", lang)
		}
	}
	return nil
}

// EditionDir is the directory holding the dumps of lang.
func (s Settings) EditionDir(lang string) string {
	return filepath.Join(s.Root, lang)
}

// EditionFile is a file inside the directory of lang.
func (s Settings) EditionFile(lang, name string) string {
	return filepath.Join(s.EditionDir(lang), name)
}

// DatabasePath is where the graph is stored.
func (s Settings) DatabasePath() string {
	if s.Database != "" {
		return s.Database
	}
	return filepath.Join(s.Root, DatabaseFile)
}

// CheckpointPath is where finished stages are recorded.
func (s Settings) CheckpointPath() string {
	return filepath.Join(s.Root, CheckpointFile)
}

// FindDump returns the single file of lang's directory ending in suffix,
// e.g. enwiki-20240601-pages-articles.xml.bz2.
func (s Settings) FindDump(lang, suffix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.EditionDir(lang), "*"+suffix))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no *%s dump in %s", suffix, s.EditionDir(lang))
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d *%s dumps in %s, keep one", len(matches), suffix, s.EditionDir(lang))
	}
}

// ParseLanguages splits a comma-separated language list, dropping blanks.
func ParseLanguages(arg string) []string {
	var langs []string
	seen := make(map[string]bool)
	for _, l := range strings.Split(arg, ",") {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		langs = append(langs, l)
	}
	return langs
}
