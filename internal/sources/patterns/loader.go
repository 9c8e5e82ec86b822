// Package patterns loads viewer fingerprint definitions from a YAML file.
// The built-in patterns cover PDF.js and the browser plugin viewers; a
// patterns file extends them for self-hosted or exotic document viewers.
package patterns

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pagemark/pagemark/internal/page/cdp"
)

// FileConfig is the schema of the patterns file.
type FileConfig struct {
	Viewers []ViewerEntry `yaml:"viewers"`
}

// ViewerEntry describes one viewer family.
type ViewerEntry struct {
	Name               string   `yaml:"name"`
	Globals            []string `yaml:"globals,omitempty"`
	ContainerSelectors []string `yaml:"container_selectors,omitempty"`
	EmbedTypes         []string `yaml:"embed_types,omitempty"`
}

// Loader reads and parses a viewer patterns file.
type Loader struct {
	filePath string
}

// NewLoader creates a loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the patterns file.
func (l *Loader) Load() (FileConfig, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read patterns file: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse patterns yaml: %w", err)
	}

	return config, nil
}

// Merge folds the file entries into the built-in patterns. Entries are
// deduplicated case-insensitively for embed types and exactly for selectors
// and globals; built-ins always stay.
func Merge(config FileConfig) cdp.Patterns {
	merged := cdp.DefaultPatterns()

	for _, viewer := range config.Viewers {
		merged.ViewerGlobals = appendUnique(merged.ViewerGlobals, viewer.Globals, false)
		merged.ContainerSelectors = appendUnique(merged.ContainerSelectors, viewer.ContainerSelectors, false)
		merged.EmbedTypes = appendUnique(merged.EmbedTypes, viewer.EmbedTypes, true)
	}

	return merged
}

// LoadPatterns is the one-call form: an empty path yields the built-ins.
func LoadPatterns(filePath string) (cdp.Patterns, error) {
	if filePath == "" {
		return cdp.DefaultPatterns(), nil
	}
	loader := NewLoader(filePath)
	config, err := loader.Load()
	if err != nil {
		return cdp.Patterns{}, err
	}
	return Merge(config), nil
}

func appendUnique(base, extra []string, foldCase bool) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	norm := func(s string) string {
		if foldCase {
			return strings.ToLower(s)
		}
		return s
	}
	for _, v := range base {
		seen[norm(v)] = true
	}
	for _, v := range extra {
		v = strings.TrimSpace(v)
		if v == "" || seen[norm(v)] {
			continue
		}
		seen[norm(v)] = true
		base = append(base, v)
	}
	return base
}
