package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ThemeSpec is the manifest entry for one dataset theme.
type ThemeSpec struct {
	// Table is the fact table this theme loads into.
	Table string `yaml:"table"`
	// Format optionally overrides the built-in file format for the theme.
	Format *FormatSpec `yaml:"format,omitempty"`
}

// FormatSpec is the YAML spelling of a file format.
type FormatSpec struct {
	Delimiter     string   `yaml:"delimiter"` // comma, tab or pipe
	HeaderLines   int      `yaml:"header_lines"`
	NullSentinels []string `yaml:"null_sentinels"`
}

// Manifest maps dataset themes to their tables and file formats. Loaded
// from datasets.yaml at startup.
type Manifest struct {
	// Root is the directory load paths are resolved against.
	Root   string               `yaml:"root"`
	Themes map[string]ThemeSpec `yaml:"themes"`
}

// LoadManifest reads and validates the dataset manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse dataset manifest: %w", err)
	}

	for theme, spec := range m.Themes {
		if spec.Table == "" {
			return nil, fmt.Errorf("dataset manifest: theme %q has no table", theme)
		}
		if _, known := Formats[theme]; !known {
			return nil, fmt.Errorf("dataset manifest: unknown theme %q", theme)
		}
		if spec.Format != nil {
			if _, err := spec.Format.ToFormat(); err != nil {
				return nil, fmt.Errorf("dataset manifest: theme %q: %w", theme, err)
			}
		}
	}

	return &m, nil
}

// FormatFor resolves a theme's file format: the manifest override when
// present, the built-in default otherwise.
func (m *Manifest) FormatFor(theme string) (Format, error) {
	spec, ok := m.Themes[theme]
	if !ok {
		return Format{}, fmt.Errorf("theme %q not in manifest", theme)
	}
	if spec.Format != nil {
		return spec.Format.ToFormat()
	}
	return Formats[theme], nil
}

// ToFormat converts the YAML spelling into a Format.
func (s *FormatSpec) ToFormat() (Format, error) {
	var delimiter rune
	switch s.Delimiter {
	case "comma", "":
		delimiter = ','
	case "tab":
		delimiter = '\t'
	case "pipe":
		delimiter = '|'
	default:
		return Format{}, fmt.Errorf("unsupported delimiter %q", s.Delimiter)
	}

	nulls := s.NullSentinels
	if nulls == nil {
		nulls = defaultNulls
	}

	return Format{
		Delimiter:     delimiter,
		HeaderLines:   s.HeaderLines,
		NullSentinels: nulls,
	}, nil
}
