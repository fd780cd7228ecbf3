package engine

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Remediation keys used by the analyzers when composing detail blocks.
const (
	remedyCycles       = "cycles"
	remedyDepth        = "depth"
	remedyComponents   = "components"
	remedyOverrides    = "overrides"
	remedyOrphaned     = "orphaned_picklists"
	remedyEmpty        = "empty_picklists"
	remedySingleValue  = "single_value_picklists"
	remedySharing      = "sharing"
	remedyBundleHealth = "bundle_health"
)

// Catalog maps finding kinds to remediation guidance lines. Operators can
// override or extend the built-in guidance with a YAML file.
type Catalog struct {
	entries map[string][]string
}

type catalogFile struct {
	Remediations map[string][]string `yaml:"remediations"`
}

func defaultEntries() map[string][]string {
	return map[string][]string{
		remedyCycles: {
			"CRITICAL: Remove circular dependencies immediately to prevent infinite loops",
			"Review bundle relationships and restructure to avoid cycles",
		},
		remedyDepth: {
			"Review bundle hierarchy to reduce nesting levels",
			"Consider flattening deeply nested structures",
		},
		remedyComponents: {
			"Split large bundles into smaller sub-bundles",
			"Review necessity of all components",
		},
		remedyOverrides: {
			"Review the bundle structure and attribute usage",
			"Consider reducing the number of attributes or splitting large bundles",
		},
		remedyOrphaned: {
			"Remove orphaned picklists or create attribute definitions that reference them",
		},
		remedyEmpty: {
			"Add picklist values to empty picklists, or switch the attribute to a Text data type",
		},
		remedySingleValue: {
			"Consider changing the attribute data type from Picklist to Text for single-value picklists",
		},
		remedySharing: {
			"Set restrictive objects to Public Read Only or Public Read/Write",
			"Navigate to: Setup > Security > Sharing Settings > Organization-Wide Defaults",
		},
		remedyBundleHealth: {
			"Monitor bundle performance during peak usage",
		},
	}
}

// NewCatalog returns a catalog with only the built-in guidance.
func NewCatalog() *Catalog {
	return &Catalog{entries: defaultEntries()}
}

// LoadCatalog builds the remediation catalog, merging an optional YAML
// override file over the built-in guidance. A missing file is not an error.
func LoadCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	catalog := &Catalog{entries: defaultEntries()}
	if path == "" {
		return catalog, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return catalog, nil
		}
		return nil, err
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	for key, lines := range file.Remediations {
		if len(lines) > 0 {
			catalog.entries[key] = lines
		}
	}
	if logger != nil {
		logger.Debug("remediation catalog loaded", slog.String("path", path), slog.Int("overrides", len(file.Remediations)))
	}
	return catalog, nil
}

// Lines returns the guidance for a finding kind. A nil catalog falls back to
// the built-in guidance so analyzers never need a nil check.
func (c *Catalog) Lines(kind string) []string {
	if c == nil || c.entries == nil {
		return defaultEntries()[kind]
	}
	return c.entries[kind]
}
