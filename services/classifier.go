package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultServiceCategory is returned when no keyword matches
const DefaultServiceCategory = "general_maintenance"

// ServiceKeywordEntry maps a service category to the keywords that select it.
// Entries are ordered; classification is first match wins.
type ServiceKeywordEntry struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// ServiceClassifier assigns a service category to free problem text using
// a fixed keyword table. It is an acknowledged heuristic, not a model.
type ServiceClassifier struct {
	entries []ServiceKeywordEntry
}

var classifierInstance *ServiceClassifier

// defaultServiceKeywords is the built-in table used when no YAML override
// is configured.
var defaultServiceKeywords = []ServiceKeywordEntry{
	{Category: "plumbing", Keywords: []string{"leak", "tap", "faucet", "pipe", "drain", "toilet", "sink", "water heater", "shower"}},
	{Category: "electrical", Keywords: []string{"outlet", "wiring", "breaker", "light", "switch", "socket", "fuse", "electrical"}},
	{Category: "carpentry", Keywords: []string{"door", "cabinet", "shelf", "deck", "frame", "wood", "floorboard", "trim"}},
	{Category: "painting", Keywords: []string{"paint", "stain", "wall", "ceiling", "primer", "wallpaper"}},
	{Category: "general_maintenance", Keywords: []string{"crack", "hole", "gutter", "tile", "caulk", "seal", "repair"}},
}

// InitServiceClassifier builds the classifier, loading keyword overrides
// from the given YAML file when path is non-empty.
func InitServiceClassifier(path string) (*ServiceClassifier, error) {
	entries := defaultServiceKeywords
	if path != "" {
		loaded, err := loadServiceKeywords(path)
		if err != nil {
			return nil, err
		}
		entries = loaded
	}
	classifierInstance = &ServiceClassifier{entries: entries}
	return classifierInstance, nil
}

// GetServiceClassifier returns the initialized classifier instance
func GetServiceClassifier() *ServiceClassifier {
	return classifierInstance
}

// SetServiceClassifier sets the classifier instance (primarily for testing)
func SetServiceClassifier(c *ServiceClassifier) {
	classifierInstance = c
}

func loadServiceKeywords(path string) ([]ServiceKeywordEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service keyword file: %w", err)
	}

	var entries []ServiceKeywordEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse service keyword file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("service keyword file %s is empty", path)
	}
	return entries, nil
}

// Classify returns the service category for the given problem text.
// The first entry with a matching keyword wins; unmatched text falls back
// to general_maintenance.
func (c *ServiceClassifier) Classify(text string) string {
	lowered := strings.ToLower(text)
	for _, entry := range c.entries {
		for _, kw := range entry.Keywords {
			if strings.Contains(lowered, kw) {
				return entry.Category
			}
		}
	}
	return DefaultServiceCategory
}
