package core

import (
	"fmt"
	"sort"
	"sync"
)

// Source keys for the three verification inputs.
const (
	SourceRegistrations = "registrations"
	SourceStudents      = "students"
	SourceCourses       = "courses"
)

// SourceFormat is the file format a source is read from.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
)

// SourceDefinition describes one verification input for forms and templates.
type SourceDefinition struct {
	Key     string       `json:"key"`     // Unique identifier and multipart form field name
	Label   string       `json:"label"`   // Display name
	Format  SourceFormat `json:"format"`  // File format
	Order   int          `json:"order"`   // Position in forms
	Columns []string     `json:"columns"` // CSV header names, or worksheet labels for xlsx
}

var (
	sources   = make(map[string]SourceDefinition)
	sourcesMu sync.RWMutex
)

// Register adds a source definition to the registry.
// Panics if a source with the same key is already registered.
func Register(def SourceDefinition) {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()

	if _, exists := sources[def.Key]; exists {
		panic(fmt.Sprintf("source already registered: %s", def.Key))
	}
	sources[def.Key] = def
}

// GetSource returns a source definition by key.
func GetSource(key string) (SourceDefinition, bool) {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()

	def, ok := sources[key]
	return def, ok
}

// Sources returns all registered sources sorted by Order, then Key.
func Sources() []SourceDefinition {
	sourcesMu.RLock()
	defer sourcesMu.RUnlock()

	result := make([]SourceDefinition, 0, len(sources))
	for _, def := range sources {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// ClearSources removes all registered sources.
// Primarily useful for testing.
func ClearSources() {
	sourcesMu.Lock()
	defer sourcesMu.Unlock()
	sources = make(map[string]SourceDefinition)
}
