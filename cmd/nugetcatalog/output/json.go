package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/willibrandon/nugetcatalog/catalog"
)

// CurrentSchemaVersion is the schema version for all JSON outputs
const CurrentSchemaVersion = "1.0.0"

// CatalogOutput is the JSON document written by list and sync --format json.
type CatalogOutput struct {
	SchemaVersion string                  `json:"schemaVersion"`
	Repository    string                  `json:"repository"`
	Mode          string                  `json:"mode,omitempty"`
	Packages      []catalog.PackageRecord `json:"packages"`
	Total         int                     `json:"total"`
	ElapsedMs     int64                   `json:"elapsedMs"`
}

// NewCatalogOutput wraps c for JSON output.
func NewCatalogOutput(repository string, c catalog.Catalog, start time.Time) *CatalogOutput {
	packages := []catalog.PackageRecord(c)
	if packages == nil {
		packages = []catalog.PackageRecord{}
	}
	return &CatalogOutput{
		SchemaVersion: CurrentSchemaVersion,
		Repository:    repository,
		Packages:      packages,
		Total:         len(packages),
		ElapsedMs:     MeasureElapsed(start),
	}
}

// WriteJSON writes a JSON object to the specified writer (typically stdout)
// When --format json is used, ALL JSON goes to stdout and ALL messages go to stderr
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// MeasureElapsed returns elapsed time in milliseconds since start
func MeasureElapsed(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
