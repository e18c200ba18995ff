package export

import (
	"fmt"
	"strings"

	"github.com/yingtu35/link-verifier/internal/webscraper"
)

type Exporter interface {
	// Export writes the dead links in results to filename plus the exporter's extension
	Export(results *webscraper.Results, filename string) error
}

// New returns the exporter for format ("csv" or "json").
func New(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "", "csv":
		return NewCSVExporter(), nil
	case "json":
		return NewJsonExporter(), nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}
