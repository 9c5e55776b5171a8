package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// writeArtifacts writes rendered artifacts next to the input file (or into
// dir, when given) and prints one line per file.
func writeArtifacts(input, dir string, artifacts map[string][]byte, cached bool) error {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	formats := make([]string, 0, len(artifacts))
	for format := range artifacts {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	for _, format := range formats {
		path := filepath.Join(dir, base+"."+artifactExtension(format))
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s artifact: %w", format, err)
		}
		printFile(path)
	}
	if cached {
		printDetail("Rendered from cache")
	}
	return nil
}

func artifactExtension(format string) string {
	if format == "json" {
		return "layout.json"
	}
	return format
}
