package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joeycumines/clica/internal/storage"
)

// SetKeyInFile sets a global option in the file at path, keeping comments
// and layout. An existing global line is replaced in place; otherwise the
// line goes before the first section header, or at the end. Keys inside
// [section] blocks are never touched.
func SetKeyInFile(path, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}

	var lines []string
	if len(data) > 0 {
		lines = strings.Split(string(data), "\n")
	}

	newLine := key
	if value != "" {
		newLine = key + " " + value
	}

	found := false
	inGlobal := true
	insertIndex := len(lines)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			if inGlobal {
				insertIndex = i
			}
			inGlobal = false
			continue
		}
		if !inGlobal || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if name, _, _ := strings.Cut(trimmed, " "); name == key {
			lines[i] = newLine
			found = true
			break
		}
	}

	switch {
	case found:
	case insertIndex < len(lines):
		lines = slices.Insert(lines, insertIndex, newLine)
	case len(lines) > 0 && lines[len(lines)-1] == "":
		// Keep the trailing newline last.
		lines = slices.Insert(lines, len(lines)-1, newLine)
	default:
		lines = append(lines, newLine, "")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return storage.AtomicWriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}
