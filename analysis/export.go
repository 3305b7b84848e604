package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportFilename returns the export filename for a kind, derived from the
// project name and the kind's declared output format.
func ExportFilename(projectName string, kind Kind) string {
	return fmt.Sprintf("%s_%s%s", sanitizeProjectName(projectName), kind.exportSuffix(), kind.Extension())
}

// Export writes a completed slot's result verbatim into dir and returns the
// written path. Exporting a slot that has not completed fails with
// ErrNotCompleted.
func Export(dir, projectName string, slot Slot) (string, error) {
	if slot.Status != StatusCompleted {
		return "", fmt.Errorf("%w: %s is %s", ErrNotCompleted, slot.Kind, slot.Status)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(projectName, slot.Kind))
	if err := os.WriteFile(path, []byte(slot.Result), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// ExportAll writes every completed slot into dir and returns the written
// paths. Slots that have not completed are skipped.
func ExportAll(dir, projectName string, slots []Slot) ([]string, error) {
	var paths []string
	for _, slot := range slots {
		if slot.Status != StatusCompleted {
			continue
		}
		path, err := Export(dir, projectName, slot)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportDirName returns the per-project directory name used by export-all.
func ExportDirName(projectName string) string {
	return sanitizeProjectName(projectName)
}

// sanitizeProjectName makes a project name safe for filenames.
func sanitizeProjectName(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '/' || r == '\\' || r == ':'
	})
	if len(fields) == 0 {
		return "project"
	}
	return strings.Join(fields, "_")
}
