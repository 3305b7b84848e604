package editor

import (
	"fmt"
	"os"
)

const requirementsPlaceholder = `# Project requirements

Describe the system you want analyzed: its purpose, users, expected
load, data, and any constraints. Delete this placeholder text.
`

// EditRequirements opens $EDITOR on a scratch markdown file seeded with
// initial and returns the saved content. An empty initial value seeds a
// placeholder document instead.
func EditRequirements(initial string) (string, error) {
	seed := initial
	if seed == "" {
		seed = requirementsPlaceholder
	}

	file, err := os.CreateTemp("", "blueprint-requirements-*.md")
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.WriteString(seed); err != nil {
		file.Close()
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close scratch file: %w", err)
	}

	if err := Edit(path); err != nil {
		return "", err
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read scratch file: %w", err)
	}
	return string(edited), nil
}
