package main

import (
	"fmt"
	"io"
	"os"

	"github.com/amonks/blueprint/internal/editor"
	internalstrings "github.com/amonks/blueprint/internal/strings"
	"github.com/spf13/cobra"
)

// requirementsFlags holds the shared requirements-input flags used by
// commands that create a project.
type requirementsFlags struct {
	requirements string
	file         string
	edit         bool
	noEdit       bool
}

func (flags *requirementsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.requirements, "requirements", "r", "", "Requirements text (use '-' to read from stdin)")
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Read requirements from a file")
	cmd.Flags().BoolVarP(&flags.edit, "edit", "e", false, "Open $EDITOR (default if interactive and no input flags)")
	cmd.Flags().BoolVar(&flags.noEdit, "no-edit", false, "Do not open $EDITOR")
}

// resolve produces the requirements document from flags, stdin, a file, or
// an interactive editor session.
func (flags *requirementsFlags) resolve(cmd *cobra.Command) (string, error) {
	if flags.file != "" && cmd.Flags().Changed("requirements") {
		return "", fmt.Errorf("--file cannot be combined with --requirements")
	}

	if flags.file != "" {
		data, err := os.ReadFile(flags.file)
		if err != nil {
			return "", fmt.Errorf("read requirements file: %w", err)
		}
		return requireNonBlank(string(data))
	}

	if cmd.Flags().Changed("requirements") {
		text, err := resolveRequirementsFromStdin(flags.requirements, cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		return requireNonBlank(text)
	}

	useEditor := flags.edit || (!flags.noEdit && editor.IsInteractive())
	if useEditor {
		text, err := editor.EditRequirements("")
		if err != nil {
			return "", err
		}
		return requireNonBlank(text)
	}

	return "", fmt.Errorf("requirements are required (use --requirements, --file, or --edit)")
}

// resolveRequirementsFromStdin treats the value "-" as a request to read
// the whole of stdin.
func resolveRequirementsFromStdin(value string, stdin io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read requirements from stdin: %w", err)
	}
	return string(data), nil
}

func requireNonBlank(text string) (string, error) {
	if internalstrings.IsBlank(text) {
		return "", fmt.Errorf("requirements must not be empty")
	}
	return text, nil
}
