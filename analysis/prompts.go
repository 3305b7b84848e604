package analysis

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

//go:embed templates/*.tmpl
var defaultTemplates embed.FS

var systemPromptText = mustReadDefaultTemplate(systemPromptTemplateName)

const systemPromptTemplateName = "system-prompt.tmpl"

// PromptData supplies values for analysis prompt templates.
type PromptData struct {
	ProjectName string
	Context     string
}

// SystemPrompt returns the standing system prompt sent with every analysis.
func SystemPrompt() string {
	return systemPromptText
}

// templateName returns the template filename for a kind.
func templateName(kind Kind) string {
	return string(kind) + ".tmpl"
}

// LoadPromptTemplate loads a prompt template, preferring an override file in
// overrideDir when one exists.
func LoadPromptTemplate(name, overrideDir string) (string, error) {
	if overrideDir != "" {
		overridePath := filepath.Join(overrideDir, name)
		if data, err := os.ReadFile(overridePath); err == nil {
			return string(data), nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("read prompt override: %w", err)
		}
	}

	data, err := defaultTemplates.ReadFile(filepath.Join("templates", name))
	if err != nil {
		return "", fmt.Errorf("read default prompt: %w", err)
	}
	return string(data), nil
}

// RenderPrompt renders the kind's instruction template with the given data.
func RenderPrompt(kind Kind, data PromptData, overrideDir string) (string, error) {
	if !kind.IsValid() {
		return "", formatUnknownKindError(kind)
	}
	contents, err := LoadPromptTemplate(templateName(kind), overrideDir)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New(string(kind)).Option("missingkey=error").Parse(contents)
	if err != nil {
		return "", fmt.Errorf("parse prompt: %w", err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return out.String(), nil
}

func mustReadDefaultTemplate(name string) string {
	data, err := defaultTemplates.ReadFile(filepath.Join("templates", name))
	if err != nil {
		panic(fmt.Sprintf("load default prompt template %q: %v", name, err))
	}
	return string(data)
}
