package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amonks/blueprint/internal/config"
)

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	t.Setenv("BLUEPRINT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Agent.Model != "" {
		t.Errorf("expected empty model, got %q", cfg.Agent.Model)
	}
	if cfg.Tools != nil {
		t.Errorf("expected no tool overrides, got %v", cfg.Tools)
	}
}

func TestLoad_Project(t *testing.T) {
	t.Setenv("BLUEPRINT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	projectDir := t.TempDir()
	writeConfigFile(t, filepath.Join(projectDir, "blueprint.toml"), `
[agent]
model = "gpt-4o-mini"
max-tokens = 2048

[analysis.timeouts]
architecture = "2m"

[export]
dir = "reports"
`)

	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.Model != "gpt-4o-mini" {
		t.Errorf("expected model from project config, got %q", cfg.Agent.Model)
	}
	if cfg.Agent.MaxTokens != 2048 {
		t.Errorf("expected max tokens 2048, got %d", cfg.Agent.MaxTokens)
	}
	if cfg.Analysis.Timeouts["architecture"] != "2m" {
		t.Errorf("expected timeout override, got %v", cfg.Analysis.Timeouts)
	}
	if cfg.Export.Dir != "reports" {
		t.Errorf("expected export dir from project config, got %q", cfg.Export.Dir)
	}
}

func TestLoad_ProjectOverridesGlobalPerKey(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), "config.toml")
	writeConfigFile(t, globalPath, `
[agent]
model = "gpt-4o"
api-key-env = "BLUEPRINT_API_KEY"

[serve]
addr = "9001"
`)
	t.Setenv("BLUEPRINT_CONFIG", globalPath)

	projectDir := t.TempDir()
	writeConfigFile(t, filepath.Join(projectDir, "blueprint.toml"), `
[agent]
model = "o3-mini"
`)

	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.Model != "o3-mini" {
		t.Errorf("expected project model to win, got %q", cfg.Agent.Model)
	}
	if cfg.Agent.APIKeyEnv != "BLUEPRINT_API_KEY" {
		t.Errorf("expected global api-key-env to survive, got %q", cfg.Agent.APIKeyEnv)
	}
	if cfg.Serve.Addr != "9001" {
		t.Errorf("expected global serve addr to survive, got %q", cfg.Serve.Addr)
	}
}

func TestLoad_ProjectDefinedEmptyValueWins(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), "config.toml")
	writeConfigFile(t, globalPath, `
[agent]
base-url = "https://proxy.internal/v1"
`)
	t.Setenv("BLUEPRINT_CONFIG", globalPath)

	projectDir := t.TempDir()
	writeConfigFile(t, filepath.Join(projectDir, "blueprint.toml"), `
[agent]
base-url = ""
`)

	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.BaseURL != "" {
		t.Errorf("expected project-defined empty value to win, got %q", cfg.Agent.BaseURL)
	}
}

func TestLoad_ToolOverridesMergePerServer(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), "config.toml")
	writeConfigFile(t, globalPath, `
[tools.github]
disabled = true

[tools.aws-docs]
command = "uvx-stub"
`)
	t.Setenv("BLUEPRINT_CONFIG", globalPath)

	projectDir := t.TempDir()
	writeConfigFile(t, filepath.Join(projectDir, "blueprint.toml"), `
[tools.github]
disabled = false
args = ["-y", "@modelcontextprotocol/server-github"]
`)

	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	github, ok := cfg.Tools["github"]
	if !ok {
		t.Fatalf("expected github tool override, got %v", cfg.Tools)
	}
	if github.Disabled {
		t.Error("expected project override to re-enable github")
	}
	if len(github.Args) != 2 {
		t.Errorf("expected project args, got %v", github.Args)
	}
	awsDocs, ok := cfg.Tools["aws-docs"]
	if !ok {
		t.Fatalf("expected aws-docs override from global config, got %v", cfg.Tools)
	}
	if awsDocs.Command != "uvx-stub" {
		t.Errorf("expected global command to survive, got %q", awsDocs.Command)
	}
}

func TestLoad_ContextTableWinsWholesale(t *testing.T) {
	globalPath := filepath.Join(t.TempDir(), "config.toml")
	writeConfigFile(t, globalPath, `
[analysis.context]
architecture = ["requirements"]
diagram = ["architecture"]
`)
	t.Setenv("BLUEPRINT_CONFIG", globalPath)

	projectDir := t.TempDir()
	writeConfigFile(t, filepath.Join(projectDir, "blueprint.toml"), `
[analysis.context]
architecture = ["similar-projects", "requirements"]
`)

	cfg, err := config.Load(projectDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Analysis.Context["architecture"]) != 2 {
		t.Errorf("expected project context override, got %v", cfg.Analysis.Context)
	}
	if _, ok := cfg.Analysis.Context["diagram"]; ok {
		t.Errorf("expected project table to replace the global table wholesale, got %v", cfg.Analysis.Context)
	}
}

func TestLoad_Malformed(t *testing.T) {
	t.Setenv("BLUEPRINT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	projectDir := t.TempDir()
	writeConfigFile(t, filepath.Join(projectDir, "blueprint.toml"), "[agent\nmodel=")

	if _, err := config.Load(projectDir); err == nil {
		t.Fatal("expected parse error")
	}
}
