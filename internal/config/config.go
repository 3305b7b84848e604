// Package config handles loading blueprint.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/amonks/blueprint/internal/paths"
)

// Config represents the blueprint.toml configuration file.
type Config struct {
	Agent    Agent           `toml:"agent"`
	Analysis Analysis        `toml:"analysis"`
	Export   Export          `toml:"export"`
	Serve    Serve           `toml:"serve"`
	Tools    map[string]Tool `toml:"tools"`
}

// Agent contains remote agent configuration. Credentials are named by
// environment variable, never stored in the file itself.
type Agent struct {
	// BaseURL overrides the OpenAI-compatible endpoint.
	BaseURL string `toml:"base-url"`
	// Model selects the completion model.
	Model string `toml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api-key-env"`
	// MaxTokens caps each completion.
	MaxTokens int `toml:"max-tokens"`
	// MaxToolRounds caps tool-calling rounds per completion.
	MaxToolRounds int `toml:"max-tool-rounds"`
}

// Analysis contains analysis-run configuration.
type Analysis struct {
	// TemplatesDir overrides the embedded prompt templates.
	TemplatesDir string `toml:"templates-dir"`
	// Timeouts overrides per-kind wall-clock budgets, keyed by kind name
	// with Go duration values ("90s", "2m").
	Timeouts map[string]string `toml:"timeouts"`
	// Context overrides per-kind prerequisite lists, keyed by kind name.
	Context map[string][]string `toml:"context"`
}

// Export contains result-export configuration.
type Export struct {
	// Dir is the base directory for exported reports.
	Dir string `toml:"dir"`
}

// Serve contains studio server configuration.
type Serve struct {
	// Addr is the listen address, either host:port or a bare port.
	Addr string `toml:"addr"`
}

// Tool overrides one tool server registry entry.
type Tool struct {
	Command  string   `toml:"command"`
	Args     []string `toml:"args"`
	Disabled bool     `toml:"disabled"`
}

// Load loads configuration from the working directory and the global config
// file. Returns an empty config if no config files exist.
func Load(projectPath string) (*Config, error) {
	globalPath, err := paths.GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(projectPath, "blueprint.toml"))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Agent.BaseURL = mergeString(projectMeta.IsDefined("agent", "base-url"), projectCfg.Agent.BaseURL, globalCfg.Agent.BaseURL)
	merged.Agent.Model = mergeString(projectMeta.IsDefined("agent", "model"), projectCfg.Agent.Model, globalCfg.Agent.Model)
	merged.Agent.APIKeyEnv = mergeString(projectMeta.IsDefined("agent", "api-key-env"), projectCfg.Agent.APIKeyEnv, globalCfg.Agent.APIKeyEnv)
	merged.Agent.MaxTokens = mergeInt(projectMeta.IsDefined("agent", "max-tokens"), projectCfg.Agent.MaxTokens, globalCfg.Agent.MaxTokens)
	merged.Agent.MaxToolRounds = mergeInt(projectMeta.IsDefined("agent", "max-tool-rounds"), projectCfg.Agent.MaxToolRounds, globalCfg.Agent.MaxToolRounds)

	merged.Analysis.TemplatesDir = mergeString(projectMeta.IsDefined("analysis", "templates-dir"), projectCfg.Analysis.TemplatesDir, globalCfg.Analysis.TemplatesDir)
	merged.Analysis.Timeouts = mergeStringMap(projectMeta.IsDefined("analysis", "timeouts"), projectCfg.Analysis.Timeouts, globalCfg.Analysis.Timeouts)
	merged.Analysis.Context = mergeListMap(projectMeta.IsDefined("analysis", "context"), projectCfg.Analysis.Context, globalCfg.Analysis.Context)

	merged.Export.Dir = mergeString(projectMeta.IsDefined("export", "dir"), projectCfg.Export.Dir, globalCfg.Export.Dir)
	merged.Serve.Addr = mergeString(projectMeta.IsDefined("serve", "addr"), projectCfg.Serve.Addr, globalCfg.Serve.Addr)

	merged.Tools = mergeTools(globalCfg.Tools, projectCfg.Tools)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func mergeInt(projectDefined bool, projectValue, globalValue int) int {
	if projectDefined {
		return projectValue
	}
	return globalValue
}

func mergeStringMap(projectDefined bool, projectValue, globalValue map[string]string) map[string]string {
	source := globalValue
	if projectDefined {
		source = projectValue
	}
	if len(source) == 0 {
		return nil
	}
	merged := make(map[string]string, len(source))
	for key, value := range source {
		merged[key] = value
	}
	return merged
}

func mergeListMap(projectDefined bool, projectValue, globalValue map[string][]string) map[string][]string {
	source := globalValue
	if projectDefined {
		source = projectValue
	}
	if len(source) == 0 {
		return nil
	}
	merged := make(map[string][]string, len(source))
	for key, value := range source {
		merged[key] = append([]string(nil), value...)
	}
	return merged
}

// mergeTools merges per-server override tables. Project entries win per
// server name.
func mergeTools(globalTools, projectTools map[string]Tool) map[string]Tool {
	if len(globalTools) == 0 && len(projectTools) == 0 {
		return nil
	}
	merged := make(map[string]Tool, len(globalTools)+len(projectTools))
	for name, tool := range globalTools {
		merged[name] = tool
	}
	for name, tool := range projectTools {
		merged[name] = tool
	}
	return merged
}
