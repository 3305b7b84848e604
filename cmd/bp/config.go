package main

import (
	"fmt"
	"os"
	"time"

	"github.com/amonks/blueprint/agent"
	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/internal/config"
	"github.com/amonks/blueprint/internal/paths"
	"github.com/amonks/blueprint/studio"
	"github.com/amonks/blueprint/toolhost"
)

const defaultAPIKeyEnv = "OPENAI_API_KEY"

func loadConfig() (*config.Config, error) {
	workingDir, err := paths.WorkingDir()
	if err != nil {
		return nil, err
	}
	return config.Load(workingDir)
}

// buildTimeouts converts configured per-kind timeout strings into durations.
// Kind names resolve by unambiguous prefix, like the CLI arguments.
func buildTimeouts(cfg *config.Config) (map[analysis.Kind]time.Duration, error) {
	if len(cfg.Analysis.Timeouts) == 0 {
		return nil, nil
	}
	timeouts := make(map[analysis.Kind]time.Duration, len(cfg.Analysis.Timeouts))
	for name, value := range cfg.Analysis.Timeouts {
		kind, err := analysis.ResolveKind(name)
		if err != nil {
			return nil, fmt.Errorf("analysis.timeouts: %w", err)
		}
		budget, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("analysis.timeouts.%s: %w", kind, err)
		}
		if budget <= 0 {
			return nil, fmt.Errorf("analysis.timeouts.%s: must be positive", kind)
		}
		timeouts[kind] = budget
	}
	return timeouts, nil
}

// buildContext converts configured per-kind prerequisite lists into the
// dependency graph override.
func buildContext(cfg *config.Config) (map[analysis.Kind][]analysis.Kind, error) {
	if len(cfg.Analysis.Context) == 0 {
		return nil, nil
	}
	graph := make(map[analysis.Kind][]analysis.Kind, len(cfg.Analysis.Context))
	for name, depNames := range cfg.Analysis.Context {
		kind, err := analysis.ResolveKind(name)
		if err != nil {
			return nil, fmt.Errorf("analysis.context: %w", err)
		}
		deps := make([]analysis.Kind, 0, len(depNames))
		for _, depName := range depNames {
			dep, err := analysis.ResolveKind(depName)
			if err != nil {
				return nil, fmt.Errorf("analysis.context.%s: %w", kind, err)
			}
			deps = append(deps, dep)
		}
		graph[kind] = deps
	}
	return graph, nil
}

// buildRegistry applies configured tool-server overrides to the default
// registry.
func buildRegistry(cfg *config.Config) []toolhost.ServerSpec {
	specs := toolhost.DefaultRegistry()
	if len(cfg.Tools) == 0 {
		return specs
	}
	overrides := make(map[string]toolhost.Override, len(cfg.Tools))
	for name, tool := range cfg.Tools {
		overrides[name] = toolhost.Override{
			Command:  tool.Command,
			Args:     tool.Args,
			Disabled: tool.Disabled,
		}
	}
	return toolhost.ApplyOverrides(specs, overrides)
}

// resolveAPIKey reads the agent API key from the environment. The config
// names the variable, never the key itself.
func resolveAPIKey(cfg *config.Config) (string, error) {
	envName := cfg.Agent.APIKeyEnv
	if envName == "" {
		envName = defaultAPIKeyEnv
	}
	key := os.Getenv(envName)
	if key == "" {
		return "", fmt.Errorf("no API key: set %s (or agent.api-key-env in blueprint.toml)", envName)
	}
	return key, nil
}

func buildAgent(cfg *config.Config, tools agent.ToolCaller) (*agent.Client, error) {
	apiKey, err := resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}
	return agent.New(agent.Options{
		APIKey:        apiKey,
		BaseURL:       cfg.Agent.BaseURL,
		Model:         cfg.Agent.Model,
		MaxTokens:     cfg.Agent.MaxTokens,
		Tools:         tools,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
	})
}

// newStudioClient builds a client for the configured studio address,
// preferring the explicit --addr flag.
func newStudioClient(explicitAddr string) (*studio.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	addr, err := studio.ResolveAddr(cfg.Serve.Addr, explicitAddr)
	if err != nil {
		return nil, err
	}
	return studio.NewClient(addr), nil
}
