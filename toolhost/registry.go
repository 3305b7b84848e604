// Package toolhost launches and talks to the external MCP tool servers the
// remote agent may consult.
package toolhost

import (
	"fmt"
	"os"
)

// githubTokenEnv is the credential the github server reads; it is taken from
// the process environment and never stored in config files.
const githubTokenEnv = "GITHUB_PERSONAL_ACCESS_TOKEN"

// ServerSpec declares one external tool server and how to launch it.
type ServerSpec struct {
	// Name addresses the server in health output and config overrides.
	Name string
	// Command and Args launch the server process speaking MCP over stdio.
	Command string
	Args    []string
	// Env is extra KEY=VALUE pairs for the child environment.
	Env []string
	// Disabled skips the server without removing it from the registry.
	Disabled bool
}

// DefaultRegistry returns the standard set of tool servers: AWS
// documentation lookup, CDK guidance, cost analysis, diagram rendering, and
// GitHub repository search.
func DefaultRegistry() []ServerSpec {
	specs := []ServerSpec{
		{
			Name:    "aws-docs",
			Command: "uvx",
			Args:    []string{"awslabs.aws-documentation-mcp-server@latest"},
		},
		{
			Name:    "aws-cdk",
			Command: "uvx",
			Args:    []string{"awslabs.cdk-mcp-server@latest"},
		},
		{
			Name:    "aws-cost",
			Command: "uvx",
			Args:    []string{"awslabs.cost-analysis-mcp-server@latest"},
		},
		{
			Name:    "aws-diagram",
			Command: "uvx",
			Args:    []string{"awslabs.aws-diagram-mcp-server@latest"},
		},
		{
			Name:    "github",
			Command: "npx",
			Args:    []string{"-y", "@modelcontextprotocol/server-github"},
		},
	}
	if token := os.Getenv(githubTokenEnv); token != "" {
		for i := range specs {
			if specs[i].Name == "github" {
				specs[i].Env = append(specs[i].Env, fmt.Sprintf("%s=%s", githubTokenEnv, token))
			}
		}
	}
	return specs
}

// Override reconfigures one named server in the registry. Command and Args
// replace the server's launch command when Command is non-empty.
type Override struct {
	Command  string
	Args     []string
	Disabled bool
}

// ApplyOverrides returns the registry with per-server overrides applied.
// Overrides naming unknown servers are ignored.
func ApplyOverrides(specs []ServerSpec, overrides map[string]Override) []ServerSpec {
	if len(overrides) == 0 {
		return specs
	}
	applied := make([]ServerSpec, len(specs))
	copy(applied, specs)
	for i := range applied {
		override, ok := overrides[applied[i].Name]
		if !ok {
			continue
		}
		if override.Command != "" {
			applied[i].Command = override.Command
			applied[i].Args = append([]string(nil), override.Args...)
		}
		if override.Disabled {
			applied[i].Disabled = true
		}
	}
	return applied
}
