package analysis

import (
	"time"

	"github.com/amonks/blueprint/internal/ids"
	internalstrings "github.com/amonks/blueprint/internal/strings"
)

// Kind identifies one analysis slot.
type Kind string

const (
	// KindSimilarProjects researches comparable projects in the
	// organization's GitHub repositories.
	KindSimilarProjects Kind = "similar-projects"
	// KindRequirements digests the requirements document.
	KindRequirements Kind = "requirements"
	// KindRepoStructure analyzes repository layout patterns used by prior
	// projects, feeding CDK generation.
	KindRepoStructure Kind = "repo-structure"
	// KindArchitecture proposes an AWS architecture.
	KindArchitecture Kind = "architecture"
	// KindDiagram produces a draw.io XML diagram.
	KindDiagram Kind = "diagram"
	// KindCDKTypeScript generates a TypeScript CDK stack.
	KindCDKTypeScript Kind = "cdk-typescript"
	// KindCDKPython generates a Python CDK stack.
	KindCDKPython Kind = "cdk-python"
	// KindCostAnalysis estimates AWS costs.
	KindCostAnalysis Kind = "cost-analysis"
	// KindDocumentation writes project documentation.
	KindDocumentation Kind = "documentation"
)

// Kinds returns every analysis kind in display order.
func Kinds() []Kind {
	return []Kind{
		KindSimilarProjects,
		KindRequirements,
		KindRepoStructure,
		KindArchitecture,
		KindDiagram,
		KindCDKTypeScript,
		KindCDKPython,
		KindCostAnalysis,
		KindDocumentation,
	}
}

// IsValid reports whether the kind is a known analysis kind.
func (k Kind) IsValid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Format describes the natural output format of an analysis kind.
type Format string

const (
	// FormatMarkdown is prose markdown output.
	FormatMarkdown Format = "markdown"
	// FormatSourceText is source-code text output.
	FormatSourceText Format = "source-text"
	// FormatDiagramMarkup is draw.io diagram XML output.
	FormatDiagramMarkup Format = "diagram-markup"
)

// Format returns the declared output format for the kind.
func (k Kind) Format() Format {
	switch k {
	case KindCDKTypeScript, KindCDKPython:
		return FormatSourceText
	case KindDiagram:
		return FormatDiagramMarkup
	default:
		return FormatMarkdown
	}
}

// Extension returns the export file extension, including the dot.
func (k Kind) Extension() string {
	switch k {
	case KindCDKTypeScript:
		return ".ts"
	case KindCDKPython:
		return ".py"
	case KindDiagram:
		return ".xml"
	default:
		return ".md"
	}
}

// Title returns a human-readable label for the kind.
func (k Kind) Title() string {
	switch k {
	case KindSimilarProjects:
		return "Similar Projects"
	case KindRequirements:
		return "Requirements"
	case KindRepoStructure:
		return "Repository Structure"
	case KindArchitecture:
		return "Architecture"
	case KindDiagram:
		return "Diagram"
	case KindCDKTypeScript:
		return "TypeScript CDK"
	case KindCDKPython:
		return "Python CDK"
	case KindCostAnalysis:
		return "Cost Analysis"
	case KindDocumentation:
		return "Documentation"
	default:
		return string(k)
	}
}

// exportSuffix is the filename stem appended to the project name on export.
func (k Kind) exportSuffix() string {
	switch k {
	case KindSimilarProjects:
		return "similar_projects"
	case KindRequirements:
		return "requirements"
	case KindRepoStructure:
		return "repo_structure"
	case KindArchitecture:
		return "architecture"
	case KindDiagram:
		return "diagram"
	case KindCDKTypeScript, KindCDKPython:
		return "cdk"
	case KindCostAnalysis:
		return "costs"
	case KindDocumentation:
		return "docs"
	default:
		return string(k)
	}
}

// DefaultTimeout returns the wall-clock budget for one run of the kind.
func (k Kind) DefaultTimeout() time.Duration {
	switch k {
	case KindRequirements:
		return 30 * time.Second
	case KindDiagram, KindCostAnalysis:
		return 45 * time.Second
	case KindArchitecture, KindCDKTypeScript, KindCDKPython:
		return 90 * time.Second
	default:
		return 60 * time.Second
	}
}

// DefaultContext returns the kinds whose completed results feed the given
// kind's context. The graph is soft: a prerequisite that has not completed
// contributes nothing.
func DefaultContext(kind Kind) []Kind {
	switch kind {
	case KindArchitecture:
		return []Kind{KindSimilarProjects, KindRequirements}
	case KindDiagram:
		return []Kind{KindArchitecture}
	case KindCDKTypeScript, KindCDKPython:
		return []Kind{KindSimilarProjects, KindRepoStructure, KindArchitecture}
	case KindDocumentation:
		return []Kind{KindSimilarProjects}
	default:
		return nil
	}
}

// ResolveKind matches input against known kinds by exact name or unique
// prefix.
func ResolveKind(input string) (Kind, error) {
	normalized := internalstrings.NormalizeLowerTrimSpace(input)
	if normalized == "" {
		return "", formatUnknownKindError(Kind(input))
	}
	candidate := Kind(normalized)
	if candidate.IsValid() {
		return candidate, nil
	}

	names := make([]string, 0, len(Kinds()))
	for _, kind := range Kinds() {
		names = append(names, string(kind))
	}
	match, matched, ambiguous := ids.MatchPrefix(names, normalized)
	if ambiguous {
		return "", formatAmbiguousKindError(normalized)
	}
	if !matched {
		return "", formatUnknownKindError(candidate)
	}
	return Kind(match), nil
}
