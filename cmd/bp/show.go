package main

import (
	"fmt"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/internal/markdown"
	internalstrings "github.com/amonks/blueprint/internal/strings"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <kind>",
	Short: "Show one analysis result",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	showAddr string
	showRaw  bool
)

const showRenderWidth = 80

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showAddr, "addr", "", "Studio server address")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the result verbatim, without markdown formatting")
}

func runShow(cmd *cobra.Command, args []string) error {
	client, err := newStudioClient(showAddr)
	if err != nil {
		return err
	}
	result, err := client.Result(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	switch result.Status {
	case analysis.StatusNotStarted:
		return fmt.Errorf("%s has not run (start it with `bp start %s`)", result.Kind, result.Kind)
	case analysis.StatusRunning:
		return fmt.Errorf("%s is still running", result.Kind)
	case analysis.StatusFailed:
		return fmt.Errorf("%s failed: %s", result.Kind, result.Err)
	}

	if showRaw || result.Kind.Format() != analysis.FormatMarkdown {
		fmt.Print(ensureTrailingNewline(result.Result))
		return nil
	}
	rendered := markdown.SafeRender(showRenderWidth, 0, []byte(result.Result))
	if len(rendered) == 0 {
		fmt.Println("-")
		return nil
	}
	fmt.Println(string(rendered))
	return nil
}

func ensureTrailingNewline(value string) string {
	value = internalstrings.TrimTrailingNewlines(value)
	if value == "" {
		return ""
	}
	return value + "\n"
}
