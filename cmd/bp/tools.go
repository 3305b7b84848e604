package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show tool server health",
	RunE:  runTools,
}

var (
	toolsAddr string
	toolsJSON bool
)

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringVar(&toolsAddr, "addr", "", "Studio server address")
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Output as JSON")
}

func runTools(cmd *cobra.Command, _ []string) error {
	client, err := newStudioClient(toolsAddr)
	if err != nil {
		return err
	}
	status, err := client.Status(cmd.Context())
	if err != nil {
		return err
	}

	if toolsJSON {
		return encodeJSONToStdout(status.Tools)
	}
	if len(status.Tools) == 0 {
		fmt.Println("No tool servers reported.")
		return nil
	}
	fmt.Print(formatToolTable(status.Tools))
	return nil
}
