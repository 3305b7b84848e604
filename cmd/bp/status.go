package main

import (
	"fmt"
	"time"

	"github.com/amonks/blueprint/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project session and every analysis slot",
	RunE:  runStatus,
}

var (
	statusAddr string
	statusJSON bool
)

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "Studio server address")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, err := newStudioClient(statusAddr)
	if err != nil {
		return err
	}
	status, err := client.Status(cmd.Context())
	if err != nil {
		return err
	}

	if statusJSON {
		return encodeJSONToStdout(status)
	}

	if !status.Initialized {
		fmt.Println("No project session. Run `bp init` or open the web dashboard.")
		return nil
	}

	now := time.Now()
	fmt.Printf("Project: %s (created %s)\n\n", status.ProjectName, ui.FormatTimeAgo(status.CreatedAt, now))
	fmt.Print(formatSlotTable(SlotTableOptions{
		Slots:         status.Slots,
		Highlight:     ui.HighlightID,
		Now:           now,
		PrefixLengths: slotKindPrefixLengths(status.Slots),
	}))

	if len(status.Tools) > 0 {
		fmt.Println()
		fmt.Println("Tool servers:")
		fmt.Print(formatToolTable(status.Tools))
	}
	return nil
}
