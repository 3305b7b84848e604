package main

import (
	"github.com/amonks/blueprint/internal/consoletui"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open the interactive terminal console",
	RunE:  runConsole,
}

var consoleAddr string

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVar(&consoleAddr, "addr", "", "Studio server address")
}

func runConsole(cmd *cobra.Command, _ []string) error {
	client, err := newStudioClient(consoleAddr)
	if err != nil {
		return err
	}
	return consoletui.Run(cmd.Context(), client)
}
