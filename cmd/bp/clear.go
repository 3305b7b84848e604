package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset every analysis slot, keeping the project",
	RunE:  runClear,
}

var clearAddr string

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().StringVar(&clearAddr, "addr", "", "Studio server address")
}

func runClear(cmd *cobra.Command, _ []string) error {
	client, err := newStudioClient(clearAddr)
	if err != nil {
		return err
	}
	if err := client.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Cleared all analyses.")
	return nil
}
