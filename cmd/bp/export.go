package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [kind]",
	Short: "Write completed results to the export directory",
	Long: `Export writes analysis results to files on the studio server. With no
argument every completed analysis is exported; with a kind argument only
that analysis is written, and it must have completed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var exportAddr string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportAddr, "addr", "", "Studio server address")
}

func runExport(cmd *cobra.Command, args []string) error {
	client, err := newStudioClient(exportAddr)
	if err != nil {
		return err
	}
	kind := ""
	if len(args) > 0 {
		kind = args[0]
	}
	files, err := client.Export(cmd.Context(), kind)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("Nothing to export: no completed analyses.")
		return nil
	}
	for _, file := range files {
		fmt.Println(file)
	}
	return nil
}
