package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <kind>...",
	Short: "Start analyses in the background",
	Long: `Start launches one or more analyses on the studio server and returns
immediately. Kinds resolve by unambiguous prefix: "arch" starts the
architecture analysis. Use "bp status" to poll for completion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStart,
}

var startAddr string

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().StringVar(&startAddr, "addr", "", "Studio server address")
}

func runStart(cmd *cobra.Command, args []string) error {
	client, err := newStudioClient(startAddr)
	if err != nil {
		return err
	}
	for _, arg := range args {
		kind, err := client.Start(cmd.Context(), arg)
		if err != nil {
			return err
		}
		fmt.Printf("Started %s\n", kind)
	}
	return nil
}
