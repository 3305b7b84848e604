package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a project session on the studio server",
	RunE:  runInit,
}

var (
	initAddr         string
	initName         string
	initRequirements requirementsFlags
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initAddr, "addr", "", "Studio server address")
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Project name")
	initRequirements.register(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if initName == "" {
		return fmt.Errorf("project name is required (use --name)")
	}
	requirements, err := initRequirements.resolve(cmd)
	if err != nil {
		return err
	}

	client, err := newStudioClient(initAddr)
	if err != nil {
		return err
	}
	sessionID, err := client.Initialize(cmd.Context(), initName, requirements)
	if err != nil {
		return err
	}
	fmt.Printf("Initialized project %s (session %s)\n", initName, sessionID)
	return nil
}
