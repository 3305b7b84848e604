package main

import (
	"fmt"
	"log"
	"os"

	"github.com/amonks/blueprint/internal/paths"
	"github.com/amonks/blueprint/studio"
	"github.com/amonks/blueprint/toolhost"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the studio server with the web dashboard",
	RunE:  runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (host:port or port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr, err := studio.ResolveAddr(cfg.Serve.Addr, serveAddr)
	if err != nil {
		return err
	}
	timeouts, err := buildTimeouts(cfg)
	if err != nil {
		return err
	}
	contextGraph, err := buildContext(cfg)
	if err != nil {
		return err
	}

	logsDir, err := paths.DefaultToolLogsDir()
	if err != nil {
		return err
	}
	host := toolhost.Connect(cmd.Context(), buildRegistry(cfg), toolhost.Options{
		LogsDir:       logsDir,
		Logger:        log.New(os.Stderr, "toolhost: ", log.LstdFlags),
		ClientName:    "blueprint",
		ClientVersion: buildChangeID,
	})
	defer host.Close()

	remote, err := buildAgent(cfg, host)
	if err != nil {
		return err
	}

	server, err := studio.NewServer(studio.ServerOptions{
		Agent:        remote,
		Tools:        host,
		ExportDir:    cfg.Export.Dir,
		TemplatesDir: cfg.Analysis.TemplatesDir,
		Timeouts:     timeouts,
		Context:      contextGraph,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Studio listening on %s (dashboard at http://%s/web/)\n", addr, addr)
	return server.Serve(addr)
}
