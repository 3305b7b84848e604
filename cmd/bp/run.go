package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/internal/paths"
	"github.com/amonks/blueprint/toolhost"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every analysis in dependency order and export the results",
	Long: `Run performs the full pipeline in one shot, without a studio server:
analyses whose context feeds other analyses run first, independent
analyses run concurrently, and every completed result is exported.`,
	RunE: runRun,
}

var (
	runName         string
	runRequirements requirementsFlags
	runExportDir    string
	runShowPrompts  bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runName, "name", "n", "", "Project name")
	runRequirements.register(runCmd)
	runCmd.Flags().StringVar(&runExportDir, "export-dir", "", "Base directory for exported reports")
	runCmd.Flags().BoolVar(&runShowPrompts, "show-prompts", false, "Log the full prompt sent for each analysis")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if runName == "" {
		return fmt.Errorf("project name is required (use --name)")
	}
	requirements, err := runRequirements.resolve(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
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

	logger := analysis.NewConsoleLogger(os.Stdout, analysis.ConsoleLoggerOptions{
		ShowPrompts: runShowPrompts,
	})
	session, err := analysis.NewSession(runName, requirements, analysis.SessionOptions{
		Context: contextGraph,
	})
	if err != nil {
		return err
	}
	runner, err := analysis.NewRunner(remote, analysis.RunnerOptions{
		ProjectName:  runName,
		TemplatesDir: cfg.Analysis.TemplatesDir,
		Timeouts:     timeouts,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	manager, err := analysis.NewManager(session, runner, analysis.ManagerOptions{Logger: logger})
	if err != nil {
		return err
	}

	for _, wave := range analysisWaves(session) {
		for _, kind := range wave {
			if err := manager.Start(kind); err != nil {
				return err
			}
		}
		for _, kind := range wave {
			manager.Wait(kind)
		}
	}

	exportBase := runExportDir
	if exportBase == "" {
		exportBase = cfg.Export.Dir
	}
	if exportBase == "" {
		exportBase = "projects"
	}
	exportDir := filepath.Join(exportBase, analysis.ExportDirName(runName))
	files, err := analysis.ExportAll(exportDir, runName, session.Slots())
	if err != nil {
		return err
	}

	fmt.Println()
	for _, file := range files {
		fmt.Printf("Exported %s\n", file)
	}

	failed := 0
	for _, slot := range session.Slots() {
		if slot.Status == analysis.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(analysis.Kinds()))
	}
	return nil
}

// analysisWaves layers the kinds so every kind runs after its configured
// prerequisites. Kinds in the same wave run concurrently. The context graph
// is soft, so a cycle degrades to running the remaining kinds together
// rather than failing.
func analysisWaves(session *analysis.Session) [][]analysis.Kind {
	scheduled := make(map[analysis.Kind]bool, len(analysis.Kinds()))
	remaining := analysis.Kinds()
	var waves [][]analysis.Kind
	for len(remaining) > 0 {
		var wave, blocked []analysis.Kind
		for _, kind := range remaining {
			ready := true
			for _, dep := range session.ContextDepends(kind) {
				if !scheduled[dep] {
					ready = false
					break
				}
			}
			if ready {
				wave = append(wave, kind)
			} else {
				blocked = append(blocked, kind)
			}
		}
		if len(wave) == 0 {
			wave = blocked
			blocked = nil
		}
		for _, kind := range wave {
			scheduled[kind] = true
		}
		waves = append(waves, wave)
		remaining = blocked
	}
	return waves
}
