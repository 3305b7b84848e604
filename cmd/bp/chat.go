package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/internal/markdown"
	"github.com/amonks/blueprint/internal/paths"
	internalstrings "github.com/amonks/blueprint/internal/strings"
	"github.com/amonks/blueprint/toolhost"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the agent and its tool servers",
	Long: `Chat opens a prompt against the remote agent, with the tool servers
connected. Useful for ad-hoc questions outside the analysis pipeline.
Exit with "exit", "quit", or end-of-input.`,
	RunE: runChat,
}

var chatShowTools bool

const chatRenderWidth = 80

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatShowTools, "show-tools", false, "List connected tool servers before the first prompt")
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
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

	if chatShowTools {
		fmt.Print(formatToolTable(host.Statuses()))
		fmt.Println()
	}

	var transcript []chatTurn
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		answer, err := remote.Complete(cmd.Context(), analysis.SystemPrompt(), chatPrompt(transcript, line))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		transcript = append(transcript,
			chatTurn{role: "User", text: line},
			chatTurn{role: "Assistant", text: answer},
		)
		printChatAnswer(answer)
	}
}

type chatTurn struct {
	role string
	text string
}

// chatPrompt folds the prior turns into the prompt so the conversation has
// memory across completions.
func chatPrompt(transcript []chatTurn, question string) string {
	if len(transcript) == 0 {
		return question
	}
	var builder strings.Builder
	builder.WriteString("Conversation so far:\n\n")
	for _, turn := range transcript {
		fmt.Fprintf(&builder, "%s: %s\n\n", turn.role, internalstrings.TrimTrailingNewlines(turn.text))
	}
	builder.WriteString("User: ")
	builder.WriteString(question)
	return builder.String()
}

func printChatAnswer(answer string) {
	rendered := markdown.SafeRender(chatRenderWidth, 0, []byte(answer))
	if len(rendered) == 0 {
		fmt.Println("-")
		return
	}
	fmt.Println(string(rendered))
}
