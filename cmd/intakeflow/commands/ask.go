package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lunalabs/intakeflow/internal/llm"
	"github.com/lunalabs/intakeflow/internal/logger"
	"github.com/lunalabs/intakeflow/internal/respstore"
	"github.com/lunalabs/intakeflow/internal/watcher"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Re-send the most recent filled prompt to the LLM",
	Long: `Ask picks the most recently filled prompt from the prompt directory,
sends it to the configured LLM provider, and saves the reply alongside the
other responses. Useful for retrying a prompt after an API failure or for
trying a different model on the same submission.`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		logError("%v", err)
		return err
	}

	prompts := respstore.New(cfg.Paths.PromptDir)
	path, err := prompts.MostRecent(watcher.CategoryPrompt + "_*")
	if err != nil {
		logError("locating latest prompt: %v", err)
		return err
	}

	prompt, err := os.ReadFile(path)
	if err != nil {
		logError("reading prompt: %v", err)
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		logError("%v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("sending prompt", "path", path, "provider", provider.Name())
	reply, err := llm.Invoke(ctx, provider, string(prompt))
	if err != nil {
		logError("completion failed: %v", err)
		return err
	}

	responses := respstore.New(cfg.Paths.ResponseDir)
	saved, err := responses.Save(reply, watcher.CategoryResponse)
	if err != nil {
		logError("saving response: %v", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Response saved to %s\n", saved)
	return nil
}
