package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	s3blob "github.com/lunalabs/intakeflow/internal/blob/s3"
	"github.com/lunalabs/intakeflow/internal/config"
	"github.com/lunalabs/intakeflow/internal/llm"
	"github.com/lunalabs/intakeflow/internal/respstore"
	"github.com/lunalabs/intakeflow/internal/sheet"
	"github.com/lunalabs/intakeflow/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the intake sheet and process new rows",
	Long: `Watch polls the intake workbook for newly appended rows. Each new row is
zipped into the prompt template's fields, the filled prompt is saved, the LLM
is invoked, and the response is saved. A failing row is retried on later polls
without advancing past it.

The cursor is held in memory only: restarting the watcher reprocesses rows
from the configured start row.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	flags := watchCmd.Flags()
	flags.Int("start-row", 0, "override the last already-handled row index")
}

// artifactRouter sends filled prompts and model responses to their own
// directories, matching how operators browse them.
type artifactRouter struct {
	prompts   *respstore.Store
	responses *respstore.Store
}

func (r artifactRouter) Save(content, category string) (string, error) {
	if category == watcher.CategoryPrompt {
		return r.prompts.Save(content, category)
	}
	return r.responses.Save(content, category)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		logError("%v", err)
		return err
	}

	if cmd.Flags().Changed("start-row") {
		cfg.Watcher.StartRow, _ = cmd.Flags().GetInt("start-row")
	}

	templateText, err := os.ReadFile(cfg.Paths.Template)
	if err != nil {
		logError("reading template: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, err := buildRowSource(ctx, cfg)
	if err != nil {
		logError("%v", err)
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		logError("%v", err)
		return err
	}

	w := watcher.New(rows, provider, artifactRouter{
		prompts:   respstore.New(cfg.Paths.PromptDir),
		responses: respstore.New(cfg.Paths.ResponseDir),
	}, string(templateText), watcher.Config{
		PollInterval: cfg.Watcher.PollInterval,
		StartRow:     cfg.Watcher.StartRow,
		FieldNames:   cfg.Watcher.FieldNames,
		MaxAttempts:  cfg.Watcher.MaxAttempts,
		Backoff:      cfg.Watcher.Backoff,
	})

	if err := w.Run(ctx); err != nil {
		logError("%v", err)
		return err
	}
	return nil
}

func buildRowSource(ctx context.Context, cfg *config.Config) (sheet.RowSource, error) {
	switch {
	case cfg.Sheet.Path != "":
		return sheet.NewWorkbookSource(cfg.Sheet.Path, cfg.Sheet.Name), nil
	case cfg.Sheet.Bucket != "" && cfg.Sheet.Key != "":
		store, err := s3blob.NewStore(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("connecting to blob store: %w", err)
		}
		return sheet.NewBlobWorkbookSource(store, cfg.Sheet.Bucket, cfg.Sheet.Key, cfg.Sheet.Name), nil
	default:
		return nil, fmt.Errorf("no intake sheet configured: set INTAKEFLOW_SHEET_PATH or INTAKEFLOW_SHEET_BUCKET/KEY")
	}
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	name := cfg.LLM.Provider
	apiKey := cfg.LLM.APIKey
	if name == "" {
		detected, detectedKey := llm.DetectProvider()
		name = detected
		if apiKey == "" {
			apiKey = detectedKey
		}
	}

	model := cfg.LLM.Model
	if model == "" {
		model = llm.GetDefaultModel(name)
	}

	providerCfg := llm.DefaultProviderConfig()
	providerCfg.APIKey = apiKey
	providerCfg.BaseURL = cfg.LLM.BaseURL
	providerCfg.Model = model
	providerCfg.MaxTokens = cfg.LLM.MaxTokens
	providerCfg.Timeout = cfg.LLM.Timeout

	return llm.NewProvider(name, providerCfg)
}
