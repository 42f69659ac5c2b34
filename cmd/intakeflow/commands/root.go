// Package commands implements the CLI commands for intakeflow.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lunalabs/intakeflow/internal/config"
	"github.com/lunalabs/intakeflow/internal/logger"
	"github.com/lunalabs/intakeflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "intakeflow",
	Short: "Intake-form-to-LLM evaluation pipeline",
	Long: `Intakeflow watches an intake spreadsheet for new submissions, fills a
prompt template from each row, sends the prompt to an LLM, and stores the
response. It also converts linked source documents to text exactly once.

Examples:
  # Watch the intake sheet and process new rows as they appear
  intakeflow watch

  # Convert one linked document to text (no-op if already converted)
  intakeflow convert --link "https://drive.google.com/open?id=1XOGW5EB"

  # Re-send the most recent filled prompt and save the reply
  intakeflow ask`,
	Version:      version.String(),
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initEnv)
}

func initEnv() {
	// Local development drops API keys into a .env file; a missing file is
	// not an error.
	_ = godotenv.Load()
}

// loadConfig loads configuration and wires the logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
