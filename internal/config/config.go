// Package config loads intakeflow configuration from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultFieldNames is the intake form's column order. Row cells are zipped
// against these names positionally when building a prompt.
var DefaultFieldNames = []string{
	"sys_prompt",
	"solution_name",
	"addressed_problem",
	"init_customer",
	"current_solution",
	"your_solution_description",
	"primary_market_sector",
	"market_geographic_focus",
	"known_competitors",
	"primary_expected_business_model",
	"secondary_expected_business_model",
	"projected_revenue",
	"solution_stage",
	"paying_customers",
	"pilot_poc_count",
	"total_funding_td",
	"monthly_burn_active",
	"monthly_burn_inactive",
	"transferring_team_members",
	"solution_type",
	"known_supply_chain_requirements",
	"ip_status",
	"evaluator_persona",
}

// Config holds all application configuration.
type Config struct {
	Paths   PathsConfig
	Watcher WatcherConfig
	LLM     LLMConfig
	Sheet   SheetConfig
	S3      S3Config
	Log     LogConfig
}

// PathsConfig holds the filesystem locations the pipeline writes to.
type PathsConfig struct {
	Template    string `mapstructure:"template" validate:"required"`
	PromptDir   string `mapstructure:"prompt_dir" validate:"required"`
	ResponseDir string `mapstructure:"response_dir" validate:"required"`
	TextDir     string `mapstructure:"text_dir" validate:"required"`
	Lookup      string `mapstructure:"lookup" validate:"required"`
}

// WatcherConfig holds row-watcher settings.
type WatcherConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	StartRow     int           `mapstructure:"start_row" validate:"gte=0"`
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"gte=0"`
	Backoff      time.Duration `mapstructure:"backoff" validate:"gte=0"`
	FieldNames   []string      `mapstructure:"field_names" validate:"min=1"`
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens" validate:"gt=0"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// SheetConfig locates the intake workbook: either a local path, or a
// bucket/key pair resolved through the blob store.
type SheetConfig struct {
	Path   string `mapstructure:"path"`
	Bucket string `mapstructure:"bucket"`
	Key    string `mapstructure:"key"`
	Name   string `mapstructure:"name"` // worksheet name, first sheet when empty
}

// S3Config holds blob-store settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	DocBucket string `mapstructure:"doc_bucket"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the INTAKEFLOW_
// prefix, applying defaults and validating the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INTAKEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	cfg := &Config{
		Paths: PathsConfig{
			Template:    v.GetString("paths.template"),
			PromptDir:   v.GetString("paths.prompt_dir"),
			ResponseDir: v.GetString("paths.response_dir"),
			TextDir:     v.GetString("paths.text_dir"),
			Lookup:      v.GetString("paths.lookup"),
		},
		Watcher: WatcherConfig{
			PollInterval: v.GetDuration("watcher.poll_interval"),
			StartRow:     v.GetInt("watcher.start_row"),
			MaxAttempts:  v.GetInt("watcher.max_attempts"),
			Backoff:      v.GetDuration("watcher.backoff"),
			FieldNames:   splitList(v.GetString("watcher.field_names")),
		},
		LLM: LLMConfig{
			Provider:  v.GetString("llm.provider"),
			Model:     v.GetString("llm.model"),
			APIKey:    v.GetString("llm.api_key"),
			BaseURL:   v.GetString("llm.base_url"),
			MaxTokens: v.GetInt("llm.max_tokens"),
			Timeout:   v.GetDuration("llm.timeout"),
		},
		Sheet: SheetConfig{
			Path:   v.GetString("sheet.path"),
			Bucket: v.GetString("sheet.bucket"),
			Key:    v.GetString("sheet.key"),
			Name:   v.GetString("sheet.name"),
		},
		S3: S3Config{
			Region:    v.GetString("s3.region"),
			Endpoint:  v.GetString("s3.endpoint"),
			AccessKey: v.GetString("s3.access_key"),
			SecretKey: v.GetString("s3.secret_key"),
			DocBucket: v.GetString("s3.doc_bucket"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if len(cfg.Watcher.FieldNames) == 0 {
		cfg.Watcher.FieldNames = DefaultFieldNames
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.template", "support/prompt_outline.txt")
	v.SetDefault("paths.prompt_dir", "prompts")
	v.SetDefault("paths.response_dir", "responses")
	v.SetDefault("paths.text_dir", "textfiles")
	v.SetDefault("paths.lookup", "lookup.json")

	v.SetDefault("watcher.poll_interval", "2m")
	v.SetDefault("watcher.start_row", 1)
	v.SetDefault("watcher.max_attempts", 0) // 0 = retry forever
	v.SetDefault("watcher.backoff", "30s")
	v.SetDefault("watcher.field_names", "")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", 5000)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("sheet.path", "")
	v.SetDefault("sheet.bucket", "")
	v.SetDefault("sheet.key", "")
	v.SetDefault("sheet.name", "")

	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.doc_bucket", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"paths.template", "paths.prompt_dir", "paths.response_dir",
		"paths.text_dir", "paths.lookup",
		"watcher.poll_interval", "watcher.start_row", "watcher.max_attempts",
		"watcher.backoff", "watcher.field_names",
		"llm.provider", "llm.model", "llm.api_key", "llm.base_url",
		"llm.max_tokens", "llm.timeout",
		"sheet.path", "sheet.bucket", "sheet.key", "sheet.name",
		"s3.region", "s3.endpoint", "s3.access_key", "s3.secret_key",
		"s3.doc_bucket",
		"log.level", "log.format",
	} {
		env := "INTAKEFLOW_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, env)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
