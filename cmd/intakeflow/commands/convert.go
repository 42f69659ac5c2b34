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
	"github.com/lunalabs/intakeflow/internal/converter"
	"github.com/lunalabs/intakeflow/internal/docsource"
	"github.com/lunalabs/intakeflow/internal/lookup"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a linked source document to text",
	Long: `Convert fetches the document behind a share link, extracts its text, and
stores it under a derived identifier. A link whose document was already
converted returns the recorded identifier without fetching anything.

Examples:
  # From a share link over HTTP
  intakeflow convert --link "https://drive.google.com/open?id=1XOGW5EB" \
      --url-template "https://drive.google.com/uc?export=download&id={id}"

  # From the configured blob-store bucket
  intakeflow convert --link "https://drive.google.com/open?id=1XOGW5EB" --from-blob`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringP("link", "l", "", "share link of the document to convert (required)")
	flags.String("url-template", "", "download URL with an {id} slot for the file handle")
	flags.Bool("from-blob", false, "fetch document bytes from the configured blob-store bucket")
	_ = convertCmd.MarkFlagRequired("link")
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		logError("%v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fromBlob, _ := cmd.Flags().GetBool("from-blob")
	urlTemplate, _ := cmd.Flags().GetString("url-template")

	source, err := buildDocSource(ctx, cfg, fromBlob, urlTemplate)
	if err != nil {
		logError("%v", err)
		return err
	}

	link, _ := cmd.Flags().GetString("link")
	conv := converter.New(lookup.New(cfg.Paths.Lookup), source, cfg.Paths.TextDir)

	id, cached, err := conv.ConvertOnce(ctx, link)
	if err != nil {
		logError("converting document: %v", err)
		return err
	}

	if cached {
		fmt.Printf("already converted: %s -> %s\n", id, conv.TextPath(id))
	} else {
		fmt.Printf("converted: %s -> %s\n", id, conv.TextPath(id))
	}
	return nil
}

func buildDocSource(ctx context.Context, cfg *config.Config, fromBlob bool, urlTemplate string) (docsource.Source, error) {
	if fromBlob {
		if cfg.S3.DocBucket == "" {
			return nil, fmt.Errorf("--from-blob requires INTAKEFLOW_S3_DOC_BUCKET")
		}
		store, err := s3blob.NewStore(ctx, &cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("connecting to blob store: %w", err)
		}
		return docsource.NewBlobSource(store, cfg.S3.DocBucket), nil
	}

	if urlTemplate == "" {
		return nil, fmt.Errorf("either --url-template or --from-blob is required")
	}
	return docsource.NewHTTPSource(urlTemplate, 0), nil
}
