package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/hrdesk/internal/embeddings"
	"github.com/ziadkadry99/hrdesk/internal/ingest"
	"github.com/ziadkadry99/hrdesk/internal/progress"
	"github.com/ziadkadry99/hrdesk/internal/vectordb"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the vector index from the HR document directory",
	Long: `Walks the source directory, splits every .txt and .md document into
overlapping chunks, embeds them and replaces the vector index. The previous
index stays in place if the build fails.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().String("source", "", "document directory (overrides ingest.source_dir)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		cfg.Ingest.SourceDir = source
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	embedder, err := embeddings.New(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	w, err := vectordb.NewWriter(ctx, cfg.Index)
	if err != nil {
		return fmt.Errorf("opening index writer: %w", err)
	}
	defer w.Close()

	fmt.Printf("Indexing %s with %s...\n", cfg.Ingest.SourceDir, embedder.Name())

	result, err := ingest.Build(ctx, ingest.Options{
		Walk: ingest.WalkOptions{
			RootDir: cfg.Ingest.SourceDir,
			Include: cfg.Ingest.Include,
			Exclude: cfg.Ingest.Exclude,
		},
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		Reporter:     progress.NewReporter(),
		Logger:       logger,
	}, embedder, w)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	fmt.Println()
	fmt.Println("Index built.")
	fmt.Printf("  Documents: %d\n", result.Documents)
	fmt.Printf("  Chunks:    %d\n", result.Chunks)
	if len(result.Skipped) > 0 {
		fmt.Printf("  Skipped:   %d\n", len(result.Skipped))
		for _, p := range result.Skipped {
			fmt.Printf("    - %s\n", p)
		}
	}
	fmt.Printf("  Duration:  %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("  Backend:   %s\n", cfg.Index.Backend)
	return nil
}
