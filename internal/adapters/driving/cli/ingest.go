package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestProcess bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add files to the library",
	Long: `Copies files into library storage and creates pending records.
Use --process to analyse them immediately after ingestion.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestProcess, "process", false, "process pending documents after ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingestion service not configured")
	}

	ctx := context.Background()

	var failed int
	for _, path := range args {
		record, err := ingestor.Ingest(ctx, path)
		if err != nil {
			failed++
			cmd.Printf("  %s: %v\n", path, err)
			continue
		}
		cmd.Printf("  %s -> %s\n", path, record.ID)
	}

	cmd.Printf("Ingested %d of %d files.\n", len(args)-failed, len(args))
	if failed == len(args) {
		return errors.New("all files failed to ingest")
	}

	if ingestProcess {
		return runProcessBatch(ctx, cmd)
	}
	return nil
}

// runProcessBatch drives a pending batch with textual progress, shared by
// `ingest --process`, `process`, and `watch`.
func runProcessBatch(ctx context.Context, cmd *cobra.Command) error {
	err := ingestor.ProcessPending(ctx, func(fraction float64) {
		cmd.Printf("\rProcessing... %3.0f%%", fraction*100)
	})
	cmd.Println()
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	return nil
}
