package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Analyse pending documents",
	Long: `Runs the analysis pipeline over every pending document in ingestion
order: text extraction, categorisation, and semantic indexing. Press
Ctrl-C to stop after the current document; remaining documents stay
pending.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	if ingestor == nil {
		return errors.New("ingestion service not configured")
	}

	// First interrupt requests a stop at the next document boundary;
	// a second one kills the process the normal way.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cmd.Println("\nStopping after current document...")
		ingestor.Cancel()
		signal.Stop(sigCh)
	}()

	return runProcessBatch(context.Background(), cmd)
}
