// Package cli implements the dockeep command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dockeep/dockeep/internal/core/ports/driving"
	"github.com/dockeep/dockeep/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired in by the application before Execute.
var (
	ingestor         driving.Ingestor
	retrieverService driving.Retriever
	duplicateScanner driving.DuplicateScanner
	libraryService   driving.Library
	shutdown         func()
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dockeep",
	Short: "Managed document library with semantic search",
	Long: `dockeep ingests documents into a managed library, analyses them with
text extraction and model-assisted categorisation, indexes them for
semantic search, and detects duplicates across the collection.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetServices injects the wired services. cleanup is invoked after the
// command finishes; it may be nil.
func SetServices(
	ing driving.Ingestor,
	ret driving.Retriever,
	dup driving.DuplicateScanner,
	lib driving.Library,
	cleanup func(),
) {
	ingestor = ing
	retrieverService = ret
	duplicateScanner = dup
	libraryService = lib
	shutdown = cleanup
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if shutdown != nil {
		shutdown()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
