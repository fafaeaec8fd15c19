package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var cleanYes bool

var duplicatesCmd = &cobra.Command{
	Use:     "duplicates",
	Aliases: []string{"dup"},
	Short:   "Find and remove duplicate documents",
}

var duplicatesScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library for duplicates",
	Long: `Runs the four detection tiers over the whole library and prints the
report. Nothing is deleted.`,
	RunE: runDuplicatesScan,
}

var duplicatesCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete duplicate copies, keeping the oldest of each group",
	RunE:  runDuplicatesClean,
}

func init() {
	duplicatesCleanCmd.Flags().BoolVarP(&cleanYes, "yes", "y", false, "skip the confirmation prompt")

	duplicatesCmd.AddCommand(duplicatesScanCmd)
	duplicatesCmd.AddCommand(duplicatesCleanCmd)
	rootCmd.AddCommand(duplicatesCmd)
}

func runDuplicatesScan(cmd *cobra.Command, _ []string) error {
	if duplicateScanner == nil {
		return errors.New("duplicate scanner not configured")
	}

	result, err := duplicateScanner.Scan(context.Background())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	cmd.Println(result.Report)
	if result.CandidateCount() > 0 {
		cmd.Printf("\n%d copies can be removed with `dockeep duplicates clean`.\n",
			result.CandidateCount())
	}
	return nil
}

func runDuplicatesClean(cmd *cobra.Command, _ []string) error {
	if duplicateScanner == nil {
		return errors.New("duplicate scanner not configured")
	}

	ctx := context.Background()

	if !cleanYes {
		result, err := duplicateScanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if result.CandidateCount() == 0 {
			cmd.Println("No duplicates found.")
			return nil
		}

		cmd.Println(result.Report)
		cmd.Printf("\nDelete %d copies? [y/N] ", result.CandidateCount())
		if !confirm(cmd) {
			cmd.Println("Aborted.")
			return nil
		}
	}

	deleted, err := duplicateScanner.Clean(ctx)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	cmd.Printf("Deleted %d documents.\n", deleted)
	return nil
}

// confirm reads a y/N answer from stdin.
func confirm(cmd *cobra.Command) bool {
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
