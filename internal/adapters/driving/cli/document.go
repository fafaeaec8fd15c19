package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc"},
	Short:   "Manage library documents",
	Long:    `List, inspect, rename, delete, or reanalyse library documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentRenameCmd = &cobra.Command{
	Use:   "rename [doc-id] [new-name]",
	Short: "Rename a document",
	Long:  `Changes the document's display name and renames the stored file to match.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentRename,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes the record, its search index entries, and the stored file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentReanalyzeCmd = &cobra.Command{
	Use:   "reanalyze [doc-id]",
	Short: "Re-run analysis on a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReanalyze,
}

var documentPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove stored files no record references",
	RunE:  runDocumentPrune,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentRenameCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentReanalyzeCmd)
	documentCmd.AddCommand(documentPruneCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	docs, err := libraryService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("The library is empty.")
		return nil
	}

	for i := range docs {
		emoji := docs[i].Emoji
		if emoji == "" {
			emoji = " "
		}
		cmd.Printf("  %s %s  %s [%s]\n", emoji, docs[i].ID, docs[i].DisplayTitle(), docs[i].Status)
	}

	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	doc, err := libraryService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:      %s\n", doc.DisplayTitle())
	cmd.Printf("  Original:   %s\n", doc.OriginalName)
	cmd.Printf("  Status:     %s\n", doc.Status)
	cmd.Printf("  Category:   %s %s\n", doc.Emoji, doc.Category)
	if len(doc.Tags) > 0 {
		cmd.Printf("  Tags:       %s\n", strings.Join(doc.Tags, ", "))
	}
	cmd.Printf("  Confidence: %.2f\n", doc.Confidence)
	cmd.Printf("  Size:       %d bytes\n", doc.FileSize)
	cmd.Printf("  Stored at:  %s\n", doc.StoredPath)
	cmd.Printf("  Created:    %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	if doc.Hash != "" {
		cmd.Printf("  Hash:       %s\n", doc.Hash)
	}

	return nil
}

func runDocumentRename(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	docID, newName := args[0], args[1]
	if err := libraryService.Rename(context.Background(), docID, newName); err != nil {
		return fmt.Errorf("failed to rename document: %w", err)
	}

	cmd.Printf("Document %s renamed to %q.\n", docID, newName)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	if err := libraryService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentReanalyze(cmd *cobra.Command, args []string) error {
	if ingestor == nil {
		return errors.New("ingestion service not configured")
	}

	cmd.Printf("Reanalysing document %s...\n", args[0])
	if err := ingestor.Reanalyze(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to reanalyse document: %w", err)
	}

	cmd.Printf("Document %s reanalysed.\n", args[0])
	return nil
}

func runDocumentPrune(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	pruned, err := libraryService.PruneOrphans(context.Background())
	if err != nil {
		return fmt.Errorf("failed to prune orphans: %w", err)
	}

	cmd.Printf("Removed %d orphaned files.\n", pruned)
	return nil
}
