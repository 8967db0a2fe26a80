package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// DocsCmd returns the docs command
func DocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage ingested documents",
		Long:  "List, inspect, and delete documents in the vault",
	}

	cmd.AddCommand(DocsListCmd())
	cmd.AddCommand(DocsInfoCmd())
	cmd.AddCommand(DocsDeleteCmd())

	return cmd
}

func DocsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all ingested documents",
		RunE:  runDocsList,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runDocsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ids, err := a.documents.List(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(map[string]interface{}{"documents": ids})
	}

	if len(ids) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func DocsInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <document-id>",
		Short: "Show statistics for one document",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsInfo,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runDocsInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	info, err := a.documents.Info(ctx, args[0])
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(map[string]interface{}{
			"document_id": info.DocumentID,
			"chunks":      info.Chunks,
			"pages":       info.Pages,
			"characters":  info.Characters,
			"created_at":  info.CreatedAt,
		})
	}

	fmt.Printf("Document:   %s\n", info.DocumentID)
	fmt.Printf("Chunks:     %d\n", info.Chunks)
	fmt.Printf("Pages:      %d\n", info.Pages)
	fmt.Printf("Characters: %d\n", info.Characters)
	fmt.Printf("Ingested:   %s\n", info.CreatedAt.Format(time.RFC3339))
	return nil
}

func DocsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		RunE:  runDocsDelete,
	}
}

func runDocsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.documents.Delete(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %s (%d chunks removed)\n", args[0], removed)
	return nil
}
