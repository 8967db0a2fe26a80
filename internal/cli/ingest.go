package cli

import (
	"context"
	"fmt"

	"github.com/docvault-io/docvault/internal/pdf"
	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.pdf> [file.pdf...]",
		Short: "Ingest PDF documents into the vault",
		Long:  "Extract, chunk, and embed one or more PDF files so they become searchable",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := newApp(ctx, pdf.NewExtractor())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireOpenAI(); err != nil {
		return err
	}

	for _, path := range args {
		result, err := a.ingest.Ingest(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		fmt.Printf("Ingested %s: %d pages, %d chunks\n", result.DocumentID, result.Pages, result.Chunks)
	}

	return nil
}
