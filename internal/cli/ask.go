package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docvault-io/docvault/internal/domain"
	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the ingested documents",
		Long:  "Retrieve relevant chunks and generate an answer. Use --doc to restrict the search to one document.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(strings.Join(args, " "), documentID)
		},
	}

	cmd.Flags().StringVarP(&documentID, "doc", "d", "", "Restrict the answer to a single document")

	return cmd
}

func runAsk(question, documentID string) error {
	ctx := context.Background()

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireOpenAI(); err != nil {
		return err
	}

	// Asking about a document nobody ingested should say so, not search
	// the whole vault.
	if documentID != "" {
		if _, err := a.documents.Info(ctx, documentID); err != nil {
			if errors.Is(err, domain.ErrDocumentNotFound) {
				return fmt.Errorf("document %q is not in the vault", documentID)
			}
			return err
		}
	}

	out, err := a.answers.Ask(ctx, question, documentID)
	if err != nil {
		return err
	}

	fmt.Println(out.Answer)
	if out.Truncated {
		fmt.Println("\n(note: the retrieved context was truncated)")
	}
	return nil
}
