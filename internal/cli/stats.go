package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate usage statistics",
		RunE:  runStats,
	}

	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	outputFormat, _ := cmd.Flags().GetString("output")

	a, err := newApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.documents.Stats(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(map[string]interface{}{
			"documents":          stats.Documents,
			"chunks":             stats.Chunks,
			"characters":         stats.Characters,
			"chunks_per_doc_avg": stats.ChunksPerDocAvg,
		})
	}

	fmt.Printf("Documents:          %d (limit %d)\n", stats.Documents, a.cfg.MaxDocuments)
	fmt.Printf("Chunks:             %d\n", stats.Chunks)
	fmt.Printf("Characters:         %d\n", stats.Characters)
	fmt.Printf("Avg chunks per doc: %.1f\n", stats.ChunksPerDocAvg)
	return nil
}
