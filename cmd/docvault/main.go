package main

import (
	"fmt"
	"os"

	"github.com/docvault-io/docvault/internal/cli"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "docvault",
		Short: "DocVault - question answering over your PDF documents",
		Long: `DocVault ingests PDF documents into a vector index and answers
questions about them.

Environment variables:
  DOCVAULT_DATABASE_URL     PostgreSQL connection URL (required)
  DOCVAULT_OPENAI_API_KEY   OpenAI API key (required for ingest and ask)`,
		Version: version,
	}

	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.AskCmd())
	rootCmd.AddCommand(cli.DocsCmd())
	rootCmd.AddCommand(cli.SummaryCmd())
	rootCmd.AddCommand(cli.CompareCmd())
	rootCmd.AddCommand(cli.ClassifyCmd())
	rootCmd.AddCommand(cli.StatsCmd())
	rootCmd.AddCommand(cli.WatchCmd())
	rootCmd.AddCommand(cli.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
