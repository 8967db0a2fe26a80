package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// SummaryCmd returns the summary command
func SummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <document-id>",
		Short: "Summarize one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireOpenAI(); err != nil {
				return err
			}

			out, err := a.answers.Summarize(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(out.Answer)
			return nil
		},
	}
}

// CompareCmd returns the compare command
func CompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <document-id> <document-id>",
		Short: "Compare two documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == args[1] {
				return fmt.Errorf("cannot compare a document with itself")
			}

			ctx := context.Background()

			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireOpenAI(); err != nil {
				return err
			}

			out, err := a.answers.Compare(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Println(out.Answer)
			return nil
		},
	}
}

// ClassifyCmd returns the classify command
func ClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <document-id>",
		Short: "Classify a document's chunks into topics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			a, err := newApp(ctx, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireOpenAI(); err != nil {
				return err
			}

			topics, err := a.answers.Classify(ctx, args[0])
			if err != nil {
				return err
			}
			for i, topic := range topics {
				fmt.Printf("Chunk %d: %s\n", i+1, topic)
			}
			return nil
		},
	}
}
