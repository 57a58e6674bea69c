package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/lead-search/internal/export"
	"github.com/jonathan/lead-search/internal/extraction"
)

var (
	searchMaxLeads      int
	searchMinConfidence float64
	searchMaxFiles      int
	searchOutput        string
	searchFormat        string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Extract leads from the indexed documents",
	Long:  `Run one lead extraction over the synced documents and print the results, optionally writing them to a file in CSV, JSON, or XLSX format.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchMaxLeads, "max-leads", 50, "Maximum number of leads to return")
	searchCmd.Flags().Float64Var(&searchMinConfidence, "min-confidence", 0.6, "Drop leads below this confidence")
	searchCmd.Flags().IntVar(&searchMaxFiles, "max-files", 10, "Maximum number of documents to read")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "Write results to this file instead of stdout")
	searchCmd.Flags().StringVar(&searchFormat, "format", "csv", "Output file format: csv, json, or xlsx")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	query := strings.Join(args, " ")

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	docs, err := app.engine.ListFiles(ctx)
	if err != nil {
		return err
	}

	result, err := app.extractor.ExtractLeads(ctx, docs, query, extraction.Options{
		MaxLeads:      searchMaxLeads,
		MinConfidence: searchMinConfidence,
		MaxFiles:      searchMaxFiles,
	})
	if err != nil {
		return err
	}

	if searchOutput != "" {
		data, err := export.Render(result.Leads, export.Format(searchFormat))
		if err != nil {
			return err
		}
		if err := os.WriteFile(searchOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Wrote %d lead(s) to %s\n", len(result.Leads), searchOutput)
		return nil
	}

	if len(result.Leads) == 0 {
		fmt.Println("No leads found.")
		return nil
	}
	fmt.Printf("Found %d lead(s), average confidence %.2f\n\n", len(result.Leads), result.AverageConfidence)
	for _, lead := range result.Leads {
		fmt.Printf("%s (confidence %.2f)\n", lead.Company.Name, lead.Confidence)
		if lead.Company.Industry != "" {
			fmt.Printf("  industry: %s\n", lead.Company.Industry)
		}
		for _, contact := range lead.Contacts {
			line := "  contact: " + contact.Name
			if contact.Title != "" {
				line += ", " + contact.Title
			}
			if contact.Email != "" {
				line += ", " + contact.Email
			}
			fmt.Println(line)
		}
		fmt.Printf("  source: %s\n\n", lead.Source)
	}
	return nil
}
