package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage documents in the extraction index",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents and their states",
	RunE:  runFilesList,
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a document from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesDelete,
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFilesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	docs, err := app.engine.ListFiles(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents indexed.")
		return nil
	}
	for _, doc := range docs {
		fmt.Printf("%-12s %-40s %s\n", doc.State, doc.DisplayName, doc.Name)
	}
	return nil
}

func runFilesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.engine.DeleteFile(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
