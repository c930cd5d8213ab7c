package main

import (
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"spallflow/internal/config"
	"spallflow/internal/workflows"
)

func dial() (client.Client, config.Config, error) {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	c, err := client.Dial(client.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("dial temporal: %w", err)
	}
	return c, cfg, nil
}

func startCmd() *cobra.Command {
	var name string
	var pdfPath string
	cmd := &cobra.Command{
		Use:   "start <pages-dir>",
		Short: "Start a document extraction workflow on the worker fleet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cfg, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			pagesDir := resolvePagesDir(cfg, args[0])
			docName := documentName(name, pagesDir)
			run, err := c.ExecuteWorkflow(cmd.Context(), client.StartWorkflowOptions{
				ID:        "document-" + docName,
				TaskQueue: cfg.TemporalTaskQueue,
			}, workflows.DocumentExtractWorkflow, workflows.DocumentExtractInput{
				Name:        docName,
				DocumentDir: pagesDir,
				PDFPath:     pdfPath,
			})
			if err != nil {
				return fmt.Errorf("start workflow: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started workflow %s run %s\n", run.GetID(), run.GetRunID())
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "document name (default: pages directory basename)")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "source PDF to cross-check the page count against")
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <workflow-id>",
		Short: "Query a running document workflow for its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := dial()
			if err != nil {
				return err
			}
			defer c.Close()

			resp, err := c.QueryWorkflow(cmd.Context(), args[0], "", workflows.QueryGetDocumentStatus)
			if err != nil {
				return fmt.Errorf("query workflow: %w", err)
			}
			var status workflows.DocumentExtractStatus
			if err := resp.Get(&status); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(status, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	return cmd
}
