package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spallflow/internal/config"
	"spallflow/internal/fragments"
	"spallflow/internal/pipeline"
	"spallflow/internal/providers"
	"spallflow/internal/util"
)

func setup() (config.Config, *providers.Manager, *slog.Logger, error) {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	manager, err := providers.NewManager(cfg)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, manager, log, nil
}

func documentName(name, dir string) string {
	if name != "" {
		return name
	}
	return filepath.Base(filepath.Clean(dir))
}

// resolvePagesDir accepts either a path to a page-image directory or a bare
// document name under the configured input root.
func resolvePagesDir(cfg config.Config, arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	return filepath.Join(cfg.DataInRoot, arg)
}

func runCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "run <pages-dir>",
		Short: "Run the full pipeline in process: index, extract and export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, manager, log, err := setup()
			if err != nil {
				return err
			}
			runner, err := pipeline.NewRunner(cfg, manager, log)
			if err != nil {
				return err
			}
			pagesDir := resolvePagesDir(cfg, args[0])
			manifest, err := runner.Run(cmd.Context(), documentName(name, pagesDir), pagesDir)
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(manifest, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "document name (default: pages directory basename)")
	return cmd
}

func indexCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "index <pages-dir>",
		Short: "Run only the VLM stage and write page structures and fragments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, manager, log, err := setup()
			if err != nil {
				return err
			}
			runner, err := pipeline.NewRunner(cfg, manager, log)
			if err != nil {
				return err
			}
			pagesDir := resolvePagesDir(cfg, args[0])
			pages, err := pipeline.LoadPageImages(pagesDir)
			if err != nil {
				return err
			}
			structures := runner.Index(cmd.Context(), pages)
			outDir := filepath.Join(cfg.DataOutRoot, documentName(name, pagesDir))
			if err := util.WriteJSONAtomic(filepath.Join(outDir, "page_structures.json"), structures); err != nil {
				return err
			}
			set := fragments.Flatten(structures)
			if err := util.WriteJSONAtomic(filepath.Join(outDir, "intermediate_fragments.json"), set); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d pages into %s\n", len(structures), outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "document name (default: pages directory basename)")
	return cmd
}

func extractCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "extract <fragments.json>",
		Short: "Run only the LLM stage over a saved fragment set and export tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, manager, log, err := setup()
			if err != nil {
				return err
			}
			runner, err := pipeline.NewRunner(cfg, manager, log)
			if err != nil {
				return err
			}
			var set fragments.Set
			if err := util.ReadJSON(args[0], &set); err != nil {
				return err
			}
			records := runner.Extract(cmd.Context(), set)
			outDir := filepath.Join(cfg.DataOutRoot, documentName(name, filepath.Dir(args[0])))
			if err := runner.Export(records, outDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d records into %s\n", len(records), outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "document name (default: fragments file directory basename)")
	return cmd
}
