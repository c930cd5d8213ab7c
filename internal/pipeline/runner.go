package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"spallflow/internal/config"
	"spallflow/internal/export"
	"spallflow/internal/extract"
	"spallflow/internal/fragments"
	"spallflow/internal/indexer"
	"spallflow/internal/models"
	"spallflow/internal/providers"
	"spallflow/internal/schema"
	"spallflow/internal/util"
)

// Runner executes the pipeline in process, without Temporal or Postgres.
// It is what the CLI uses for single-document runs; the worker path goes
// through workflows and activities instead.
type Runner struct {
	cfg       config.Config
	manager   *providers.Manager
	validator *schema.Validator
	log       *slog.Logger
}

func NewRunner(cfg config.Config, manager *providers.Manager, log *slog.Logger) (*Runner, error) {
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, manager: manager, validator: validator, log: log}, nil
}

var pageNumberPattern = regexp.MustCompile(`(\d+)`)

var imageMIMEs = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// OrderedPageNames filters directory entries down to page images and orders
// them by the first integer in their name when present, then by name. The
// position in the result is the page's 1-based number.
func OrderedPageNames(entries []os.DirEntry) []string {
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageMIMEs[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ni, iok := firstNumber(names[i])
		nj, jok := firstNumber(names[j])
		if iok && jok && ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})
	return names
}

// LoadPageImages reads the raster pages of one document from a directory,
// numbered 1..N in OrderedPageNames order.
func LoadPageImages(dir string) ([]indexer.PageImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read page dir: %w", err)
	}
	names := OrderedPageNames(entries)
	if len(names) == 0 {
		return nil, util.ErrNoPageImages
	}

	pages := make([]indexer.PageImage, 0, len(names))
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read page image %s: %w", name, err)
		}
		pages = append(pages, indexer.PageImage{
			Number: i + 1,
			MIME:   imageMIMEs[strings.ToLower(filepath.Ext(name))],
			Data:   data,
		})
	}
	return pages, nil
}

func firstNumber(name string) (int, bool) {
	m := pageNumberPattern.FindString(name)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

// Index runs the VLM stage over every page in order. Page failures are
// recorded inside the returned structures, never returned as errors.
func (r *Runner) Index(ctx context.Context, pages []indexer.PageImage) []indexer.PageStructure {
	ex := indexer.New(r.manager.VLM(), r.log)
	out := make([]indexer.PageStructure, 0, len(pages))
	for _, img := range pages {
		r.log.Info("indexing page", "page", img.Number, "of", len(pages))
		out = append(out, ex.ExtractPage(ctx, img))
	}
	return out
}

// Extract runs the LLM stage over a fragment set.
func (r *Runner) Extract(ctx context.Context, set fragments.Set) []schema.Record {
	engine := extract.NewEngine(r.manager.LLM(), r.validator, r.cfg.ChunkTokenBudget, r.cfg.LLMMaxTokens, r.log)
	return engine.Extract(ctx, set)
}

// Run executes the whole pipeline for one document directory and writes all
// artifacts under the output root: page structures, the intermediate
// fragment set, the exported tables and a run manifest.
func (r *Runner) Run(ctx context.Context, name, dir string) (models.RunManifest, error) {
	started := time.Now().UTC()
	outDir := filepath.Join(r.cfg.DataOutRoot, name)

	pages, err := LoadPageImages(dir)
	if err != nil {
		return models.RunManifest{}, err
	}

	structures := r.Index(ctx, pages)
	if err := util.WriteJSONAtomic(filepath.Join(outDir, "page_structures.json"), structures); err != nil {
		return models.RunManifest{}, err
	}

	set := fragments.Flatten(structures)
	if err := util.WriteJSONAtomic(filepath.Join(outDir, "intermediate_fragments.json"), set); err != nil {
		return models.RunManifest{}, err
	}

	records := r.Extract(ctx, set)
	if err := r.Export(records, outDir); err != nil {
		return models.RunManifest{}, err
	}

	manifest := buildManifest(name, structures, set, records, r.cfg.ChunkTokenBudget)
	manifest.DocumentID = util.SHA256Hex([]byte(dir))
	manifest.StartedAt = started
	manifest.FinishedAt = time.Now().UTC()
	manifest.VLMProvider = r.manager.VLMRef().Raw
	manifest.LLMProvider = r.manager.LLMRef().Raw
	manifest.OutputPrefix = outDir
	if err := util.WriteJSONAtomic(filepath.Join(outDir, "run_manifest.json"), manifest); err != nil {
		return models.RunManifest{}, err
	}
	r.log.Info("run complete", "document", name, "pages", manifest.Pages, "records", manifest.Records)
	return manifest, nil
}

// Export writes the record set in every supported tabular format.
func (r *Runner) Export(records []schema.Record, outDir string) error {
	csvBytes, err := export.CSV(records)
	if err != nil {
		return err
	}
	if err := util.WriteBytesAtomic(filepath.Join(outDir, "extracted_database.csv"), csvBytes); err != nil {
		return err
	}
	xlsxBytes, err := export.XLSX(records)
	if err != nil {
		return err
	}
	if err := util.WriteBytesAtomic(filepath.Join(outDir, "extracted_database.xlsx"), xlsxBytes); err != nil {
		return err
	}
	jsonlBytes, err := export.JSONL(records)
	if err != nil {
		return err
	}
	return util.WriteBytesAtomic(filepath.Join(outDir, "extracted_database.jsonl"), jsonlBytes)
}

func buildManifest(name string, structures []indexer.PageStructure, set fragments.Set, records []schema.Record, budget int) models.RunManifest {
	m := models.RunManifest{
		Name:    name,
		Pages:   len(structures),
		Chunks:  len(fragments.Chunk(set, budget)),
		Records: len(records),
	}
	for _, p := range structures {
		m.Elements += p.ElementCount
		if p.Error != "" {
			m.FailedPages = append(m.FailedPages, p.PageNumber)
		}
	}
	for _, frags := range set {
		m.Fragments += len(frags)
	}
	return m
}
