package activities

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"spallflow/internal/config"
	"spallflow/internal/export"
	"spallflow/internal/extract"
	"spallflow/internal/fragments"
	"spallflow/internal/indexer"
	"spallflow/internal/pipeline"
	"spallflow/internal/providers"
	"spallflow/internal/schema"
	"spallflow/internal/storage"
	"spallflow/internal/util"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

type Activities struct {
	cfg          config.Config
	documentRepo *storage.DocumentRepo
	pageRepo     *storage.PageRepo
	recordRepo   *storage.RecordRepo
	auditRepo    *storage.ModelAuditRepo
	providers    *providers.Manager
	validator    *schema.Validator
	log          *slog.Logger
}

func New(cfg config.Config, db *storage.DB, log *slog.Logger) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, err
	}
	return &Activities{
		cfg:          cfg,
		documentRepo: storage.NewDocumentRepo(db),
		pageRepo:     storage.NewPageRepo(db),
		recordRepo:   storage.NewRecordRepo(db),
		auditRepo:    storage.NewModelAuditRepo(db),
		providers:    pm,
		validator:    validator,
		log:          log,
	}, nil
}

// ListPageImagesActivity returns the ordered page image paths of a document
// directory. Paths instead of raster bytes keep workflow payloads small.
func (a *Activities) ListPageImagesActivity(ctx context.Context, in ListPageImagesInput) (ListPageImagesOutput, error) {
	_ = ctx
	entries, err := os.ReadDir(in.DocumentDir)
	if err != nil {
		return ListPageImagesOutput{}, fmt.Errorf("read document dir: %w", err)
	}
	names := pipeline.OrderedPageNames(entries)
	if len(names) == 0 {
		return ListPageImagesOutput{}, util.ErrNoPageImages
	}
	out := ListPageImagesOutput{Paths: make([]string, 0, len(names))}
	for _, name := range names {
		out.Paths = append(out.Paths, util.SafeJoin(in.DocumentDir, name))
	}
	return out, nil
}

// ComputeDocumentIDActivity derives a stable document identity from the page
// image contents, so re-running the same directory reuses the same rows.
func (a *Activities) ComputeDocumentIDActivity(ctx context.Context, in ComputeDocumentIDInput) (ComputeDocumentIDOutput, error) {
	_ = ctx
	readers := make([]io.Reader, 0, len(in.Paths))
	closers := make([]*os.File, 0, len(in.Paths))
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()
	for _, path := range in.Paths {
		f, err := os.Open(path)
		if err != nil {
			return ComputeDocumentIDOutput{}, fmt.Errorf("open page for hash: %w", err)
		}
		closers = append(closers, f)
		readers = append(readers, f)
	}
	id, err := util.SHA256HexFromReader(io.MultiReader(readers...))
	if err != nil {
		return ComputeDocumentIDOutput{}, fmt.Errorf("hash pages: %w", err)
	}
	return ComputeDocumentIDOutput{DocumentID: id}, nil
}

// CountPDFPagesActivity reports the page count of the source PDF so the
// workflow can flag a rasterization that dropped pages.
func (a *Activities) CountPDFPagesActivity(ctx context.Context, in CountPDFPagesInput) (CountPDFPagesOutput, error) {
	_ = ctx
	f, r, err := pdf.Open(in.PDFPath)
	if err != nil {
		return CountPDFPagesOutput{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return CountPDFPagesOutput{Pages: r.NumPage()}, nil
}

func (a *Activities) UpsertDocumentActivity(ctx context.Context, in UpsertDocumentInput) error {
	return a.documentRepo.UpsertDocument(ctx, in.Document)
}

func (a *Activities) UpdateDocumentStatusActivity(ctx context.Context, in UpdateDocumentStatusInput) error {
	return a.documentRepo.UpdateDocumentStatus(ctx, in.DocumentID, in.Status, in.FailReason)
}

// IndexPageActivity runs the VLM over a single page and persists the result.
// A page-level model failure comes back in Output.Error, not as an activity
// error; activity errors are reserved for IO and storage problems.
func (a *Activities) IndexPageActivity(ctx context.Context, in IndexPageInput) (IndexPageOutput, error) {
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return IndexPageOutput{}, fmt.Errorf("read page image: %w", err)
	}
	img := indexer.PageImage{
		Number: in.PageNumber,
		MIME:   mimeForPath(in.Path),
		Data:   data,
	}
	page := indexer.New(a.providers.VLM(), a.log).ExtractPage(ctx, img)
	if err := a.pageRepo.UpsertPage(ctx, in.DocumentID, page); err != nil {
		return IndexPageOutput{}, err
	}
	ref := a.providers.VLMRef()
	return IndexPageOutput{
		PageNumber:   page.PageNumber,
		ElementCount: page.ElementCount,
		Tables:       len(page.Tables),
		Figures:      len(page.Figures),
		TextSections: len(page.TextSections),
		Error:        page.Error,
		ProviderName: ref.Name,
		Model:        ref.Raw,
	}, nil
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// FlattenFragmentsActivity regroups the stored page structures into the
// topic-keyed fragment set and writes it as an inspectable artifact.
func (a *Activities) FlattenFragmentsActivity(ctx context.Context, in FlattenFragmentsInput) (FlattenFragmentsOutput, error) {
	pages, err := a.pageRepo.ListPages(ctx, in.DocumentID)
	if err != nil {
		return FlattenFragmentsOutput{}, err
	}
	set := fragments.Flatten(pages)
	path := filepath.Join(a.cfg.DataOutRoot, in.Name, "intermediate_fragments.json")
	if err := util.WriteJSONAtomic(path, set); err != nil {
		return FlattenFragmentsOutput{}, err
	}
	out := FlattenFragmentsOutput{Path: path, Topics: len(set)}
	for _, frags := range set {
		out.Fragments += len(frags)
	}
	return out, nil
}

// ExtractRecordsActivity runs the LLM stage over the stored fragment set and
// replaces the document's record set with the result.
func (a *Activities) ExtractRecordsActivity(ctx context.Context, in ExtractRecordsInput) (ExtractRecordsOutput, error) {
	path := filepath.Join(a.cfg.DataOutRoot, in.Name, "intermediate_fragments.json")
	var set fragments.Set
	if err := util.ReadJSON(path, &set); err != nil {
		return ExtractRecordsOutput{}, err
	}
	engine := extract.NewEngine(a.providers.LLM(), a.validator, a.cfg.ChunkTokenBudget, a.cfg.LLMMaxTokens, a.log)
	records := engine.Extract(ctx, set)
	if err := a.recordRepo.ReplaceRecords(ctx, in.DocumentID, records); err != nil {
		return ExtractRecordsOutput{}, err
	}
	ref := a.providers.LLMRef()
	return ExtractRecordsOutput{
		Records:      len(records),
		Chunks:       len(fragments.Chunk(set, a.cfg.ChunkTokenBudget)),
		ProviderName: ref.Name,
		Model:        ref.Raw,
	}, nil
}

func (a *Activities) ExportRecordsActivity(ctx context.Context, in ExportRecordsInput) (ExportRecordsOutput, error) {
	records, err := a.recordRepo.ListRecords(ctx, in.DocumentID)
	if err != nil {
		return ExportRecordsOutput{}, err
	}
	outDir := filepath.Join(a.cfg.DataOutRoot, in.Name)
	out := ExportRecordsOutput{
		CSVPath:   filepath.Join(outDir, "extracted_database.csv"),
		XLSXPath:  filepath.Join(outDir, "extracted_database.xlsx"),
		JSONLPath: filepath.Join(outDir, "extracted_database.jsonl"),
		Records:   len(records),
	}
	csvBytes, err := export.CSV(records)
	if err != nil {
		return ExportRecordsOutput{}, err
	}
	if err := util.WriteBytesAtomic(out.CSVPath, csvBytes); err != nil {
		return ExportRecordsOutput{}, err
	}
	xlsxBytes, err := export.XLSX(records)
	if err != nil {
		return ExportRecordsOutput{}, err
	}
	if err := util.WriteBytesAtomic(out.XLSXPath, xlsxBytes); err != nil {
		return ExportRecordsOutput{}, err
	}
	jsonlBytes, err := export.JSONL(records)
	if err != nil {
		return ExportRecordsOutput{}, err
	}
	if err := util.WriteBytesAtomic(out.JSONLPath, jsonlBytes); err != nil {
		return ExportRecordsOutput{}, err
	}
	return out, nil
}

func (a *Activities) WriteRunManifestActivity(ctx context.Context, in WriteRunManifestInput) (WriteRunManifestOutput, error) {
	_ = ctx
	path := filepath.Join(a.cfg.DataOutRoot, in.Name, "run_manifest.json")
	if err := util.WriteJSONAtomic(path, in.Manifest); err != nil {
		return WriteRunManifestOutput{}, err
	}
	return WriteRunManifestOutput{Path: path}, nil
}

func (a *Activities) LogModelCallActivity(ctx context.Context, in LogModelCallInput) error {
	return a.auditRepo.Insert(ctx, storage.ModelCallRecord{
		CallID:       uuid.NewString(),
		Operation:    in.Operation,
		DocumentID:   in.DocumentID,
		Stage:        in.Stage,
		ProviderName: in.ProviderName,
		Model:        in.Model,
		Status:       in.Status,
		ErrorType:    in.ErrorType,
	})
}
