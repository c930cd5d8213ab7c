package workflows

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"spallflow/internal/activities"
	"spallflow/internal/models"
	"spallflow/internal/providers"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetDocumentStatus = "GetDocumentStatus"
)

// DocumentExtractWorkflow runs the full pipeline for one document: index
// every page with the VLM, regroup the results into topic fragments, extract
// validated records with the LLM and export the tables. Pages and chunks are
// processed strictly one at a time; a failed page reduces the output, only a
// setup failure fails the workflow.
func DocumentExtractWorkflow(ctx workflow.Context, input DocumentExtractInput) (string, error) {
	status := DocumentExtractStatus{
		CurrentStep: "init",
		Status:      "processing",
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetDocumentStatus, func() (DocumentExtractStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	status.CurrentStep = "list_pages"
	status.Steps[status.CurrentStep] = "processing"
	var listOut activities.ListPageImagesOutput
	if err := workflow.ExecuteActivity(ctx, "ListPageImagesActivity", activities.ListPageImagesInput{DocumentDir: input.DocumentDir}).Get(ctx, &listOut); err != nil {
		if isNoPagesError(err) {
			status.Status = models.StatusFailed
			status.FailReason = "no page images found"
			status.Steps[status.CurrentStep] = "failed"
			return status.Status, nil
		}
		return "", err
	}
	status.PagesTotal = len(listOut.Paths)
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "compute_document_id"
	status.Steps[status.CurrentStep] = "processing"
	var idOut activities.ComputeDocumentIDOutput
	if err := workflow.ExecuteActivity(ctx, "ComputeDocumentIDActivity", activities.ComputeDocumentIDInput{Paths: listOut.Paths}).Get(ctx, &idOut); err != nil {
		return "", err
	}
	status.DocumentID = idOut.DocumentID
	status.Steps[status.CurrentStep] = "done"

	if strings.TrimSpace(input.PDFPath) != "" {
		var countOut activities.CountPDFPagesOutput
		if err := workflow.ExecuteActivity(ctx, "CountPDFPagesActivity", activities.CountPDFPagesInput{PDFPath: input.PDFPath}).Get(ctx, &countOut); err != nil {
			logger.Warn("pdf page count unavailable", "err", err)
		} else if countOut.Pages != len(listOut.Paths) {
			logger.Warn("page image count does not match source pdf",
				"images", len(listOut.Paths), "pdf_pages", countOut.Pages)
		}
	}

	_ = workflow.ExecuteActivity(ctx, "UpsertDocumentActivity", activities.UpsertDocumentInput{Document: models.Document{
		DocumentID: idOut.DocumentID,
		Name:       input.Name,
		SourceDir:  input.DocumentDir,
		PageCount:  len(listOut.Paths),
		Status:     models.StatusIndexing,
	}}).Get(ctx, nil)

	status.CurrentStep = "index_pages"
	status.Steps[status.CurrentStep] = "processing"
	elements := 0
	for i, path := range listOut.Paths {
		var pageOut activities.IndexPageOutput
		if err := workflow.ExecuteActivity(ctx, "IndexPageActivity", activities.IndexPageInput{
			DocumentID: idOut.DocumentID,
			Path:       path,
			PageNumber: i + 1,
		}).Get(ctx, &pageOut); err != nil {
			// Storage or IO trouble on one page; the page stays absent.
			status.FailedPages = append(status.FailedPages, i+1)
			logModelCall(ctx, idOut.DocumentID, "index", "identify_elements", "", "", "failed", err)
			continue
		}
		status.PagesDone++
		if pageOut.Error != "" {
			status.FailedPages = append(status.FailedPages, pageOut.PageNumber)
			logModelCall(ctx, idOut.DocumentID, "index", "identify_elements", pageOut.ProviderName, pageOut.Model, "failed", errors.New(pageOut.Error))
		} else {
			elements += pageOut.ElementCount
			logModelCall(ctx, idOut.DocumentID, "index", "identify_elements", pageOut.ProviderName, pageOut.Model, "ok", nil)
		}
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "flatten_fragments"
	status.Steps[status.CurrentStep] = "processing"
	var flatOut activities.FlattenFragmentsOutput
	if err := workflow.ExecuteActivity(ctx, "FlattenFragmentsActivity", activities.FlattenFragmentsInput{DocumentID: idOut.DocumentID, Name: input.Name}).Get(ctx, &flatOut); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"
	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: idOut.DocumentID, Status: models.StatusIndexed}).Get(ctx, nil)

	status.CurrentStep = "extract_records"
	status.Steps[status.CurrentStep] = "processing"
	var extractOut activities.ExtractRecordsOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractRecordsActivity", activities.ExtractRecordsInput{DocumentID: idOut.DocumentID, Name: input.Name}).Get(ctx, &extractOut); err != nil {
		logModelCall(ctx, idOut.DocumentID, "extract", "extract_records", "", "", "failed", err)
		return "", err
	}
	status.Records = extractOut.Records
	status.Steps[status.CurrentStep] = "done"
	logModelCall(ctx, idOut.DocumentID, "extract", "extract_records", extractOut.ProviderName, extractOut.Model, "ok", nil)
	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: idOut.DocumentID, Status: models.StatusExtracted}).Get(ctx, nil)

	status.CurrentStep = "export"
	status.Steps[status.CurrentStep] = "processing"
	var exportOut activities.ExportRecordsOutput
	if err := workflow.ExecuteActivity(ctx, "ExportRecordsActivity", activities.ExportRecordsInput{DocumentID: idOut.DocumentID, Name: input.Name}).Get(ctx, &exportOut); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "write_manifest"
	status.Steps[status.CurrentStep] = "processing"
	manifest := models.RunManifest{
		DocumentID:   idOut.DocumentID,
		Name:         input.Name,
		Pages:        status.PagesTotal,
		FailedPages:  status.FailedPages,
		Elements:     elements,
		Fragments:    flatOut.Fragments,
		Chunks:       extractOut.Chunks,
		Records:      extractOut.Records,
		FinishedAt:   workflow.Now(ctx),
		LLMProvider:  extractOut.Model,
		OutputPrefix: filepath.Dir(exportOut.CSVPath),
	}
	if err := workflow.ExecuteActivity(ctx, "WriteRunManifestActivity", activities.WriteRunManifestInput{Name: input.Name, Manifest: manifest}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: idOut.DocumentID, Status: models.StatusExported}).Get(ctx, nil)
	status.CurrentStep = "done"
	status.Status = models.StatusExported
	return status.Status, nil
}

// FragmentExtractWorkflow reruns the LLM stage from already-indexed pages,
// for prompt or schema iterations that do not need the VLM pass repeated.
func FragmentExtractWorkflow(ctx workflow.Context, input FragmentExtractInput) (string, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    2,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var flatOut activities.FlattenFragmentsOutput
	if err := workflow.ExecuteActivity(ctx, "FlattenFragmentsActivity", activities.FlattenFragmentsInput{DocumentID: input.DocumentID, Name: input.Name}).Get(ctx, &flatOut); err != nil {
		return "", err
	}
	var extractOut activities.ExtractRecordsOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractRecordsActivity", activities.ExtractRecordsInput{DocumentID: input.DocumentID, Name: input.Name}).Get(ctx, &extractOut); err != nil {
		return "", err
	}
	var exportOut activities.ExportRecordsOutput
	if err := workflow.ExecuteActivity(ctx, "ExportRecordsActivity", activities.ExportRecordsInput{DocumentID: input.DocumentID, Name: input.Name}).Get(ctx, &exportOut); err != nil {
		return "", err
	}
	manifest := models.RunManifest{
		DocumentID:   input.DocumentID,
		Name:         input.Name,
		Fragments:    flatOut.Fragments,
		Chunks:       extractOut.Chunks,
		Records:      extractOut.Records,
		FinishedAt:   workflow.Now(ctx),
		LLMProvider:  extractOut.Model,
		OutputPrefix: filepath.Dir(exportOut.CSVPath),
	}
	if err := workflow.ExecuteActivity(ctx, "WriteRunManifestActivity", activities.WriteRunManifestInput{Name: input.Name, Manifest: manifest}).Get(ctx, nil); err != nil {
		return "", err
	}
	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{DocumentID: input.DocumentID, Status: models.StatusExported}).Get(ctx, nil)
	return models.StatusExported, nil
}

// logModelCall records one audit row, best effort.
func logModelCall(ctx workflow.Context, documentID, stage, operation, provider, model, result string, err error) {
	errType := ""
	if err != nil {
		errType = string(providers.ClassifyError(err))
	}
	_ = workflow.ExecuteActivity(ctx, "LogModelCallActivity", activities.LogModelCallInput{
		Operation:    operation,
		DocumentID:   documentID,
		Stage:        stage,
		ProviderName: provider,
		Model:        model,
		Status:       result,
		ErrorType:    errType,
	}).Get(ctx, nil)
}

func isNoPagesError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no page images")
}
