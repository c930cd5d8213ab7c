package activities

import (
	"spallflow/internal/models"
)

type ListPageImagesInput struct {
	DocumentDir string
}

type ListPageImagesOutput struct {
	Paths []string
}

type ComputeDocumentIDInput struct {
	Paths []string
}

type ComputeDocumentIDOutput struct {
	DocumentID string
}

type CountPDFPagesInput struct {
	PDFPath string
}

type CountPDFPagesOutput struct {
	Pages int
}

type UpsertDocumentInput struct {
	Document models.Document
}

type UpdateDocumentStatusInput struct {
	DocumentID string
	Status     string
	FailReason string
}

type IndexPageInput struct {
	DocumentID string
	Path       string
	PageNumber int
}

type IndexPageOutput struct {
	PageNumber   int
	ElementCount int
	Tables       int
	Figures      int
	TextSections int
	Error        string
	ProviderName string
	Model        string
}

type FlattenFragmentsInput struct {
	DocumentID string
	Name       string
}

type FlattenFragmentsOutput struct {
	Path      string
	Topics    int
	Fragments int
}

type ExtractRecordsInput struct {
	DocumentID string
	Name       string
}

type ExtractRecordsOutput struct {
	Records      int
	Chunks       int
	ProviderName string
	Model        string
}

type ExportRecordsInput struct {
	DocumentID string
	Name       string
}

type ExportRecordsOutput struct {
	CSVPath   string
	XLSXPath  string
	JSONLPath string
	Records   int
}

type WriteRunManifestInput struct {
	Name     string
	Manifest models.RunManifest
}

type WriteRunManifestOutput struct {
	Path string
}

type LogModelCallInput struct {
	Operation    string
	DocumentID   string
	Stage        string
	ProviderName string
	Model        string
	Status       string
	ErrorType    string
}
