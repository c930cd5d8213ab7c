package workflows

type DocumentExtractInput struct {
	Name        string
	DocumentDir string
	// PDFPath, when set, names the source PDF so the workflow can verify
	// that rasterization produced one image per page.
	PDFPath string
}

type DocumentExtractStatus struct {
	DocumentID  string            `json:"document_id"`
	CurrentStep string            `json:"current_step"`
	Status      string            `json:"status"`
	FailReason  string            `json:"fail_reason,omitempty"`
	Steps       map[string]string `json:"steps"`
	PagesTotal  int               `json:"pages_total"`
	PagesDone   int               `json:"pages_done"`
	FailedPages []int             `json:"failed_pages,omitempty"`
	Records     int               `json:"records"`
}

type FragmentExtractInput struct {
	DocumentID string
	Name       string
}
