package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ListPageImagesActivity)
	w.RegisterActivity(a.ComputeDocumentIDActivity)
	w.RegisterActivity(a.CountPDFPagesActivity)
	w.RegisterActivity(a.UpsertDocumentActivity)
	w.RegisterActivity(a.UpdateDocumentStatusActivity)
	w.RegisterActivity(a.IndexPageActivity)
	w.RegisterActivity(a.FlattenFragmentsActivity)
	w.RegisterActivity(a.ExtractRecordsActivity)
	w.RegisterActivity(a.ExportRecordsActivity)
	w.RegisterActivity(a.WriteRunManifestActivity)
	w.RegisterActivity(a.LogModelCallActivity)
}
