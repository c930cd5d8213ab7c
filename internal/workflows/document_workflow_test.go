package workflows

import (
	"context"
	"errors"
	"testing"

	"spallflow/internal/activities"
	"spallflow/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerDocumentActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "ListPageImagesActivity", func(context.Context, activities.ListPageImagesInput) (activities.ListPageImagesOutput, error) {
		return activities.ListPageImagesOutput{}, nil
	})
	registerActivityName(env, "ComputeDocumentIDActivity", func(context.Context, activities.ComputeDocumentIDInput) (activities.ComputeDocumentIDOutput, error) {
		return activities.ComputeDocumentIDOutput{}, nil
	})
	registerActivityName(env, "CountPDFPagesActivity", func(context.Context, activities.CountPDFPagesInput) (activities.CountPDFPagesOutput, error) {
		return activities.CountPDFPagesOutput{}, nil
	})
	registerActivityName(env, "UpsertDocumentActivity", func(context.Context, activities.UpsertDocumentInput) error { return nil })
	registerActivityName(env, "UpdateDocumentStatusActivity", func(context.Context, activities.UpdateDocumentStatusInput) error { return nil })
	registerActivityName(env, "IndexPageActivity", func(context.Context, activities.IndexPageInput) (activities.IndexPageOutput, error) {
		return activities.IndexPageOutput{}, nil
	})
	registerActivityName(env, "FlattenFragmentsActivity", func(context.Context, activities.FlattenFragmentsInput) (activities.FlattenFragmentsOutput, error) {
		return activities.FlattenFragmentsOutput{}, nil
	})
	registerActivityName(env, "ExtractRecordsActivity", func(context.Context, activities.ExtractRecordsInput) (activities.ExtractRecordsOutput, error) {
		return activities.ExtractRecordsOutput{}, nil
	})
	registerActivityName(env, "ExportRecordsActivity", func(context.Context, activities.ExportRecordsInput) (activities.ExportRecordsOutput, error) {
		return activities.ExportRecordsOutput{}, nil
	})
	registerActivityName(env, "WriteRunManifestActivity", func(context.Context, activities.WriteRunManifestInput) (activities.WriteRunManifestOutput, error) {
		return activities.WriteRunManifestOutput{}, nil
	})
	registerActivityName(env, "LogModelCallActivity", func(context.Context, activities.LogModelCallInput) error { return nil })
}

func TestDocumentExtractWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentExtractWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ListPageImagesActivity", mock.Anything, activities.ListPageImagesInput{DocumentDir: "/data/in/silver"}).
		Return(activities.ListPageImagesOutput{Paths: []string{"/data/in/silver/page_1.png", "/data/in/silver/page_2.png"}}, nil)
	env.OnActivity("ComputeDocumentIDActivity", mock.Anything, mock.Anything).
		Return(activities.ComputeDocumentIDOutput{DocumentID: "doc123"}, nil)
	env.OnActivity("UpsertDocumentActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("IndexPageActivity", mock.Anything, activities.IndexPageInput{DocumentID: "doc123", Path: "/data/in/silver/page_1.png", PageNumber: 1}).
		Return(activities.IndexPageOutput{PageNumber: 1, ElementCount: 3, Tables: 1, TextSections: 1, ProviderName: "mock", Model: "mock"}, nil)
	env.OnActivity("IndexPageActivity", mock.Anything, activities.IndexPageInput{DocumentID: "doc123", Path: "/data/in/silver/page_2.png", PageNumber: 2}).
		Return(activities.IndexPageOutput{PageNumber: 2, ElementCount: 1, TextSections: 1, ProviderName: "mock", Model: "mock"}, nil)
	env.OnActivity("FlattenFragmentsActivity", mock.Anything, mock.Anything).
		Return(activities.FlattenFragmentsOutput{Path: "/data/out/silver/intermediate_fragments.json", Topics: 20, Fragments: 3}, nil)
	env.OnActivity("ExtractRecordsActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractRecordsOutput{Records: 2, Chunks: 1, ProviderName: "mock", Model: "mock"}, nil)
	env.OnActivity("ExportRecordsActivity", mock.Anything, mock.Anything).
		Return(activities.ExportRecordsOutput{CSVPath: "/data/out/silver/extracted_database.csv", Records: 2}, nil)
	env.OnActivity("WriteRunManifestActivity", mock.Anything, mock.Anything).
		Return(activities.WriteRunManifestOutput{Path: "/data/out/silver/run_manifest.json"}, nil)
	env.OnActivity("LogModelCallActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentExtractWorkflow, DocumentExtractInput{Name: "silver", DocumentDir: "/data/in/silver"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.StatusExported, out)

	qr, err := env.QueryWorkflow(QueryGetDocumentStatus)
	require.NoError(t, err)
	var status DocumentExtractStatus
	require.NoError(t, qr.Get(&status))
	require.Equal(t, 2, status.PagesTotal)
	require.Equal(t, 2, status.PagesDone)
	require.Equal(t, 2, status.Records)
	require.Empty(t, status.FailedPages)
}

func TestDocumentExtractWorkflowNoPagesFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentExtractWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ListPageImagesActivity", mock.Anything, mock.Anything).
		Return(activities.ListPageImagesOutput{}, errors.New("no page images found for document"))

	env.ExecuteWorkflow(DocumentExtractWorkflow, DocumentExtractInput{Name: "empty", DocumentDir: "/data/in/empty"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.StatusFailed, out)
}

func TestDocumentExtractWorkflowPageFailureContinues(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentExtractWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("ListPageImagesActivity", mock.Anything, mock.Anything).
		Return(activities.ListPageImagesOutput{Paths: []string{"/d/p1.png", "/d/p2.png"}}, nil)
	env.OnActivity("ComputeDocumentIDActivity", mock.Anything, mock.Anything).
		Return(activities.ComputeDocumentIDOutput{DocumentID: "doc123"}, nil)
	env.OnActivity("UpsertDocumentActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("IndexPageActivity", mock.Anything, activities.IndexPageInput{DocumentID: "doc123", Path: "/d/p1.png", PageNumber: 1}).
		Return(activities.IndexPageOutput{PageNumber: 1, Error: "deadline exceeded", ProviderName: "mock", Model: "mock"}, nil)
	env.OnActivity("IndexPageActivity", mock.Anything, activities.IndexPageInput{DocumentID: "doc123", Path: "/d/p2.png", PageNumber: 2}).
		Return(activities.IndexPageOutput{PageNumber: 2, ElementCount: 2, TextSections: 1, ProviderName: "mock", Model: "mock"}, nil)
	env.OnActivity("FlattenFragmentsActivity", mock.Anything, mock.Anything).
		Return(activities.FlattenFragmentsOutput{Fragments: 1}, nil)
	env.OnActivity("ExtractRecordsActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractRecordsOutput{Records: 1, Chunks: 1}, nil)
	env.OnActivity("ExportRecordsActivity", mock.Anything, mock.Anything).
		Return(activities.ExportRecordsOutput{CSVPath: "/data/out/x/extracted_database.csv", Records: 1}, nil)
	env.OnActivity("WriteRunManifestActivity", mock.Anything, mock.Anything).
		Return(activities.WriteRunManifestOutput{}, nil)
	env.OnActivity("LogModelCallActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentExtractWorkflow, DocumentExtractInput{Name: "x", DocumentDir: "/d"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.StatusExported, out)

	qr, err := env.QueryWorkflow(QueryGetDocumentStatus)
	require.NoError(t, err)
	var status DocumentExtractStatus
	require.NoError(t, qr.Get(&status))
	require.Equal(t, []int{1}, status.FailedPages)
	require.Equal(t, 2, status.PagesDone)
}

func TestFragmentExtractWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(FragmentExtractWorkflow)
	registerDocumentActivities(env)

	env.OnActivity("FlattenFragmentsActivity", mock.Anything, activities.FlattenFragmentsInput{DocumentID: "doc123", Name: "silver"}).
		Return(activities.FlattenFragmentsOutput{Fragments: 4}, nil)
	env.OnActivity("ExtractRecordsActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractRecordsOutput{Records: 3, Chunks: 1}, nil)
	env.OnActivity("ExportRecordsActivity", mock.Anything, mock.Anything).
		Return(activities.ExportRecordsOutput{CSVPath: "/data/out/silver/extracted_database.csv", Records: 3}, nil)
	env.OnActivity("WriteRunManifestActivity", mock.Anything, mock.Anything).
		Return(activities.WriteRunManifestOutput{}, nil)
	env.OnActivity("UpdateDocumentStatusActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(FragmentExtractWorkflow, FragmentExtractInput{DocumentID: "doc123", Name: "silver"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.StatusExported, out)
}
