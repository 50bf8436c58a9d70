package jobs

import (
	"github.com/pyqvault/pyqvault/pkg/query"
	"github.com/pyqvault/pyqvault/pkg/repository"
)

func jobProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "ingestion_jobs", "j").
		Project("id", "id").
		Project("filename", "filename").
		Project("archive_path", "archivePath").
		Project("source_url", "sourceUrl").
		Project("extract_path", "extractPath").
		Project("exam_type", "examType").
		Project("exam_year", "examYear").
		Project("total_documents", "totalDocuments").
		Project("processed_documents", "processedDocuments").
		Project("status", "status").
		Project("failure_reason", "failureReason").
		Project("created_at", "createdAt").
		Project("updated_at", "updatedAt")
}

func scanJob(s repository.Scanner) (Job, error) {
	var job Job
	err := s.Scan(
		&job.ID,
		&job.Filename,
		&job.ArchivePath,
		&job.SourceURL,
		&job.ExtractPath,
		&job.ExamType,
		&job.ExamYear,
		&job.TotalDocuments,
		&job.ProcessedDocuments,
		&job.Status,
		&job.FailureReason,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	return job, err
}
