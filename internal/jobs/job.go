// Package jobs tracks ingestion jobs for uploaded exam paper archives.
//
// A job records where an archive came from, how far batch processing has
// advanced through it, and its position in the status state machine. Jobs are
// never deleted; terminal jobs remain as an audit record of each ingestion.
package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Job is a single archive ingestion tracked from upload to completion.
type Job struct {
	ID                 uuid.UUID `json:"id"`
	Filename           string    `json:"filename"`
	ArchivePath        string    `json:"archive_path"`
	SourceURL          *string   `json:"source_url,omitempty"`
	ExtractPath        *string   `json:"extract_path,omitempty"`
	ExamType           string    `json:"exam_type"`
	ExamYear           int       `json:"exam_year"`
	TotalDocuments     int       `json:"total_documents"`
	ProcessedDocuments int       `json:"processed_documents"`
	Status             Status    `json:"status"`
	FailureReason      *string   `json:"failure_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewJob holds the fields required to register a job.
type NewJob struct {
	Filename    string
	ArchivePath string
	SourceURL   *string
	ExamType    string
	ExamYear    int
	Status      Status
}
