// Package papers manages the catalog of classified exam papers and serves
// faceted lookup and retrieval over it.
package papers

import (
	"time"

	"github.com/google/uuid"
)

// Paper is a single classified exam paper stored in the catalog.
type Paper struct {
	ID          uuid.UUID `json:"id"`
	Degree      string    `json:"degree"`
	Branch      string    `json:"branch"`
	Semester    int       `json:"semester"`
	SubjectCode string    `json:"subject_code"`
	SubjectName string    `json:"subject_name"`
	ExamType    string    `json:"exam_type"`
	ExamYear    int       `json:"exam_year"`
	StorageKey  string    `json:"storage_key"`
	PageCount   *int      `json:"page_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPaper holds the fields required to insert a paper into the catalog.
type NewPaper struct {
	Degree      string
	Branch      string
	Semester    int
	SubjectCode string
	SubjectName string
	ExamType    string
	ExamYear    int
	StorageKey  string
	PageCount   *int
}

// Session is a distinct exam type and year combination present in the catalog.
type Session struct {
	ExamType string `json:"exam_type"`
	ExamYear int    `json:"exam_year"`
}

// Subject is a distinct subject within a branch and semester.
type Subject struct {
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
}

// Facets narrows catalog lookups. Zero-valued fields are ignored.
type Facets struct {
	ExamType    string
	ExamYear    int
	Degree      string
	Branch      string
	Semester    int
	SubjectCode string
}
