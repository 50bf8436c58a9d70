package papers

import (
	"github.com/pyqvault/pyqvault/pkg/query"
	"github.com/pyqvault/pyqvault/pkg/repository"
)

func paperProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "papers", "p").
		Project("id", "id").
		Project("degree", "degree").
		Project("branch", "branch").
		Project("semester", "semester").
		Project("subject_code", "subjectCode").
		Project("subject_name", "subjectName").
		Project("exam_type", "examType").
		Project("exam_year", "examYear").
		Project("storage_key", "storageKey").
		Project("page_count", "pageCount").
		Project("created_at", "createdAt")
}

func scanPaper(s repository.Scanner) (Paper, error) {
	var paper Paper
	err := s.Scan(
		&paper.ID,
		&paper.Degree,
		&paper.Branch,
		&paper.Semester,
		&paper.SubjectCode,
		&paper.SubjectName,
		&paper.ExamType,
		&paper.ExamYear,
		&paper.StorageKey,
		&paper.PageCount,
		&paper.CreatedAt,
	)
	return paper, err
}

func scanSession(s repository.Scanner) (Session, error) {
	var session Session
	err := s.Scan(&session.ExamType, &session.ExamYear)
	return session, err
}

func scanSubject(s repository.Scanner) (Subject, error) {
	var subject Subject
	err := s.Scan(&subject.SubjectCode, &subject.SubjectName)
	return subject, err
}

func scanBranch(s repository.Scanner) (string, error) {
	var branch string
	err := s.Scan(&branch)
	return branch, err
}
