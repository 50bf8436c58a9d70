package papers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/pkg/pagination"
	"github.com/pyqvault/pyqvault/pkg/query"
	"github.com/pyqvault/pyqvault/pkg/repository"
)

const insertPaperQuery = `
INSERT INTO public.papers (id, degree, branch, semester, subject_code, subject_name,
                           exam_type, exam_year, storage_key, page_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, degree, branch, semester, subject_code, subject_name,
          exam_type, exam_year, storage_key, page_count, created_at`

func insertPaper(ctx context.Context, q repository.Querier, paper NewPaper) (Paper, error) {
	args := []any{
		uuid.New(),
		paper.Degree,
		paper.Branch,
		paper.Semester,
		paper.SubjectCode,
		paper.SubjectName,
		paper.ExamType,
		paper.ExamYear,
		paper.StorageKey,
		paper.PageCount,
	}
	result, err := repository.QueryOne(ctx, q, insertPaperQuery, args, scanPaper)
	return result, repository.MapError(err, ErrNotFound, ErrNotFound)
}

func findPaper(ctx context.Context, q repository.Querier, id uuid.UUID) (Paper, error) {
	builder := query.NewBuilder(paperProjection())
	querySQL, args := builder.BuildSingle("id", id)

	paper, err := repository.QueryOne(ctx, q, querySQL, args, scanPaper)
	return paper, repository.MapError(err, ErrNotFound, ErrNotFound)
}

func listPapers(ctx context.Context, q repository.Querier, req pagination.PageRequest, facets Facets) (pagination.PageResult[Paper], error) {
	var zero pagination.PageResult[Paper]

	builder := query.NewBuilder(paperProjection(),
		query.SortField{Field: "examYear", Descending: true},
		query.SortField{Field: "subjectCode"},
	).
		WhereSearch(req.Search, "subjectCode", "subjectName").
		OrderByFields(req.Sort)

	applyFacets(builder, facets)

	countSQL, countArgs := builder.BuildCount()
	var total int
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return zero, err
	}

	pageSQL, pageArgs := builder.BuildPage(req.Page, req.PageSize)
	data, err := repository.QueryMany(ctx, q, pageSQL, pageArgs, scanPaper)
	if err != nil {
		return zero, err
	}

	return pagination.NewPageResult(data, total, req.Page, req.PageSize), nil
}

func applyFacets(builder *query.Builder, facets Facets) {
	if facets.ExamType != "" {
		builder.WhereEquals("examType", facets.ExamType)
	}
	if facets.ExamYear != 0 {
		builder.WhereEquals("examYear", facets.ExamYear)
	}
	if facets.Degree != "" {
		builder.WhereEquals("degree", facets.Degree)
	}
	if facets.Branch != "" {
		builder.WhereEquals("branch", facets.Branch)
	}
	if facets.Semester != 0 {
		builder.WhereEquals("semester", facets.Semester)
	}
	if facets.SubjectCode != "" {
		builder.WhereEquals("subjectCode", facets.SubjectCode)
	}
}

func listSessions(ctx context.Context, q repository.Querier) ([]Session, error) {
	return repository.QueryMany(ctx, q,
		`SELECT DISTINCT exam_type, exam_year
		 FROM public.papers
		 ORDER BY exam_year DESC, exam_type`,
		nil, scanSession,
	)
}

func listBranches(ctx context.Context, q repository.Querier, facets Facets) ([]string, error) {
	where, args := facetWhere(facets)
	return repository.QueryMany(ctx, q,
		fmt.Sprintf(`SELECT DISTINCT branch FROM public.papers%s ORDER BY branch`, where),
		args, scanBranch,
	)
}

func listSubjects(ctx context.Context, q repository.Querier, facets Facets) ([]Subject, error) {
	where, args := facetWhere(facets)
	return repository.QueryMany(ctx, q,
		fmt.Sprintf(
			`SELECT DISTINCT subject_code, subject_name FROM public.papers%s ORDER BY subject_code`,
			where,
		),
		args, scanSubject,
	)
}

func findByFacets(ctx context.Context, q repository.Querier, facets Facets) ([]Paper, error) {
	builder := query.NewBuilder(paperProjection(),
		query.SortField{Field: "examYear", Descending: true},
		query.SortField{Field: "subjectCode"},
	)
	applyFacets(builder, facets)

	querySQL, args := builder.Build()
	return repository.QueryMany(ctx, q, querySQL, args, scanPaper)
}

// facetWhere builds a plain WHERE clause over unqualified columns for the
// DISTINCT facet queries, which do not go through the projection builder.
func facetWhere(facets Facets) (string, []any) {
	clauses := make([]string, 0, 6)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if facets.ExamType != "" {
		add("exam_type", facets.ExamType)
	}
	if facets.ExamYear != 0 {
		add("exam_year", facets.ExamYear)
	}
	if facets.Degree != "" {
		add("degree", facets.Degree)
	}
	if facets.Branch != "" {
		add("branch", facets.Branch)
	}
	if facets.Semester != 0 {
		add("semester", facets.Semester)
	}
	if facets.SubjectCode != "" {
		add("subject_code", facets.SubjectCode)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
