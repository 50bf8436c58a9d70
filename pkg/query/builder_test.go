package query_test

import (
	"slices"
	"testing"

	"github.com/pyqvault/pyqvault/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "papers", "p").
		Project("id", "id").
		Project("branch", "branch").
		Project("semester", "semester").
		Project("subject_name", "subjectName")
}

func TestBuild(t *testing.T) {
	builder := query.NewBuilder(testProjection())

	sql, args := builder.Build()
	want := "SELECT p.id, p.branch, p.semester, p.subject_name FROM public.papers p"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuildWithConditions(t *testing.T) {
	branch := "CSE"
	builder := query.NewBuilder(testProjection()).
		WhereEquals("branch", branch).
		WhereEquals("semester", 3)

	sql, args := builder.Build()
	want := "SELECT p.id, p.branch, p.semester, p.subject_name FROM public.papers p" +
		" WHERE p.branch = $1 AND p.semester = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !slices.Equal(args, []any{branch, 3}) {
		t.Errorf("args = %v, want [CSE 3]", args)
	}
}

func TestWhereEqualsSkipsNil(t *testing.T) {
	var branch *string
	builder := query.NewBuilder(testProjection()).WhereEquals("branch", branch)

	sql, args := builder.Build()
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
	if sql != "SELECT p.id, p.branch, p.semester, p.subject_name FROM public.papers p" {
		t.Errorf("unexpected sql: %q", sql)
	}
}

func TestBuildPage(t *testing.T) {
	builder := query.NewBuilder(
		testProjection(),
		query.SortField{Field: "branch"},
	)

	sql, _ := builder.BuildPage(3, 20)
	want := "SELECT p.id, p.branch, p.semester, p.subject_name FROM public.papers p" +
		" ORDER BY p.branch ASC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestBuildCount(t *testing.T) {
	builder := query.NewBuilder(testProjection()).WhereEquals("semester", 5)

	sql, args := builder.BuildCount()
	want := "SELECT COUNT(*) FROM public.papers p WHERE p.semester = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !slices.Equal(args, []any{5}) {
		t.Errorf("args = %v, want [5]", args)
	}
}

func TestBuildSingle(t *testing.T) {
	builder := query.NewBuilder(testProjection())

	sql, args := builder.BuildSingle("id", "abc")
	want := "SELECT p.id, p.branch, p.semester, p.subject_name FROM public.papers p WHERE p.id = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !slices.Equal(args, []any{"abc"}) {
		t.Errorf("args = %v, want [abc]", args)
	}
}

func TestWhereSearch(t *testing.T) {
	search := "mechanics"
	builder := query.NewBuilder(testProjection()).
		WhereSearch(&search, "subjectName", "branch")

	sql, args := builder.Build()
	want := "SELECT p.id, p.branch, p.semester, p.subject_name FROM public.papers p" +
		" WHERE (p.subject_name ILIKE $1 OR p.branch ILIKE $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !slices.Equal(args, []any{"%mechanics%", "%mechanics%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestOrderByFieldsOverridesDefault(t *testing.T) {
	builder := query.NewBuilder(
		testProjection(),
		query.SortField{Field: "branch"},
	).OrderByFields([]query.SortField{{Field: "semester", Descending: true}})

	sql, _ := builder.Build()
	want := "SELECT p.id, p.branch, p.semester, p.subject_name FROM public.papers p" +
		" ORDER BY p.semester DESC"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestParseSortFields(t *testing.T) {
	fields := query.ParseSortFields("branch,-semester, subjectName")
	want := []query.SortField{
		{Field: "branch"},
		{Field: "semester", Descending: true},
		{Field: "subjectName"},
	}
	if !slices.Equal(fields, want) {
		t.Errorf("fields = %v, want %v", fields, want)
	}

	if fields := query.ParseSortFields(""); fields != nil {
		t.Errorf("empty input = %v, want nil", fields)
	}
}
