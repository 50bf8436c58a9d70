package papers

import (
	"slices"
	"testing"

	"github.com/pyqvault/pyqvault/pkg/query"
)

func TestFacetWhere(t *testing.T) {
	tests := []struct {
		name   string
		facets Facets
		where  string
		args   []any
	}{
		{
			name:   "no facets",
			facets: Facets{},
			where:  "",
			args:   nil,
		},
		{
			name:   "single facet",
			facets: Facets{Branch: "CSE"},
			where:  " WHERE branch = $1",
			args:   []any{"CSE"},
		},
		{
			name: "full session lookup",
			facets: Facets{
				ExamType:    "summer",
				ExamYear:    2024,
				Branch:      "CE",
				Semester:    3,
				SubjectCode: "PCC301",
			},
			where: " WHERE exam_type = $1 AND exam_year = $2 AND branch = $3" +
				" AND semester = $4 AND subject_code = $5",
			args: []any{"summer", 2024, "CE", 3, "PCC301"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			where, args := facetWhere(tc.facets)
			if where != tc.where {
				t.Errorf("where = %q, want %q", where, tc.where)
			}
			if !slices.Equal(args, tc.args) {
				t.Errorf("args = %v, want %v", args, tc.args)
			}
		})
	}
}

func TestApplyFacetsBuildsProjectionConditions(t *testing.T) {
	builder := query.NewBuilder(paperProjection())
	applyFacets(builder, Facets{Branch: "IT", Semester: 4})

	sql, args := builder.BuildCount()
	want := "SELECT COUNT(*) FROM public.papers p WHERE p.branch = $1 AND p.semester = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !slices.Equal(args, []any{"IT", 4}) {
		t.Errorf("args = %v, want [IT 4]", args)
	}
}
