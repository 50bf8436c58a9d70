package classifier_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pyqvault/pyqvault/internal/classifier"
)

func newClassifier(t *testing.T) classifier.System {
	t.Helper()

	cfg := &classifier.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := classifier.New(cfg, logger)
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	return c
}

func TestClassifyFullFilename(t *testing.T) {
	c := newClassifier(t)

	doc, err := c.Classify("13801 - Year - B.E. - B.Tech. Computer Science and Engineering (Model Curriculum) Semester-III Subject - SE1BECS - Applied Mathematics-III.pdf")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	if doc.Degree != "B.Tech" {
		t.Errorf("degree = %q, want B.Tech", doc.Degree)
	}
	if doc.Branch != "CSE" {
		t.Errorf("branch = %q, want CSE", doc.Branch)
	}
	if doc.Semester != 3 {
		t.Errorf("semester = %d, want 3", doc.Semester)
	}
	if doc.SubjectCode != "SE1BECS" {
		t.Errorf("subject code = %q, want SE1BECS", doc.SubjectCode)
	}
	if doc.SubjectName != "Applied Mathematics Iii" {
		t.Errorf("subject name = %q, want Applied Mathematics Iii", doc.SubjectName)
	}
}

func TestClassifyDegreeGate(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name     string
		filename string
		degree   string
		wantErr  error
	}{
		{
			name:     "btech",
			filename: "B.Tech Civil Engineering Semester-IV Subject - PCC401 - Structural Analysis.pdf",
			degree:   "B.Tech",
		},
		{
			name:     "be",
			filename: "B.E. Mechanical Engineering Semester-II Subject - ESC201 - Thermodynamics.pdf",
			degree:   "B.E",
		},
		{
			name:     "model curriculum only",
			filename: "Information Technology (Model Curriculum) Semester-V Subject - PEC502 - Data Mining.pdf",
			degree:   "B.Tech",
		},
		{
			name:     "bsc rejected",
			filename: "B.Sc Mathematics Semester-III Subject - BSC301 - Algebra.pdf",
			wantErr:  classifier.ErrMissingDegree,
		},
		{
			name:     "btech marker overrides other program mentions",
			filename: "M.Tech B.Tech Semester-I Subject - ST101 - Advanced Structures.pdf",
			degree:   "B.Tech",
		},
		{
			name:     "multi program listing with btech accepted",
			filename: "10632S - Year - B.Sc. - B.Com. - B.Tech. Computer Science and Engineering Semester-III Subject - PCC301 - Data Structures.pdf",
			degree:   "B.Tech",
		},
		{
			name:     "model curriculum does not override other programs",
			filename: "B.Sc (Model Curriculum) Semester-III Subject - BSC301 - Algebra.pdf",
			wantErr:  classifier.ErrMissingDegree,
		},
		{
			name:     "no degree marker",
			filename: "Random Paper Semester-III Subject - SE101 - Something.pdf",
			wantErr:  classifier.ErrMissingDegree,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := c.Classify(tc.filename)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if !classifier.IsRejection(err) {
					t.Errorf("expected a rejection error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if doc.Degree != tc.degree {
				t.Errorf("degree = %q, want %q", doc.Degree, tc.degree)
			}
		})
	}
}

func TestClassifySemester(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		filename string
		semester int
	}{
		{"B.Tech CSE Semester-I Subject - BSC101 - Physics.pdf", 1},
		{"B.Tech CSE Semester-IV Subject - BSC401 - Maths.pdf", 4},
		{"B.Tech CSE Semester VI Subject - BSC601 - Networks.pdf", 6},
		{"B.Tech CSE Semester-VIII Subject - BSC801 - Project.pdf", 8},
	}

	for _, tc := range tests {
		doc, err := c.Classify(tc.filename)
		if err != nil {
			t.Fatalf("classify %q: %v", tc.filename, err)
		}
		if doc.Semester != tc.semester {
			t.Errorf("%q: semester = %d, want %d", tc.filename, doc.Semester, tc.semester)
		}
	}

	_, err := c.Classify("B.Tech CSE Midterm Subject - BSC101 - Physics.pdf")
	if !errors.Is(err, classifier.ErrMissingSemester) {
		t.Errorf("err = %v, want ErrMissingSemester", err)
	}
}

func TestClassifySubjectCodeLeftMostPrefix(t *testing.T) {
	c := newClassifier(t)

	// Both XY999 and PCC305 are token candidates; only PCC305 carries a
	// known prefix, so it wins even though it appears later.
	doc, err := c.Classify("B.Tech XY999 Civil Engineering Semester-III Subject - PCC305 - Surveying.pdf")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if doc.SubjectCode != "PCC305" {
		t.Errorf("subject code = %q, want PCC305", doc.SubjectCode)
	}

	_, err = c.Classify("B.Tech Civil Engineering Semester-III Subject - XY999 - Surveying.pdf")
	if !errors.Is(err, classifier.ErrMissingSubjectCode) {
		t.Errorf("err = %v, want ErrMissingSubjectCode", err)
	}
}

func TestClassifyBranchProximity(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name     string
		filename string
		branch   string
	}{
		{
			name:     "civil nearest to engineering wins over mechanical mention",
			filename: "B.Tech Mechanical stream transfer to Civil Engineering Semester-V Subject - PCC501 - Fluid Mechanics.pdf",
			branch:   "CE",
		},
		{
			name:     "electronics and power resolves electrical",
			filename: "B.Tech Electrical Electronics and Power Engineering Semester-VI Subject - PEC601 - Power Systems.pdf",
			branch:   "EE",
		},
		{
			name:     "telecommunication resolves ece",
			filename: "B.Tech Electronics and Telecommunication Engineering Semester-IV Subject - PCC405 - Signals.pdf",
			branch:   "ECE",
		},
		{
			name:     "information technology",
			filename: "B.Tech Information Technology Semester-III Subject - PCC301 - Databases.pdf",
			branch:   "IT",
		},
		{
			name:     "closest variant scores the branch",
			filename: "B.Tech Mechanical stream migrated from Civil Engineering department ME Engineering Semester-IV Subject - PCC401 - Kinematics.pdf",
			branch:   "ME",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := c.Classify(tc.filename)
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if doc.Branch != tc.branch {
				t.Errorf("branch = %q, want %q", doc.Branch, tc.branch)
			}
		})
	}
}

func TestClassifyBranchFragmentFallback(t *testing.T) {
	c := newClassifier(t)

	// No branch text in the filename; the ET fragment in the subject code
	// resolves the branch.
	doc, err := c.Classify("B.Tech (Model Curriculum) Semester-III Subject - ET301 - Digital Circuits.pdf")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if doc.Branch != "ECE" {
		t.Errorf("branch = %q, want ECE", doc.Branch)
	}

	// No branch text and no known fragment falls back to the default.
	doc, err = c.Classify("B.Tech (Model Curriculum) Semester-III Subject - HSMC301 - Economics.pdf")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if doc.Branch != "CSE" {
		t.Errorf("branch = %q, want CSE", doc.Branch)
	}
}

func TestClassifySubjectName(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name     string
		filename string
		subject  string
	}{
		{
			name:     "labeled subject with paper suffix stripped",
			filename: "B.Tech Civil Engineering Semester-III Subject - PCC301 - Fluid_Mechanics Paper-II.pdf",
			subject:  "Fluid Mechanics",
		},
		{
			name:     "unlabeled code-name pair",
			filename: "B.Tech Civil Engineering Semester-III PCC301 - soil mechanics.pdf",
			subject:  "Soil Mechanics",
		},
		{
			name:     "short residue falls back to placeholder",
			filename: "B.Tech Civil Engineering Semester-III Subject - PCC301 - ab.pdf",
			subject:  "Engineering Subject",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := c.Classify(tc.filename)
			if err != nil {
				t.Fatalf("classify: %v", err)
			}
			if doc.SubjectName != tc.subject {
				t.Errorf("subject name = %q, want %q", doc.SubjectName, tc.subject)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := newClassifier(t)
	filename := "B.Tech Computer Science and Engineering Semester-VII Subject - PEC701 - Machine Learning.pdf"

	first, err := c.Classify(filename)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	for range 10 {
		next, err := c.Classify(filename)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if next != first {
			t.Fatalf("classification not deterministic: %+v vs %+v", next, first)
		}
	}
}
