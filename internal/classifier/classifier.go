// Package classifier extracts exam paper metadata from archive filenames.
//
// Classification runs as a pipeline over the base filename: a degree gate
// rejects non-engineering papers, then semester, subject code, branch, and
// subject name are extracted in turn. Degree, semester, and subject code are
// mandatory; branch and subject name always resolve through fallbacks.
package classifier

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Document is the metadata classified from a single filename.
type Document struct {
	Degree      string
	Branch      string
	Semester    int
	SubjectCode string
	SubjectName string
}

// System classifies exam paper filenames.
type System interface {
	Classify(filename string) (Document, error)
}

type classifier struct {
	config   *Config
	logger   *slog.Logger
	branches []compiledBranch
	titler   cases.Caser
}

type compiledBranch struct {
	code     string
	variants []compiledVariant
}

type compiledVariant struct {
	match  *regexp.Regexp
	reject *regexp.Regexp
}

var (
	degreeBTech      = regexp.MustCompile(`(?i)\bB\.Tech\b`)
	degreeBE         = regexp.MustCompile(`(?i)\bB\.E\.?\b`)
	degreeCurriculum = regexp.MustCompile(`(?i)Model\s+Curriculum`)
	degreeOther      = regexp.MustCompile(`(?i)\b(B\.Sc|B\.Com|BCA|B\.C\.A|B\.Pharm|M\.Tech|M\.Sc|M\.Pharm|M\.C\.A)`)

	semesterPattern = regexp.MustCompile(`(?i)Semester[- ]?(I{1,3}|IV|V|VI{1,2}|VIII?)\b`)
	codePattern     = regexp.MustCompile(`\b([A-Z]{2,6}-?[A-Z0-9]{1,8})\b`)

	engineeringWord = regexp.MustCompile(`(?i)\bEngineering\b`)
	semesterWord    = regexp.MustCompile(`(?i)\bSemester\b`)
	paperSuffix     = regexp.MustCompile(`(?i)\bPaper[-\s]?[IVX]+\b`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

var romanSemesters = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4,
	"V": 5, "VI": 6, "VII": 7, "VIII": 8,
}

// New compiles the configured branch patterns and returns a classifier.
func New(config *Config, logger *slog.Logger) (System, error) {
	c := &classifier{
		config: config,
		logger: logger.With("system", "classifier"),
		titler: cases.Title(language.English),
	}

	for _, branch := range config.Branches {
		compiled := compiledBranch{code: branch.Code}
		for _, variant := range branch.Variants {
			match, err := regexp.Compile(`(?i)` + variant.Match)
			if err != nil {
				return nil, fmt.Errorf("branch %s pattern %q: %w", branch.Code, variant.Match, err)
			}
			cv := compiledVariant{match: match}
			if variant.Reject != "" {
				reject, err := regexp.Compile(`(?i)` + variant.Reject)
				if err != nil {
					return nil, fmt.Errorf("branch %s reject %q: %w", branch.Code, variant.Reject, err)
				}
				cv.reject = reject
			}
			compiled.variants = append(compiled.variants, cv)
		}
		c.branches = append(c.branches, compiled)
	}

	return c, nil
}

// Classify extracts metadata from the given base filename. A rejection error
// (see IsRejection) means the file is not a classifiable engineering paper.
func (c *classifier) Classify(filename string) (Document, error) {
	degree, err := c.extractDegree(filename)
	if err != nil {
		return Document{}, err
	}

	semester, err := c.extractSemester(filename)
	if err != nil {
		return Document{}, err
	}

	code, err := c.extractSubjectCode(filename)
	if err != nil {
		return Document{}, err
	}

	branch := c.extractBranch(filename, code)
	name := c.extractSubjectName(filename, code)

	return Document{
		Degree:      degree,
		Branch:      branch,
		Semester:    semester,
		SubjectCode: code,
		SubjectName: name,
	}, nil
}

// extractDegree gates on an engineering degree marker. Filenames often list
// several programs side by side; an explicit B.Tech or B.E marker wins over
// any other program mention, while the curriculum marker alone does not.
func (c *classifier) extractDegree(filename string) (string, error) {
	switch {
	case degreeBTech.MatchString(filename):
		return "B.Tech", nil
	case degreeBE.MatchString(filename):
		return "B.E", nil
	}

	if degreeOther.MatchString(filename) {
		return "", ErrMissingDegree
	}

	if degreeCurriculum.MatchString(filename) {
		return "B.Tech", nil
	}

	return "", ErrMissingDegree
}

func (c *classifier) extractSemester(filename string) (int, error) {
	match := semesterPattern.FindStringSubmatch(filename)
	if match == nil {
		return 0, ErrMissingSemester
	}

	semester, ok := romanSemesters[strings.ToUpper(match[1])]
	if !ok {
		return 0, ErrMissingSemester
	}
	return semester, nil
}

// extractSubjectCode scans the filename for uppercase token candidates and
// picks the left-most one starting with a configured prefix.
func (c *classifier) extractSubjectCode(filename string) (string, error) {
	candidates := codePattern.FindAllString(filename, -1)
	if len(candidates) == 0 {
		return "", ErrMissingSubjectCode
	}

	for _, candidate := range candidates {
		upper := strings.ToUpper(candidate)
		for _, prefix := range c.config.Prefixes {
			if strings.HasPrefix(upper, strings.ToUpper(prefix)) {
				return upper, nil
			}
		}
	}

	return "", ErrMissingSubjectCode
}

// extractBranch picks the branch whose pattern match sits closest to the
// degree context of the filename. Proximity is measured to the nearest
// "Engineering" token after the match, then "Semester", then falls back to
// the match position itself. Ties keep the earlier configured branch.
func (c *classifier) extractBranch(filename, code string) string {
	best := ""
	bestDistance := -1

	for _, branch := range c.branches {
		distance, ok := c.matchBranch(branch, filename)
		if !ok {
			continue
		}

		if bestDistance < 0 || distance < bestDistance {
			best = branch.code
			bestDistance = distance
		}
	}

	if best != "" {
		return best
	}

	return c.branchFromFragments(code)
}

// matchBranch evaluates every variant of a branch and returns the smallest
// proximity distance among the matches. A branch whose acronym sits right next
// to the anchor must not be penalized because a wordier variant also matched
// elsewhere in the filename.
func (c *classifier) matchBranch(branch compiledBranch, filename string) (int, bool) {
	best := -1
	for _, variant := range branch.variants {
		loc := variant.match.FindStringIndex(filename)
		if loc == nil {
			continue
		}
		if variant.reject != nil && variant.reject.MatchString(filename[loc[1]:]) {
			continue
		}
		if distance := branchDistance(filename, loc[0]); best < 0 || distance < best {
			best = distance
		}
	}
	return best, best >= 0
}

func branchDistance(filename string, position int) int {
	tail := filename[position:]
	if loc := engineeringWord.FindStringIndex(tail); loc != nil {
		return loc[0]
	}
	if loc := semesterWord.FindStringIndex(tail); loc != nil {
		return loc[0]
	}
	return position
}

func (c *classifier) branchFromFragments(code string) string {
	upper := strings.ToUpper(code)
	for _, group := range c.config.Fragments {
		for _, fragment := range group.Fragments {
			if strings.Contains(upper, strings.ToUpper(fragment)) {
				return group.Branch
			}
		}
	}
	return c.config.FallbackBranch
}

func (c *classifier) extractSubjectName(filename, code string) string {
	quoted := regexp.QuoteMeta(code)

	labeled := regexp.MustCompile(`(?i)Subject\s*-\s*` + quoted + `\s*-\s*(.+?)\.pdf`)
	raw := ""
	if match := labeled.FindStringSubmatch(filename); match != nil {
		raw = match[1]
	} else {
		plain := regexp.MustCompile(`(?i)` + quoted + `\s*-\s*(.+?)\.pdf`)
		if match := plain.FindStringSubmatch(filename); match != nil {
			raw = match[1]
		}
	}

	name := strings.NewReplacer("_", " ", "-", " ").Replace(raw)
	name = whitespaceRun.ReplaceAllString(name, " ")
	name = paperSuffix.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))

	if len(name) > 3 {
		return c.titler.String(name)
	}
	return "Engineering Subject"
}
