package classifier

import "errors"

var (
	ErrMissingDegree      = errors.New("filename does not indicate an engineering degree")
	ErrMissingSemester    = errors.New("filename does not contain a recognizable semester")
	ErrMissingSubjectCode = errors.New("filename does not contain a subject code")
)

// IsRejection reports whether err is one of the classification rejection
// reasons, as opposed to an internal failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingDegree) ||
		errors.Is(err, ErrMissingSemester) ||
		errors.Is(err, ErrMissingSubjectCode)
}
