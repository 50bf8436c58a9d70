package jobs

// Status is a job's position in the ingestion state machine.
type Status string

const (
	StatusUploaded   Status = "UPLOADED"
	StatusFetching   Status = "FETCHING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

var transitions = map[Status][]Status{
	StatusUploaded:   {StatusFetching, StatusProcessing, StatusCompleted, StatusFailed},
	StatusFetching:   {StatusUploaded, StatusFailed},
	StatusProcessing: {StatusProcessing, StatusCompleted, StatusFailed},
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal state change.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusUploaded, StatusFetching, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
