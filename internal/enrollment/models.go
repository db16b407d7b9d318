package enrollment

import "time"

// Status is the enrollment lifecycle state. queued and processing are
// transient; completed, rejected, and failed are terminal and never left.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions may occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusFailed
}

// Error reasons recorded on terminal states.
const (
	// ReasonNoMatchingGroup: no age group range contains the applicant's age.
	ReasonNoMatchingGroup = "no_matching_age_group"
	// ReasonProcessingError: an infrastructure fault interrupted processing.
	ReasonProcessingError = "processing_error"
)

// Enrollment is owned exclusively by the store and mutated only through
// conditional status transitions. Records are never deleted; terminal rows
// stay for audit.
type Enrollment struct {
	ID             string
	Name           string
	Age            int
	CPF            string
	Status         Status
	ErrorReason    string
	MatchedGroupID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmitRequest is the submission gateway's fixed structural contract. Age is
// a pointer so a missing field is distinguishable from zero.
type SubmitRequest struct {
	Name string `json:"name"`
	Age  *int   `json:"age"`
	CPF  string `json:"cpf"`
}

// SubmitResult is returned to the caller immediately; the outcome is
// observable later by polling status.
type SubmitResult struct {
	EnrollmentID string `json:"enrollment_id"`
	Status       Status `json:"status"`
}
