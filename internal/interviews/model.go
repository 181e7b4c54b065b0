package interviews

import (
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Interview statuses.
const (
	StatusScheduled   = "Scheduled"
	StatusL1Scheduled = "L1 Scheduled"
	StatusL2Scheduled = "L2 Scheduled"
	StatusShortlisted = "Shortlisted"
	StatusCompleted   = "Completed"
	StatusCancelled   = "Cancelled"
	StatusRescheduled = "Rescheduled"
)

// Interview results.
const (
	ResultPending = "Pending"
	ResultPass    = "Pass"
	ResultFail    = "Fail"
)

// Interview types.
const (
	TypePhone    = "Phone"
	TypeVideo    = "Video"
	TypeInPerson = "In-Person"
)

// ErrInvalidStatus is returned for status changes out of a terminal state.
var ErrInvalidStatus = &shared.Error{Kind: shared.ErrConflict, Message: "Interview is closed; its status can no longer change"}

var statuses = []string{
	StatusScheduled, StatusL1Scheduled, StatusL2Scheduled, StatusShortlisted,
	StatusCompleted, StatusCancelled, StatusRescheduled,
}

// Statuses lists every interview status.
func Statuses() []string {
	out := make([]string, len(statuses))
	copy(out, statuses)
	return out
}

// CanonicalStatus returns the canonical spelling of s, matching case
// insensitively and ignoring surrounding whitespace.
func CanonicalStatus(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, st := range statuses {
		if strings.EqualFold(st, s) {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether status closes the interview.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// IsUpcoming reports whether status still awaits the interview itself.
func IsUpcoming(status string) bool {
	switch status {
	case StatusScheduled, StatusL1Scheduled, StatusL2Scheduled:
		return true
	}
	return false
}

// CheckTransition validates a status change.
func CheckTransition(from, to string) error {
	canonical, ok := CanonicalStatus(to)
	if !ok {
		return shared.Invalid("status must be one of [%s]", strings.Join(statuses, ", "))
	}
	if from == canonical {
		return nil
	}
	if IsTerminal(from) {
		return ErrInvalidStatus
	}
	return nil
}

// Interview is a scheduled conversation with a candidate.
type Interview struct {
	ID              int64     `json:"id"`
	CandidateID     int64     `json:"candidateId"`
	CandidateName   string    `json:"candidateName"`
	CandidateEmail  string    `json:"candidateEmail"`
	CandidateMobile string    `json:"candidateMobile"`
	JobCode         string    `json:"jobCode"`
	Client          string    `json:"client"`
	Location        string    `json:"location"`
	Skill           string    `json:"skill"`
	InterviewDate   string    `json:"interviewDate"`
	InterviewTime   string    `json:"interviewTime"`
	InterviewType   string    `json:"interviewType"`
	Interviewer     string    `json:"interviewer"`
	Status          string    `json:"status"`
	Result          string    `json:"result"`
	Score           *int      `json:"score"`
	Feedback        string    `json:"feedback"`
	Notes           string    `json:"notes"`
	Recruiter       string    `json:"recruiter"`
	ScheduledBy     string    `json:"scheduledBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
