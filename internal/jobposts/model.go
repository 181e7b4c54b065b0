package jobposts

import "time"

// Job statuses.
const (
	StatusActive = "Active"
	StatusFilled = "Filled"
	StatusClosed = "Closed"
)

// Job is an open requirement from a client.
type Job struct {
	ID                  int64     `json:"id"`
	JobCode             string    `json:"jobCode"`
	Title               string    `json:"title"`
	Client              string    `json:"client"`
	ClientSpoc          string    `json:"clientSpoc"`
	Skill               string    `json:"skill"`
	WorkLocation        string    `json:"workLocation"`
	JobCategory         string    `json:"jobCategory"`
	OpenPositions       int       `json:"openPositions"`
	TeamLead            string    `json:"teamLead"`
	PrincipalConsultant string    `json:"principalConsultant"`
	Budget              string    `json:"budget"`
	Description         string    `json:"description"`
	Requirements        string    `json:"requirements"`
	SalaryRange         string    `json:"salaryRange"`
	Status              string    `json:"status"`
	CreatedBy           string    `json:"createdBy"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
