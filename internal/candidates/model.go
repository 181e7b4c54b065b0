package candidates

import "time"

// Pipeline status values with downstream automation.
const (
	StatusNew         = "new"
	StatusProcessed   = "Processed"
	StatusShortlisted = "Shortlisted"

	Status1ScheduleInterview = "Schedule Interview"
	Status1FinalRound        = "Selected for Final Round"
)

// Candidate is an applicant record.
type Candidate struct {
	ID              int64     `json:"id"`
	Date            string    `json:"date"`
	JobCode         string    `json:"jobCode"`
	JobCategory     string    `json:"jobCategory"`
	Client          string    `json:"client"`
	ClientName      string    `json:"clientName"`
	ClientSpoc      string    `json:"clientSpoc"`
	Skill           string    `json:"skill"`
	Source          string    `json:"source"`
	CurrentLocation string    `json:"currentLocation"`
	WorkLocation    string    `json:"workLocation"`
	Location        string    `json:"location"`
	Name            string    `json:"name"`
	Mobile          string    `json:"mobile"`
	Email           string    `json:"email"`
	Status          string    `json:"status"`
	Status1         string    `json:"status1"`
	Education       string    `json:"education"`
	TotalEx         string    `json:"totalEx"`
	Rex             string    `json:"rex"`
	CCTC            string    `json:"cctc"`
	ECTC            string    `json:"ectc"`
	Notice          string    `json:"notice"`
	CurrentCompany  string    `json:"currentCompany"`
	Remarks         string    `json:"remarks"`
	Recruiter       string    `json:"recruiter"`
	AM              string    `json:"am"`
	InterviewID     *int64    `json:"interviewId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SearchText concatenates the fields free text search runs over.
func (c Candidate) SearchText() string {
	return c.Name + " " + c.Email + " " + c.Mobile + " " + c.Skill + " " + c.CurrentCompany + " " +
		c.CurrentLocation + " " + c.WorkLocation + " " + c.Education + " " + c.JobCode + " " +
		c.Client + " " + c.Remarks + " " + c.Status + " " + c.Status1
}
