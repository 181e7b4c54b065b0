package interviews

import "github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"

// CreateInterviewRequest schedules an interview by hand.
type CreateInterviewRequest struct {
	CandidateID     httpx.ID `json:"candidateId" validate:"required,gt=0"`
	CandidateName   string   `json:"candidateName" validate:"required,max=200"`
	CandidateEmail  string   `json:"candidateEmail" validate:"omitempty,email,max=255"`
	CandidateMobile string   `json:"candidateMobile" validate:"max=50"`
	JobCode         string   `json:"jobCode" validate:"required,max=100"`
	Client          string   `json:"client" validate:"max=200"`
	Location        string   `json:"location" validate:"max=200"`
	Skill           string   `json:"skill" validate:"max=500"`
	InterviewDate   string   `json:"interviewDate" validate:"required,datetime=2006-01-02"`
	InterviewTime   string   `json:"interviewTime" validate:"max=20"`
	InterviewType   string   `json:"interviewType" validate:"omitempty,oneof=Phone Video In-Person"`
	Interviewer     string   `json:"interviewer" validate:"max=200"`
	Status          string   `json:"status" validate:"max=50"`
	Notes           string   `json:"notes" validate:"max=2000"`
	Recruiter       string   `json:"recruiter" validate:"max=200"`
	ScheduledBy     string   `json:"scheduledBy" validate:"max=200"`
}

// UpdateInterviewRequest changes the supplied, non-empty fields.
type UpdateInterviewRequest struct {
	CandidateID     *httpx.ID `json:"candidateId,omitempty"`
	CandidateName   *string   `json:"candidateName,omitempty" validate:"omitempty,max=200"`
	CandidateEmail  *string   `json:"candidateEmail,omitempty" validate:"omitempty,email,max=255"`
	CandidateMobile *string   `json:"candidateMobile,omitempty" validate:"omitempty,max=50"`
	JobCode         *string   `json:"jobCode,omitempty" validate:"omitempty,max=100"`
	Client          *string   `json:"client,omitempty" validate:"omitempty,max=200"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Skill           *string   `json:"skill,omitempty" validate:"omitempty,max=500"`
	InterviewDate   *string   `json:"interviewDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	InterviewTime   *string   `json:"interviewTime,omitempty" validate:"omitempty,max=20"`
	InterviewType   *string   `json:"interviewType,omitempty" validate:"omitempty,oneof=Phone Video In-Person"`
	Interviewer     *string   `json:"interviewer,omitempty" validate:"omitempty,max=200"`
	Status          *string   `json:"status,omitempty"`
	Result          *string   `json:"result,omitempty" validate:"omitempty,oneof=Pending Pass Fail"`
	Score           *int      `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Feedback        *string   `json:"feedback,omitempty" validate:"omitempty,max=4000"`
	Notes           *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// apply merges the request into iv and reports whether anything was supplied.
// Empty strings are ignored, matching the create form's blank inputs.
func (r UpdateInterviewRequest) apply(iv *Interview) bool {
	supplied := false
	if r.CandidateID != nil && *r.CandidateID > 0 {
		iv.CandidateID = int64(*r.CandidateID)
		supplied = true
	}
	for _, f := range []struct {
		dst *string
		src *string
	}{
		{&iv.CandidateName, r.CandidateName},
		{&iv.CandidateEmail, r.CandidateEmail},
		{&iv.CandidateMobile, r.CandidateMobile},
		{&iv.JobCode, r.JobCode},
		{&iv.Client, r.Client},
		{&iv.Location, r.Location},
		{&iv.Skill, r.Skill},
		{&iv.InterviewDate, r.InterviewDate},
		{&iv.InterviewTime, r.InterviewTime},
		{&iv.InterviewType, r.InterviewType},
		{&iv.Interviewer, r.Interviewer},
		{&iv.Result, r.Result},
		{&iv.Feedback, r.Feedback},
		{&iv.Notes, r.Notes},
	} {
		if f.src != nil && *f.src != "" {
			*f.dst = *f.src
			supplied = true
		}
	}
	if r.Score != nil {
		score := *r.Score
		iv.Score = &score
		supplied = true
	}
	if r.Status != nil && *r.Status != "" {
		supplied = true
	}
	return supplied
}
