// Package pipeline owns the candidate hiring state machine: it decides which
// side effects a candidate or interview change implies and executes them as a
// compensating saga.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/interviews"
	"github.com/odyssey-erp/odyssey-ats/internal/notify"
)

// Event is something that happened to a candidate.
type Event interface{ event() }

// CandidateCreated is raised after a new candidate is stored.
type CandidateCreated struct{}

// CandidateUpdated is raised when a stored candidate is edited.
type CandidateUpdated struct {
	Before candidates.Candidate
}

// InterviewStatusChanged is raised when one of the candidate's interviews
// moves between statuses.
type InterviewStatusChanged struct {
	Interview interviews.Interview
	From      string
	To        string
}

func (CandidateCreated) event()       {}
func (CandidateUpdated) event()       {}
func (InterviewStatusChanged) event() {}

// Effect is a command produced by AdvanceCandidate.
type Effect interface{ effect() }

// CreateInterview asks for an interview to be materialised for the candidate.
type CreateInterview struct {
	Interview interviews.Interview
}

// SaveCandidate asks for the advanced candidate to be persisted.
type SaveCandidate struct {
	Candidate candidates.Candidate
}

// Notify asks for a notification to be sent once the change is committed.
type Notify struct {
	Event notify.Event
}

func (CreateInterview) effect() {}
func (SaveCandidate) effect()   {}
func (Notify) effect()          {}

// AdvanceCandidate applies ev to c and returns the resulting candidate along
// with the effects the caller must execute. It performs no I/O.
func AdvanceCandidate(c candidates.Candidate, ev Event) (candidates.Candidate, []Effect) {
	var effects []Effect
	switch e := ev.(type) {
	case CandidateCreated:
		effects = append(effects, Notify{Event: candidateAdded(c)})
		effects = append(effects, scheduleIfTriggered(c)...)
	case CandidateUpdated:
		effects = append(effects, scheduleIfTriggered(c)...)
	case InterviewStatusChanged:
		if e.From == e.To {
			return c, nil
		}
		effects = append(effects, Notify{Event: interviewStatusChanged(e.Interview, e.From, e.To)})
		if e.To == interviews.StatusShortlisted && !isShortlisted(c) {
			c.Status = candidates.StatusShortlisted
			c.Status1 = candidates.Status1FinalRound
			effects = append(effects, SaveCandidate{Candidate: c}, Notify{Event: candidateShortlisted(c)})
		}
	}
	return c, effects
}

// ShouldScheduleInterview reports whether c sits in the state that triggers
// interview creation and has no interview yet.
func ShouldScheduleInterview(c candidates.Candidate) bool {
	return c.InterviewID == nil &&
		matches(c.Status, candidates.StatusProcessed) &&
		matches(c.Status1, candidates.Status1ScheduleInterview)
}

func scheduleIfTriggered(c candidates.Candidate) []Effect {
	if !ShouldScheduleInterview(c) {
		return nil
	}
	iv := InterviewFor(c)
	return []Effect{CreateInterview{Interview: iv}, Notify{Event: interviewScheduled(iv)}}
}

// InterviewFor drafts the interview created for a candidate entering the
// interview stage. Date and time are left for the recruiter to fill in.
func InterviewFor(c candidates.Candidate) interviews.Interview {
	return interviews.Interview{
		CandidateID:     c.ID,
		CandidateName:   c.Name,
		CandidateEmail:  c.Email,
		CandidateMobile: c.Mobile,
		JobCode:         c.JobCode,
		Client:          c.Client,
		Location:        c.Location,
		Skill:           c.Skill,
		InterviewType:   interviews.TypePhone,
		Status:          interviews.StatusScheduled,
		Result:          interviews.ResultPending,
		Recruiter:       c.Recruiter,
		ScheduledBy:     "system",
	}
}

func isShortlisted(c candidates.Candidate) bool {
	return c.Status == candidates.StatusShortlisted && c.Status1 == candidates.Status1FinalRound
}

func matches(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), want)
}

func candidateAdded(c candidates.Candidate) notify.Event {
	return notify.Event{
		Kind:      notify.KindCandidateAdded,
		RelatedID: c.ID,
		Subject:   fmt.Sprintf("New Candidate Added: %s - %s", c.Name, c.JobCode),
		Heading:   "New Candidate Registered",
		Fields: []notify.Field{
			{Label: "Candidate Name", Value: c.Name},
			{Label: "Job Code", Value: c.JobCode},
			{Label: "Client", Value: c.Client},
			{Label: "Skill", Value: c.Skill},
			{Label: "Experience", Value: c.TotalEx},
			{Label: "Mobile", Value: c.Mobile},
			{Label: "Email", Value: c.Email},
			{Label: "Location", Value: c.Location},
			{Label: "Recruiter", Value: c.Recruiter},
		},
	}
}

func interviewScheduled(iv interviews.Interview) notify.Event {
	return notify.Event{
		Kind:      notify.KindInterviewScheduled,
		RelatedID: iv.CandidateID,
		Subject:   fmt.Sprintf("Interview Scheduled: %s - %s", iv.CandidateName, iv.JobCode),
		Heading:   "Interview Scheduled",
		Fields: []notify.Field{
			{Label: "Candidate", Value: iv.CandidateName},
			{Label: "Job Code", Value: iv.JobCode},
			{Label: "Client", Value: iv.Client},
			{Label: "Interview Date", Value: iv.InterviewDate},
			{Label: "Interview Time", Value: iv.InterviewTime},
			{Label: "Interview Type", Value: iv.InterviewType},
			{Label: "Interviewer", Value: iv.Interviewer},
			{Label: "Candidate Mobile", Value: iv.CandidateMobile},
			{Label: "Candidate Email", Value: iv.CandidateEmail},
		},
	}
}

func interviewStatusChanged(iv interviews.Interview, from, to string) notify.Event {
	return notify.Event{
		Kind:      notify.KindInterviewStatusChanged,
		RelatedID: iv.ID,
		Subject:   fmt.Sprintf("Interview Status Updated: %s - %s -> %s", iv.CandidateName, from, to),
		Heading:   "Interview Status Changed",
		Fields: []notify.Field{
			{Label: "Candidate", Value: iv.CandidateName},
			{Label: "Job Code", Value: iv.JobCode},
			{Label: "Client", Value: iv.Client},
			{Label: "Previous Status", Value: from},
			{Label: "New Status", Value: to},
			{Label: "Interview Date", Value: iv.InterviewDate},
			{Label: "Interview Time", Value: iv.InterviewTime},
			{Label: "Interviewer", Value: iv.Interviewer},
			{Label: "Notes", Value: iv.Notes},
		},
	}
}

func candidateShortlisted(c candidates.Candidate) notify.Event {
	return notify.Event{
		Kind:      notify.KindCandidateShortlisted,
		RelatedID: c.ID,
		Subject:   fmt.Sprintf("Candidate Shortlisted: %s - %s", c.Name, c.JobCode),
		Heading:   "Candidate Shortlisted",
		Fields: []notify.Field{
			{Label: "Candidate", Value: c.Name},
			{Label: "Job Code", Value: c.JobCode},
			{Label: "Client", Value: c.Client},
			{Label: "Skill", Value: c.Skill},
			{Label: "Experience", Value: c.TotalEx},
			{Label: "Status", Value: c.Status},
			{Label: "Status Details", Value: c.Status1},
			{Label: "Mobile", Value: c.Mobile},
			{Label: "Email", Value: c.Email},
		},
		NextSteps: "Prepare offer letter and salary negotiation.",
	}
}
