package transfer

import (
	"io"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/jobposts"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// The import-facing headers match an exact alias in the mapper so an export
// always imports back onto the same fields.
var candidateColumns = []column[candidates.Candidate]{
	{"ID", func(c candidates.Candidate) string { return formatID(c.ID) }},
	{"Date", func(c candidates.Candidate) string { return c.Date }},
	{"Name", func(c candidates.Candidate) string { return c.Name }},
	{"Email", func(c candidates.Candidate) string { return c.Email }},
	{"Mobile", func(c candidates.Candidate) string { return c.Mobile }},
	{"Job Code", func(c candidates.Candidate) string { return c.JobCode }},
	{"Job Category", func(c candidates.Candidate) string { return c.JobCategory }},
	{"Client", func(c candidates.Candidate) string { return c.Client }},
	{"Client Name", func(c candidates.Candidate) string { return c.ClientName }},
	{"Client SPOC", func(c candidates.Candidate) string { return c.ClientSpoc }},
	{"Skill", func(c candidates.Candidate) string { return c.Skill }},
	{"Source", func(c candidates.Candidate) string { return c.Source }},
	{"Current Location", func(c candidates.Candidate) string { return c.CurrentLocation }},
	{"Work Location", func(c candidates.Candidate) string { return c.WorkLocation }},
	{"Location", func(c candidates.Candidate) string { return c.Location }},
	{"Status", func(c candidates.Candidate) string { return c.Status }},
	{"Status1", func(c candidates.Candidate) string { return c.Status1 }},
	{"Education", func(c candidates.Candidate) string { return c.Education }},
	{"Total Experience", func(c candidates.Candidate) string { return c.TotalEx }},
	{"Relevant Experience", func(c candidates.Candidate) string { return c.Rex }},
	{"Current CTC", func(c candidates.Candidate) string { return c.CCTC }},
	{"Expected CTC", func(c candidates.Candidate) string { return c.ECTC }},
	{"Notice Period", func(c candidates.Candidate) string { return c.Notice }},
	{"Current Company", func(c candidates.Candidate) string { return c.CurrentCompany }},
	{"Remarks", func(c candidates.Candidate) string { return c.Remarks }},
	{"Recruiter", func(c candidates.Candidate) string { return c.Recruiter }},
	{"AM", func(c candidates.Candidate) string { return c.AM }},
	{"Created At", func(c candidates.Candidate) string { return formatTime(c.CreatedAt) }},
}

var jobColumns = []column[jobposts.Job]{
	{"ID", func(j jobposts.Job) string { return formatID(j.ID) }},
	{"Job Code", func(j jobposts.Job) string { return j.JobCode }},
	{"Title", func(j jobposts.Job) string { return j.Title }},
	{"Client", func(j jobposts.Job) string { return j.Client }},
	{"Client SPOC", func(j jobposts.Job) string { return j.ClientSpoc }},
	{"Skill", func(j jobposts.Job) string { return j.Skill }},
	{"Work Location", func(j jobposts.Job) string { return j.WorkLocation }},
	{"Job Category", func(j jobposts.Job) string { return j.JobCategory }},
	{"Open Positions", func(j jobposts.Job) string { return strconv.Itoa(j.OpenPositions) }},
	{"Team Lead", func(j jobposts.Job) string { return j.TeamLead }},
	{"Principal Consultant", func(j jobposts.Job) string { return j.PrincipalConsultant }},
	{"Budget", func(j jobposts.Job) string { return j.Budget }},
	{"Salary Range", func(j jobposts.Job) string { return j.SalaryRange }},
	{"Status", func(j jobposts.Job) string { return j.Status }},
	{"Created By", func(j jobposts.Job) string { return j.CreatedBy }},
	{"Created At", func(j jobposts.Job) string { return formatTime(j.CreatedAt) }},
}

// WriteCandidatesCSV writes candidates with a header row.
func WriteCandidatesCSV(w io.Writer, items []candidates.Candidate) error {
	return writeTable(w, candidateColumns, items)
}

// WriteJobsCSV writes jobs with a header row.
func WriteJobsCSV(w io.Writer, items []jobposts.Job) error {
	return writeTable(w, jobColumns, items)
}

// templateRow is the sample offered by the import template download.
var templateRow = map[string]string{
	FieldName:               "John Doe",
	FieldEmail:              "john.doe@example.com",
	FieldMobile:             "9876543210",
	FieldCurrentLocation:    "Mumbai",
	FieldWorkLocation:       "Bangalore",
	FieldEducation:          "B.Tech Computer Science",
	FieldTotalExperience:    "5 years",
	FieldRelevantExperience: "4 years",
	FieldCurrentCTC:         "8 LPA",
	FieldExpectedCTC:        "12 LPA",
	FieldNoticePeriod:       "30 days",
	FieldCurrentCompany:     "Tech Corp",
	FieldSkill:              "React, Node.js, MongoDB",
	FieldSource:             "Naukri",
	FieldStatus:             candidates.StatusNew,
	FieldRemarks:            "Good candidate for frontend role",
}

// WriteImportTemplate writes the import header row and one sample row.
func WriteImportTemplate(w io.Writer) error {
	s := newCSVStreamer(w)
	header := make([]string, len(importFields))
	sample := make([]string, len(importFields))
	for i, f := range importFields {
		header[i] = f.name
		sample[i] = templateRow[f.name]
	}
	if err := s.writeRow(header); err != nil {
		return err
	}
	if err := s.writeRow(sample); err != nil {
		return err
	}
	return s.Flush()
}
