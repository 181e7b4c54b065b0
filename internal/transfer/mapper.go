package transfer

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
)

// Import field names.
const (
	FieldName               = "name"
	FieldEmail              = "email"
	FieldMobile             = "mobile"
	FieldCurrentLocation    = "currentLocation"
	FieldWorkLocation       = "workLocation"
	FieldEducation          = "education"
	FieldTotalExperience    = "totalExperience"
	FieldRelevantExperience = "relevantExperience"
	FieldCurrentCTC         = "currentCTC"
	FieldExpectedCTC        = "expectedCTC"
	FieldNoticePeriod       = "noticePeriod"
	FieldCurrentCompany     = "currentCompany"
	FieldSkill              = "skill"
	FieldSource             = "source"
	FieldStatus             = "status"
	FieldRemarks            = "remarks"
)

type importField struct {
	name    string
	aliases []string
	set     func(*candidates.CreateCandidateRequest, string)
}

var importFields = []importField{
	{FieldName, []string{"name", "candidate name", "full name", "candidate_name"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Name = v }},
	{FieldEmail, []string{"email", "email address", "email_address", "mail"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Email = v }},
	{FieldMobile, []string{"mobile", "phone", "contact", "mobile number", "phone_number"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Mobile = v }},
	{FieldCurrentLocation, []string{"current location", "location", "current_location", "city"},
		func(r *candidates.CreateCandidateRequest, v string) { r.CurrentLocation = v }},
	{FieldWorkLocation, []string{"work location", "preferred location", "work_location", "preferred_location"},
		func(r *candidates.CreateCandidateRequest, v string) { r.WorkLocation = v }},
	{FieldEducation, []string{"education", "qualification", "degree", "educational_qualification"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Education = v }},
	{FieldTotalExperience, []string{"total experience", "experience", "total_experience", "exp"},
		func(r *candidates.CreateCandidateRequest, v string) { r.TotalEx = v }},
	{FieldRelevantExperience, []string{"relevant experience", "relevant_experience", "rel_exp"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Rex = v }},
	{FieldCurrentCTC, []string{"current ctc", "current salary", "current_ctc", "ctc"},
		func(r *candidates.CreateCandidateRequest, v string) { r.CCTC = v }},
	{FieldExpectedCTC, []string{"expected ctc", "expected salary", "expected_ctc", "exp_ctc"},
		func(r *candidates.CreateCandidateRequest, v string) { r.ECTC = v }},
	{FieldNoticePeriod, []string{"notice period", "notice_period", "np"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Notice = v }},
	{FieldCurrentCompany, []string{"current company", "company", "current_company", "employer"},
		func(r *candidates.CreateCandidateRequest, v string) { r.CurrentCompany = v }},
	{FieldSkill, []string{"skills", "skill", "technology", "tech_skills"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Skill = v }},
	{FieldSource, []string{"source", "channel", "recruitment_source"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Source = v }},
	{FieldStatus, []string{"status", "candidate_status"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Status = v }},
	{FieldRemarks, []string{"remarks", "comments", "notes", "description"},
		func(r *candidates.CreateCandidateRequest, v string) { r.Remarks = v }},
}

var fold = cases.Fold()

// NormalizeHeader case folds h, trims it and collapses inner whitespace.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Join(strings.Fields(fold.String(h)), " ")
}

// Mapping assigns import fields to CSV column indexes.
type Mapping map[string]int

// MapHeaders matches file headers to import fields. Exact matches against a
// field name or alias win; remaining fields then take the first unclaimed
// header that contains, or is contained in, one of their names. A header is
// used by at most one field and blank headers are never used.
func MapHeaders(headers []string) Mapping {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = NormalizeHeader(h)
	}
	claimed := make([]bool, len(headers))
	out := make(Mapping, len(importFields))

	candidatesFor := func(f importField) []string {
		names := make([]string, 0, len(f.aliases)+1)
		names = append(names, NormalizeHeader(f.name))
		for _, a := range f.aliases {
			names = append(names, NormalizeHeader(a))
		}
		return names
	}

	for _, f := range importFields {
		names := candidatesFor(f)
		for i, h := range norm {
			if claimed[i] || h == "" {
				continue
			}
			if containsString(names, h) {
				out[f.name] = i
				claimed[i] = true
				break
			}
		}
	}

	for _, f := range importFields {
		if _, ok := out[f.name]; ok {
			continue
		}
		names := candidatesFor(f)
	headers:
		for i, h := range norm {
			if claimed[i] || h == "" {
				continue
			}
			for _, n := range names {
				if strings.Contains(h, n) || strings.Contains(n, h) {
					out[f.name] = i
					claimed[i] = true
					break headers
				}
			}
		}
	}
	return out
}

// Apply builds a create request from one CSV record.
func (m Mapping) Apply(record []string) candidates.CreateCandidateRequest {
	var req candidates.CreateCandidateRequest
	for _, f := range importFields {
		idx, ok := m[f.name]
		if !ok || idx >= len(record) {
			continue
		}
		f.set(&req, strings.TrimSpace(record[idx]))
	}
	return req
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
