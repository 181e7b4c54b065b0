package jobposts

// CreateJobRequest is the body of the create action.
type CreateJobRequest struct {
	JobCode             string `json:"jobCode" validate:"required,max=100"`
	Title               string `json:"title" validate:"max=200"`
	Client              string `json:"client" validate:"required,max=200"`
	ClientSpoc          string `json:"clientSpoc" validate:"max=200"`
	Skill               string `json:"skill" validate:"required,max=500"`
	WorkLocation        string `json:"workLocation" validate:"max=200"`
	JobCategory         string `json:"jobCategory" validate:"max=100"`
	OpenPositions       *int   `json:"openPositions" validate:"omitempty,gte=1,lte=10000"`
	TeamLead            string `json:"teamLead" validate:"max=200"`
	PrincipalConsultant string `json:"principalConsultant" validate:"max=200"`
	Budget              string `json:"budget" validate:"max=100"`
	Description         string `json:"description" validate:"max=10000"`
	Requirements        string `json:"requirements" validate:"max=10000"`
	SalaryRange         string `json:"salaryRange" validate:"max=100"`
	Status              string `json:"status" validate:"omitempty,oneof=Active Filled Closed"`
}

// UpdateJobRequest changes the supplied, non-empty fields.
type UpdateJobRequest struct {
	JobCode             *string `json:"jobCode,omitempty" validate:"omitempty,max=100"`
	Title               *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Client              *string `json:"client,omitempty" validate:"omitempty,max=200"`
	ClientSpoc          *string `json:"clientSpoc,omitempty" validate:"omitempty,max=200"`
	Skill               *string `json:"skill,omitempty" validate:"omitempty,max=500"`
	WorkLocation        *string `json:"workLocation,omitempty" validate:"omitempty,max=200"`
	JobCategory         *string `json:"jobCategory,omitempty" validate:"omitempty,max=100"`
	OpenPositions       *int    `json:"openPositions,omitempty" validate:"omitempty,gte=1,lte=10000"`
	TeamLead            *string `json:"teamLead,omitempty" validate:"omitempty,max=200"`
	PrincipalConsultant *string `json:"principalConsultant,omitempty" validate:"omitempty,max=200"`
	Budget              *string `json:"budget,omitempty" validate:"omitempty,max=100"`
	Description         *string `json:"description,omitempty" validate:"omitempty,max=10000"`
	Requirements        *string `json:"requirements,omitempty" validate:"omitempty,max=10000"`
	SalaryRange         *string `json:"salaryRange,omitempty" validate:"omitempty,max=100"`
	Status              *string `json:"status,omitempty" validate:"omitempty,oneof=Active Filled Closed"`
}

// columns maps the supplied, non-empty fields to their column names.
func (r UpdateJobRequest) columns() map[string]interface{} {
	out := make(map[string]interface{})
	for col, v := range map[string]*string{
		"job_code":             r.JobCode,
		"title":                r.Title,
		"client":               r.Client,
		"client_spoc":          r.ClientSpoc,
		"skill":                r.Skill,
		"work_location":        r.WorkLocation,
		"job_category":         r.JobCategory,
		"team_lead":            r.TeamLead,
		"principal_consultant": r.PrincipalConsultant,
		"budget":               r.Budget,
		"description":          r.Description,
		"requirements":         r.Requirements,
		"salary_range":         r.SalaryRange,
		"status":               r.Status,
	} {
		if v != nil && *v != "" {
			out[col] = *v
		}
	}
	if r.OpenPositions != nil {
		out["open_positions"] = *r.OpenPositions
	}
	return out
}
