package candidates

// CreateCandidateRequest is the body of the create action. Name, email and
// mobile are required; everything else is optional.
type CreateCandidateRequest struct {
	Date            string `json:"date" validate:"max=50"`
	JobCode         string `json:"jobCode" validate:"max=100"`
	JobCategory     string `json:"jobCategory" validate:"max=100"`
	Client          string `json:"client" validate:"max=200"`
	ClientName      string `json:"clientName" validate:"max=200"`
	ClientSpoc      string `json:"clientSpoc" validate:"max=200"`
	Skill           string `json:"skill" validate:"max=500"`
	Source          string `json:"source" validate:"max=100"`
	CurrentLocation string `json:"currentLocation" validate:"max=200"`
	WorkLocation    string `json:"workLocation" validate:"max=200"`
	Location        string `json:"location" validate:"max=200"`
	Name            string `json:"name" validate:"required,max=200"`
	Mobile          string `json:"mobile" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Status          string `json:"status" validate:"max=100"`
	Status1         string `json:"status1" validate:"max=100"`
	Education       string `json:"education" validate:"max=200"`
	TotalEx         string `json:"totalEx" validate:"max=50"`
	Rex             string `json:"rex" validate:"max=50"`
	CCTC            string `json:"cctc" validate:"max=50"`
	ECTC            string `json:"ectc" validate:"max=50"`
	Notice          string `json:"notice" validate:"max=50"`
	CurrentCompany  string `json:"currentCompany" validate:"max=200"`
	Remarks         string `json:"remarks" validate:"max=2000"`
	Recruiter       string `json:"recruiter" validate:"max=200"`
	AM              string `json:"am" validate:"max=200"`
}

// UpdateCandidateRequest merges supplied fields. Nil means unchanged.
type UpdateCandidateRequest struct {
	Date            *string `json:"date,omitempty"`
	JobCode         *string `json:"jobCode,omitempty"`
	JobCategory     *string `json:"jobCategory,omitempty"`
	Client          *string `json:"client,omitempty"`
	ClientName      *string `json:"clientName,omitempty"`
	ClientSpoc      *string `json:"clientSpoc,omitempty"`
	Skill           *string `json:"skill,omitempty"`
	Source          *string `json:"source,omitempty"`
	CurrentLocation *string `json:"currentLocation,omitempty"`
	WorkLocation    *string `json:"workLocation,omitempty"`
	Location        *string `json:"location,omitempty"`
	Name            *string `json:"name,omitempty"`
	Mobile          *string `json:"mobile,omitempty"`
	Email           *string `json:"email,omitempty"`
	Status          *string `json:"status,omitempty"`
	Status1         *string `json:"status1,omitempty"`
	Education       *string `json:"education,omitempty"`
	TotalEx         *string `json:"totalEx,omitempty"`
	Rex             *string `json:"rex,omitempty"`
	CCTC            *string `json:"cctc,omitempty"`
	ECTC            *string `json:"ectc,omitempty"`
	Notice          *string `json:"notice,omitempty"`
	CurrentCompany  *string `json:"currentCompany,omitempty"`
	Remarks         *string `json:"remarks,omitempty"`
	Recruiter       *string `json:"recruiter,omitempty"`
	AM              *string `json:"am,omitempty"`
}

// IsEmpty reports whether no field was supplied.
func (r UpdateCandidateRequest) IsEmpty() bool {
	return r == UpdateCandidateRequest{}
}

func (r CreateCandidateRequest) toCandidate() Candidate {
	return Candidate{
		Date:            r.Date,
		JobCode:         r.JobCode,
		JobCategory:     r.JobCategory,
		Client:          r.Client,
		ClientName:      r.ClientName,
		ClientSpoc:      r.ClientSpoc,
		Skill:           r.Skill,
		Source:          r.Source,
		CurrentLocation: r.CurrentLocation,
		WorkLocation:    r.WorkLocation,
		Location:        r.Location,
		Name:            r.Name,
		Mobile:          r.Mobile,
		Email:           r.Email,
		Status:          r.Status,
		Status1:         r.Status1,
		Education:       r.Education,
		TotalEx:         r.TotalEx,
		Rex:             r.Rex,
		CCTC:            r.CCTC,
		ECTC:            r.ECTC,
		Notice:          r.Notice,
		CurrentCompany:  r.CurrentCompany,
		Remarks:         r.Remarks,
		Recruiter:       r.Recruiter,
		AM:              r.AM,
	}
}

func set(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// apply merges the supplied fields into c.
func (r UpdateCandidateRequest) apply(c *Candidate) {
	set(&c.Date, r.Date)
	set(&c.JobCode, r.JobCode)
	set(&c.JobCategory, r.JobCategory)
	set(&c.Client, r.Client)
	set(&c.ClientName, r.ClientName)
	set(&c.ClientSpoc, r.ClientSpoc)
	set(&c.Skill, r.Skill)
	set(&c.Source, r.Source)
	set(&c.CurrentLocation, r.CurrentLocation)
	set(&c.WorkLocation, r.WorkLocation)
	set(&c.Location, r.Location)
	set(&c.Name, r.Name)
	set(&c.Mobile, r.Mobile)
	set(&c.Email, r.Email)
	set(&c.Status, r.Status)
	set(&c.Status1, r.Status1)
	set(&c.Education, r.Education)
	set(&c.TotalEx, r.TotalEx)
	set(&c.Rex, r.Rex)
	set(&c.CCTC, r.CCTC)
	set(&c.ECTC, r.ECTC)
	set(&c.Notice, r.Notice)
	set(&c.CurrentCompany, r.CurrentCompany)
	set(&c.Remarks, r.Remarks)
	set(&c.Recruiter, r.Recruiter)
	set(&c.AM, r.AM)
}

// fromCandidate rebuilds a create request for post-merge validation.
func fromCandidate(c Candidate) CreateCandidateRequest {
	return CreateCandidateRequest{
		Date: c.Date, JobCode: c.JobCode, JobCategory: c.JobCategory, Client: c.Client,
		ClientName: c.ClientName, ClientSpoc: c.ClientSpoc, Skill: c.Skill, Source: c.Source,
		CurrentLocation: c.CurrentLocation, WorkLocation: c.WorkLocation, Location: c.Location,
		Name: c.Name, Mobile: c.Mobile, Email: c.Email, Status: c.Status, Status1: c.Status1,
		Education: c.Education, TotalEx: c.TotalEx, Rex: c.Rex, CCTC: c.CCTC, ECTC: c.ECTC,
		Notice: c.Notice, CurrentCompany: c.CurrentCompany, Remarks: c.Remarks,
		Recruiter: c.Recruiter, AM: c.AM,
	}
}
