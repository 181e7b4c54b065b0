// Package reports aggregates pipeline counts for the reports dashboard.
package reports

import "time"

// StatusCount is the number of rows carrying one status value.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// Section summarises one entity.
type Section struct {
	Total    int64         `json:"total"`
	ByStatus []StatusCount `json:"byStatus"`
}

// Summary is the body of GET /api/reports/summary.
type Summary struct {
	Candidates  Section   `json:"candidates"`
	Jobs        Section   `json:"jobs"`
	Interviews  Section   `json:"interviews"`
	Hires       int64     `json:"hires"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Entity names a counted table.
type Entity string

// Counted entities.
const (
	EntityCandidates Entity = "candidates"
	EntityJobs       Entity = "jobs"
	EntityInterviews Entity = "interviews"
)

var hireStatuses = map[string]bool{"hired": true, "joined": true}

func newSection(counts []StatusCount) Section {
	s := Section{ByStatus: counts}
	if s.ByStatus == nil {
		s.ByStatus = []StatusCount{}
	}
	for _, c := range counts {
		s.Total += c.Count
	}
	return s
}

func countHires(counts []StatusCount) int64 {
	var n int64
	for _, c := range counts {
		if hireStatuses[lower(c.Status)] {
			n += c.Count
		}
	}
	return n
}
