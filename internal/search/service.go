package search

import (
	"context"
	"strings"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
)

// Request is the body of POST /api/candidates/search.
type Request struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Company  string `json:"company"`
	// Keywords is a comma separated list; any one must match the skills.
	Keywords string `json:"keywords"`
}

// CandidateLister supplies the candidates to search.
type CandidateLister interface {
	List(ctx context.Context) ([]candidates.Candidate, error)
}

// Service runs boolean searches over candidates.
type Service struct {
	source CandidateLister
}

// NewService returns a Service reading from source.
func NewService(source CandidateLister) *Service {
	return &Service{source: source}
}

// Search returns the candidates matching the query and every filter, in the
// source's order.
func (s *Service) Search(ctx context.Context, req Request) ([]candidates.Candidate, error) {
	expr, err := Parse(req.Query)
	if err != nil {
		return nil, err
	}
	all, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	location := strings.ToLower(strings.TrimSpace(req.Location))
	company := strings.ToLower(strings.TrimSpace(req.Company))
	keywords := splitKeywords(req.Keywords)

	out := make([]candidates.Candidate, 0)
	for _, c := range all {
		if !expr.Match(strings.ToLower(c.SearchText())) {
			continue
		}
		if location != "" && !containsAny([]string{c.CurrentLocation, c.WorkLocation, c.Location}, location) {
			continue
		}
		if company != "" && !strings.Contains(strings.ToLower(c.CurrentCompany), company) {
			continue
		}
		if len(keywords) > 0 && !matchesKeyword(c, keywords) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func splitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func containsAny(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func matchesKeyword(c candidates.Candidate, keywords []string) bool {
	skill := strings.ToLower(c.Skill)
	for _, k := range keywords {
		if strings.Contains(skill, k) {
			return true
		}
	}
	return false
}
