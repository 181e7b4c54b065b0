package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
	"github.com/odyssey-erp/odyssey-ats/internal/testing/rbactest"
)

func TestParseMatches(t *testing.T) {
	text := "asha rao react node.js accenture senior engineer bengaluru"
	cases := map[string]bool{
		"":                             true,
		"react":                        true,
		"REACT":                        true,
		"react AND java":               false,
		"react OR java":                true,
		"java react":                   true,
		"java python":                  false,
		"NOT java":                     true,
		"react AND NOT accenture":      false,
		"(java OR node.js) AND senior": true,
		`"senior engineer"`:            true,
		`"engineer senior"`:            false,
		"java OR python AND react":     false,
		"react OR python AND java":     true,
		"NOT (java OR python)":         true,
		"react and java":               true,
	}
	for q, want := range cases {
		expr, err := Parse(q)
		require.NoError(t, err, q)
		assert.Equal(t, want, expr.Match(text), q)
	}
}

func TestParsePrecedence(t *testing.T) {
	expr, err := Parse("a OR b AND NOT c")
	require.NoError(t, err)
	assert.Equal(t, "(a OR (b AND NOT c))", expr.String())

	expr, err = Parse("a b")
	require.NoError(t, err)
	assert.Equal(t, "(a OR b)", expr.String())
}

func TestParseErrors(t *testing.T) {
	for _, q := range []string{"(react", "react)", "react AND", "NOT", `"open`, "AND react", "react OR OR java"} {
		_, err := Parse(q)
		require.Error(t, err, q)
		assert.True(t, errors.Is(err, shared.ErrValidation), q)
	}
}

type list []candidates.Candidate

func (l list) List(ctx context.Context) ([]candidates.Candidate, error) { return l, nil }

var pool = list{
	{ID: 1, Name: "Asha", Skill: "React, Node.js", CurrentCompany: "Accenture", CurrentLocation: "Bengaluru"},
	{ID: 2, Name: "Ravi", Skill: "Java, Spring", CurrentCompany: "TCS", CurrentLocation: "Hyderabad"},
	{ID: 3, Name: "Meera", Skill: "React, Java", CurrentCompany: "Infosys", WorkLocation: "Pune"},
}

func names(items []candidates.Candidate) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.Name
	}
	return out
}

func TestServiceFilters(t *testing.T) {
	svc := NewService(pool)
	ctx := context.Background()

	got, err := svc.Search(ctx, Request{Query: "react AND NOT java"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha"}, names(got))

	got, err = svc.Search(ctx, Request{Keywords: "spring, node"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha", "Ravi"}, names(got))

	got, err = svc.Search(ctx, Request{Query: "java", Location: "pune"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Meera"}, names(got))

	got, err = svc.Search(ctx, Request{Company: "tcs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ravi"}, names(got))
}

func TestHandler(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, NewService(pool), rbactest.Middleware()).MountRoutes(r)

	req := rbactest.As(httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"(react"}`)), 1, rbac.RoleViewer)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unbalanced parentheses")

	req = rbactest.As(httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"java"}`)), 1, rbac.RoleViewer)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Meera")
}
