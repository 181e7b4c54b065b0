package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildUpdateSortsColumns(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	query, args := BuildUpdate("jobs", 9, map[string]interface{}{"skill": "Go", "client": "Acme"}, now)
	assert.Equal(t, "UPDATE jobs SET updated_at = $1, client = $2, skill = $3 WHERE id = $4", query)
	assert.Equal(t, []interface{}{now, "Acme", "Go", int64(9)}, args)
}
