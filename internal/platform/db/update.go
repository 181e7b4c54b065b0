package db

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuildUpdate renders "UPDATE table SET updated_at = now, col = $n ... WHERE id = $last"
// for a column -> value map. Columns are emitted in sorted order so the
// statement is deterministic. Keys must be trusted column names.
func BuildUpdate(table string, id int64, updates map[string]interface{}, now time.Time) (string, []interface{}) {
	cols := make([]string, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET updated_at = $1")
	args := []interface{}{now}
	argPos := 2
	for _, col := range cols {
		fmt.Fprintf(&b, ", %s = $%d", col, argPos)
		args = append(args, updates[col])
		argPos++
	}
	fmt.Fprintf(&b, " WHERE id = $%d", argPos)
	args = append(args, id)
	return b.String(), args
}
