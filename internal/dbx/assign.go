package dbx

import (
	"fmt"
	"strings"
)

// Placeholder renders the n-th (1-based) bind parameter.
type Placeholder func(n int) string

// Dollar renders Postgres-style $n parameters.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Question renders SQLite-style ? parameters.
func Question(int) string { return "?" }

// Assignments collects "col = value" pairs for a partial UPDATE. Only the
// columns added end up in the SET list.
type Assignments struct {
	cols []string
	args []any
}

func (a *Assignments) Add(col string, v any) {
	a.cols = append(a.cols, col)
	a.args = append(a.args, v)
}

// AddRaw adds an assignment whose right-hand side is SQL text without a
// parameter, such as "now()".
func (a *Assignments) AddRaw(col, expr string) {
	a.cols = append(a.cols, col+" = "+expr)
	a.args = append(a.args, rawMarker{})
}

// SQL returns the SET list and its arguments. Parameters are numbered from
// first; the next free number is first+len(args).
func (a *Assignments) SQL(ph Placeholder, first int) (string, []any) {
	parts := make([]string, 0, len(a.cols))
	args := make([]any, 0, len(a.args))
	n := first
	for i, col := range a.cols {
		if _, raw := a.args[i].(rawMarker); raw {
			parts = append(parts, col)
			continue
		}
		parts = append(parts, col+" = "+ph(n))
		args = append(args, a.args[i])
		n++
	}
	return strings.Join(parts, ", "), args
}

type rawMarker struct{}
