package postgres

import (
	"fmt"
	"strings"

	"callboard/internal/timewindow"
)

// condSet is the one filter shape list queries need: an inclusive window on
// the record's primary timestamp plus an optional equality condition.
type condSet struct {
	timeField  string
	window     *timewindow.Window
	equalField string
	equalValue string
}

// buildWhere renders a WHERE clause (with leading space) and its positional
// args. Empty conditions are omitted; an empty result means no clause.
func buildWhere(c condSet) (string, []any) {
	var parts []string
	var args []any

	if c.window != nil {
		args = append(args, c.window.Start)
		parts = append(parts, fmt.Sprintf("%s >= $%d", c.timeField, len(args)))
		args = append(args, c.window.End)
		parts = append(parts, fmt.Sprintf("%s <= $%d", c.timeField, len(args)))
	}
	if c.equalValue != "" {
		args = append(args, c.equalValue)
		parts = append(parts, fmt.Sprintf("%s = $%d", c.equalField, len(args)))
	}

	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// setClause accumulates SET assignments for a patch UPDATE.
type setClause struct {
	parts []string
	args  []any
}

func newSetClause() *setClause { return &setClause{} }

func (s *setClause) add(column string, value any) {
	s.args = append(s.args, value)
	s.parts = append(s.parts, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setClause) sql() string { return strings.Join(s.parts, ", ") }
