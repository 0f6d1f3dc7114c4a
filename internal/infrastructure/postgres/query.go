package postgres

import (
	"strconv"
	"strings"

	"github.com/villagemarket/village-market/internal/domain/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed conditions. Each "?" in a condition is replaced
// by the next positional parameter.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, vals ...any) {
	for _, v := range vals {
		w.args = append(w.args, v)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paginate appends LIMIT/OFFSET parameters and returns the clause.
func (w *where) paginate(p repository.Page) string {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	w.args = append(w.args, limit, offset)
	n := len(w.args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n)
}

func likePattern(q string) string {
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(q))
	return "%" + q + "%"
}

type countRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCounts(rows countRows) (map[string]int, error) {
	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, mapErr(err)
		}
		out[key] = n
	}
	return out, mapErr(rows.Err())
}
