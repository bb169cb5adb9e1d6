package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// conditions collects AND-ed WHERE clauses. Each "?" in a clause is bound to
// the clause's single argument as the next positional parameter.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(c.args))))
}

// from renders "<from> WHERE 1=1 [AND ...]".
func (c *conditions) from(from string) string {
	base := from + " WHERE 1=1"
	if len(c.clauses) > 0 {
		base += " AND " + strings.Join(c.clauses, " AND ")
	}
	return base
}

// sortClause resolves a requested sort key against an allow list. Unknown
// keys fall back to fallback and any direction other than DESC is ASC.
func sortClause(requested, direction string, allowed map[string]string, fallback string) string {
	column, ok := allowed[requested]
	if !ok {
		column = fallback
	}
	if strings.EqualFold(direction, "DESC") {
		return column + " DESC"
	}
	return column + " ASC"
}

// pageClause clamps page and size and renders LIMIT/OFFSET.
func pageClause(page, size int) string {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", size, (page-1)*size)
}

// selectPage runs the page query and its COUNT(*) over the same base.
func selectPage(ctx context.Context, db *sqlx.DB, dest interface{}, columns, base, order, page string, args []interface{}) (int, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s", columns, base, order, page)
	if err := db.SelectContext(ctx, dest, query, args...); err != nil {
		return 0, err
	}
	var total int
	if err := db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return 0, err
	}
	return total, nil
}
