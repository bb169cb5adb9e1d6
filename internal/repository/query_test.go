package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionsNumberPlaceholders(t *testing.T) {
	var where conditions
	assert.Equal(t, "FROM course_terms WHERE 1=1", where.from("FROM course_terms"))

	where.add("cy.name = ?", "2024")
	where.add("(a LIKE ? OR b LIKE ?)", "%x%")
	assert.Equal(t, "FROM t WHERE 1=1 AND cy.name = $1 AND (a LIKE $2 OR b LIKE $2)", where.from("FROM t"))
	assert.Equal(t, []interface{}{"2024", "%x%"}, where.args)
}

func TestSortClause(t *testing.T) {
	allowed := map[string]string{"code": "cc.name"}
	assert.Equal(t, "cc.name DESC", sortClause("code", "desc", allowed, "c.id"))
	assert.Equal(t, "c.id ASC", sortClause("code; DROP TABLE courses", "DESC", allowed, "c.id"))
	assert.Equal(t, "cc.name ASC", sortClause("code", "sideways", allowed, "c.id"))
}

func TestPageClause(t *testing.T) {
	assert.Equal(t, "LIMIT 20 OFFSET 0", pageClause(0, 0))
	assert.Equal(t, "LIMIT 10 OFFSET 20", pageClause(3, 10))
	assert.Equal(t, "LIMIT 20 OFFSET 20", pageClause(2, 500))
}
