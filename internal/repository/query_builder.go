package repository

import (
	"fmt"
	"strings"
)

// Placeholder selects the bind parameter syntax of the target driver.
type Placeholder int

const (
	// Dollar renders $1, $2, ... as pgx expects.
	Dollar Placeholder = iota
	// Question renders ? as database/sql sqlite drivers expect.
	Question
)

// QueryBuilder helps build WHERE, SET and LIMIT clauses safely.
type QueryBuilder struct {
	placeholder Placeholder
	conditions  []string
	assignments []string
	args        []any
	argCount    int
}

func NewQueryBuilder(placeholder Placeholder) *QueryBuilder {
	return &QueryBuilder{
		placeholder: placeholder,
		conditions:  []string{},
		assignments: []string{},
		args:        []any{},
		argCount:    1,
	}
}

// Bind records value as the next argument and returns its placeholder.
func (qb *QueryBuilder) Bind(value any) string {
	qb.args = append(qb.args, value)
	var ph string
	if qb.placeholder == Dollar {
		ph = fmt.Sprintf("$%d", qb.argCount)
	} else {
		ph = "?"
	}
	qb.argCount++
	return ph
}

func (qb *QueryBuilder) AddCondition(column string, value any) {
	qb.conditions = append(qb.conditions, fmt.Sprintf("%s = %s", column, qb.Bind(value)))
}

func (qb *QueryBuilder) AddAssignment(column string, value any) {
	qb.assignments = append(qb.assignments, fmt.Sprintf("%s = %s", column, qb.Bind(value)))
}

func (qb *QueryBuilder) WhereClause() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func (qb *QueryBuilder) SetClause() string {
	if len(qb.assignments) == 0 {
		return ""
	}
	return "SET " + strings.Join(qb.assignments, ", ")
}

// HasAssignments reports whether any SET column was added.
func (qb *QueryBuilder) HasAssignments() bool {
	return len(qb.assignments) > 0
}

// Paginate binds limit and offset and returns the clause.
func (qb *QueryBuilder) Paginate(limit, offset int) string {
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf("LIMIT %s OFFSET %s", qb.Bind(limit), qb.Bind(offset))
}

func (qb *QueryBuilder) Args() []any {
	return qb.args
}
