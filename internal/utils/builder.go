package querybuilder

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles SELECT and INSERT statements with "?" placeholders.
// Rebind the result for the target driver before executing it.
type QueryBuilder interface {
	Select(cols ...string) QueryBuilder
	From(table string) QueryBuilder
	Into(table string) QueryBuilder
	Where(clause string, args ...interface{}) QueryBuilder

	Or(clause string, args ...interface{}) QueryBuilder
	And(clause string, args ...interface{}) QueryBuilder

	OrderBy(col string, asc bool) QueryBuilder
	Limit(n int) QueryBuilder

	Insert(cols ...string) QueryBuilder
	Values(values ...interface{}) QueryBuilder

	OnConflict(cols ...string) QueryBuilder
	DoNothing() QueryBuilder
	SetExclude(cols ...string) QueryBuilder

	Build() (string, []interface{})
}

type CondType int

const (
	CondTypeAnd CondType = iota + 1
	CondTypeOr
)

func (c CondType) ToString() string {
	if c == CondTypeOr {
		return "OR"
	}
	return "AND"
}

type Condition struct {
	condType CondType
	clause   string
	args     []interface{}
}

// InsertRows holds one slice of values per inserted row
type InsertRows [][]interface{}

type queryBuilder struct {
	table       string
	cols        []string
	conditions  []Condition
	values      InsertRows
	orderBy     []string
	limit       int
	excludeCols []string
	onConflict  []string
	schema      string
}

func (q *queryBuilder) DoNothing() QueryBuilder {
	q.excludeCols = nil
	return q
}

func (q *queryBuilder) SetExclude(cols ...string) QueryBuilder {
	q.excludeCols = cols
	return q
}

func (q *queryBuilder) OnConflict(cols ...string) QueryBuilder {
	q.onConflict = cols
	return q
}

func (q *queryBuilder) Select(cols ...string) QueryBuilder {
	q.cols = append(q.cols, cols...)
	return q
}

func (q *queryBuilder) Insert(cols ...string) QueryBuilder {
	q.cols = cols
	return q
}

func (q *queryBuilder) Values(values ...interface{}) QueryBuilder {
	q.values = append(q.values, values)
	return q
}

func (q *queryBuilder) Or(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{condType: CondTypeOr, clause: clause, args: args})
	return q
}

func (q *queryBuilder) And(clause string, args ...interface{}) QueryBuilder {
	q.conditions = append(q.conditions, Condition{condType: CondTypeAnd, clause: clause, args: args})
	return q
}

func (q *queryBuilder) Where(clause string, args ...interface{}) QueryBuilder {
	return q.And(clause, args...)
}

func (q *queryBuilder) OrderBy(col string, asc bool) QueryBuilder {
	orderVector := "ASC"
	if !asc {
		orderVector = "DESC"
	}
	q.orderBy = append(q.orderBy, fmt.Sprintf("%s %s", col, orderVector))
	return q
}

func (q *queryBuilder) Limit(n int) QueryBuilder {
	q.limit = n
	return q
}

func (q *queryBuilder) From(table string) QueryBuilder {
	q.table = table
	return q
}

func (q *queryBuilder) Into(table string) QueryBuilder {
	q.table = table
	return q
}

func buildCondition(conditions []Condition) (string, []interface{}) {
	parts := make([]string, 0, len(conditions)*2)
	args := make([]interface{}, 0)

	for i, cond := range conditions {
		if i > 0 {
			parts = append(parts, cond.condType.ToString())
		}
		parts = append(parts, cond.clause)
		args = append(args, cond.args...)
	}

	return strings.Join(parts, " "), args
}

// Build renders the statement. An INSERT whose rows do not match its columns
// renders as an empty query.
func (q *queryBuilder) Build() (string, []interface{}) {
	if len(q.values) > 0 {
		return q.buildInsert()
	}
	return q.buildSelect()
}

func (q *queryBuilder) tableName() string {
	if q.schema == "" {
		return q.table
	}
	return q.schema + "." + q.table
}

func (q *queryBuilder) buildSelect() (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(q.cols, ", "), q.tableName())

	var args []interface{}

	if len(q.conditions) > 0 {
		condition, condArgs := buildCondition(q.conditions)
		query += fmt.Sprintf(" WHERE %s", condition)
		args = append(args, condArgs...)
	}

	if len(q.orderBy) > 0 {
		query += fmt.Sprintf(" ORDER BY %s", strings.Join(q.orderBy, ", "))
	}

	if q.limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.limit)
	}

	return query, args
}

func (q *queryBuilder) buildInsert() (string, []interface{}) {
	numOfParam := len(q.cols)
	if numOfParam == 0 {
		return "", nil
	}

	valueTuples := make([]string, len(q.values))
	args := make([]interface{}, 0, numOfParam*len(q.values))
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", numOfParam), ", ")
	for i, row := range q.values {
		if len(row) != numOfParam {
			return "", nil
		}
		args = append(args, row...)
		valueTuples[i] = fmt.Sprintf("(%s)", placeholders)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", q.tableName(), strings.Join(q.cols, ", "), strings.Join(valueTuples, ", "))

	if len(q.onConflict) > 0 {
		query += fmt.Sprintf(" ON CONFLICT (%s)", strings.Join(q.onConflict, ", "))
		if len(q.excludeCols) == 0 {
			return query + " DO NOTHING", args
		}
		sets := make([]string, 0, len(q.excludeCols))
		for _, col := range q.excludeCols {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
		query += " DO UPDATE SET " + strings.Join(sets, ", ")
	}
	return query, args
}

func NewQueryBuilder(schema string) QueryBuilder {
	return &queryBuilder{
		schema: schema,
	}
}
