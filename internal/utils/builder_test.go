package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSelect(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Select("job_id", "status").
		From("job_outcomes").
		Where("status = ?", "failed").
		And("job_type = ?", "email").
		Or("queue = ?", "critical").
		OrderBy("finished_at", false).
		Limit(10).
		Build()

	assert.Equal(t, "SELECT job_id, status FROM public.job_outcomes WHERE status = ? AND job_type = ? OR queue = ? ORDER BY finished_at DESC LIMIT ?", query)
	assert.Equal(t, []interface{}{"failed", "email", "critical", 10}, args)
}

func TestBuildSelectWithoutSchemaOrConditions(t *testing.T) {
	query, args := NewQueryBuilder("").Select("job_id").From("job_outcomes").OrderBy("job_id", true).Build()

	assert.Equal(t, "SELECT job_id FROM job_outcomes ORDER BY job_id ASC", query)
	assert.Empty(t, args)
}

func TestBuildInsert(t *testing.T) {
	query, args := NewQueryBuilder("public").
		Insert("job_id", "status").
		Into("job_outcomes").
		Values("a1", "acked").
		Values("b2", "failed").
		Build()

	assert.Equal(t, "INSERT INTO public.job_outcomes (job_id, status) VALUES (?, ?), (?, ?)", query)
	assert.Equal(t, []interface{}{"a1", "acked", "b2", "failed"}, args)
}

func TestBuildInsertOnConflict(t *testing.T) {
	query, _ := NewQueryBuilder("").
		Insert("job_id", "status").
		Into("job_outcomes").
		Values("a1", "acked").
		OnConflict("job_id").
		DoNothing().
		Build()
	assert.Equal(t, "INSERT INTO job_outcomes (job_id, status) VALUES (?, ?) ON CONFLICT (job_id) DO NOTHING", query)

	query, _ = NewQueryBuilder("").
		Insert("job_id", "status").
		Into("job_outcomes").
		Values("a1", "acked").
		OnConflict("job_id").
		SetExclude("status").
		Build()
	assert.Equal(t, "INSERT INTO job_outcomes (job_id, status) VALUES (?, ?) ON CONFLICT (job_id) DO UPDATE SET status = EXCLUDED.status", query)
}

func TestBuildInsertMismatchedRow(t *testing.T) {
	query, args := NewQueryBuilder("").Insert("job_id", "status").Into("job_outcomes").Values("a1").Build()

	assert.Empty(t, query)
	assert.Nil(t, args)
}
