package query_test

import (
	"slices"
	"testing"

	"github.com/MGhunch/dot-file/pkg/query"
)

var activity = query.NewProjection("filing_activity", "a").
	Field("ID", "id").
	Field("JobNumber", "job_number").
	Field("State", "state").
	Field("FiledAt", "filed_at")

func TestBuilderPage(t *testing.T) {
	state := "filed"
	sql, args := query.NewBuilder(activity, query.Order{Field: "FiledAt", Desc: true}).
		EqualsFold("JobNumber", "sky 045").
		Equals("State", &state).
		Page(25, 50)

	want := "SELECT a.id, a.job_number, a.state, a.filed_at FROM filing_activity a " +
		"WHERE LOWER(a.job_number) = LOWER($1) AND a.state = $2 ORDER BY a.filed_at DESC LIMIT 25 OFFSET 50"
	if sql != want {
		t.Errorf("sql =\n%s\nwant\n%s", sql, want)
	}
	if len(args) != 2 || args[0] != "sky 045" {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderSkipsEmpty(t *testing.T) {
	var nilState *string
	sql, args := query.NewBuilder(activity).
		Equals("State", nilState).
		Equals("JobNumber", "").
		Contains("JobNumber", "").
		Count()

	if sql != "SELECT COUNT(*) FROM filing_activity a" {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderContainsAndOne(t *testing.T) {
	sql, args := query.NewBuilder(activity).Contains("JobNumber", "SKY").One()

	want := "SELECT a.id, a.job_number, a.state, a.filed_at FROM filing_activity a WHERE a.job_number ILIKE $1 LIMIT 1"
	if sql != want {
		t.Errorf("sql = %s", sql)
	}
	if !slices.Equal(args, []any{"%SKY%"}) {
		t.Errorf("args = %v", args)
	}
}

func TestUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	query.NewBuilder(activity).Equals("Nope", "x")
}
