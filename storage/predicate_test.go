package storage

import (
	"testing"
	"time"

	"github.com/poiesic/netsight/core"
	"github.com/stretchr/testify/assert"
)

func TestPredicate_Matches(t *testing.T) {
	jane := &core.Person{
		Id:          1,
		Name:        "Jane Doe",
		Company:     "Acme Corp",
		ConnectedOn: time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"company key", Predicate{CompanyKey: "acme corp"}, true},
		{"other company", Predicate{CompanyKey: "globex"}, false},
		{"name substring any case", Predicate{NameContains: "DOE"}, true},
		{"name mismatch", Predicate{NameContains: "smith"}, false},
		{"inclusive lower bound", Predicate{ConnectedAfter: jane.ConnectedOn}, true},
		{"inclusive upper bound", Predicate{ConnectedBefore: jane.ConnectedOn}, true},
		{"before lower bound", Predicate{ConnectedAfter: jane.ConnectedOn.AddDate(0, 0, 1)}, false},
		{"after upper bound", Predicate{ConnectedBefore: jane.ConnectedOn.AddDate(0, 0, -1)}, false},
		{"bound with time of day", Predicate{ConnectedBefore: jane.ConnectedOn.Add(5 * time.Hour)}, true},
		{
			"all constraints",
			Predicate{CompanyKey: "acme corp", NameContains: "jane", ConnectedAfter: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Matches(jane))
		})
	}
}

func TestPredicate_MatchesUndated(t *testing.T) {
	undated := &core.Person{Id: 2, Name: "Sam Undated", Company: "Acme Corp"}
	bound := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Predicate{CompanyKey: "acme corp"}.Matches(undated))
	assert.False(t, Predicate{ConnectedBefore: bound}.Matches(undated))
	assert.False(t, Predicate{ConnectedAfter: bound.AddDate(-50, 0, 0)}.Matches(undated))
	assert.False(t, Predicate{CompanyKey: "acme corp", ConnectedBefore: bound}.Matches(undated))
}

func TestPredicate_Validate(t *testing.T) {
	after := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, Predicate{ConnectedAfter: after}.Validate())
	assert.NoError(t, Predicate{ConnectedAfter: after, ConnectedBefore: after}.Validate())
	assert.ErrorIs(t, Predicate{ConnectedAfter: after, ConnectedBefore: after.AddDate(0, 0, -1)}.Validate(), ErrInvalidQuery)
}

func TestPredicate_IsEmpty(t *testing.T) {
	assert.True(t, Predicate{}.IsEmpty())
	assert.False(t, Predicate{NameContains: "x"}.IsEmpty())
}
