package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventFilter_Empty(t *testing.T) {
	where, args := EventFilter{}.whereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestEventFilter_SingleField(t *testing.T) {
	where, args := EventFilter{UnitID: "u1"}.whereClause()
	assert.Equal(t, " WHERE unit_id = $1", where)
	assert.Equal(t, []any{"u1"}, args)
}

func TestEventFilter_TypesList(t *testing.T) {
	where, args := EventFilter{Types: []string{"arrival", "discharge"}}.whereClause()
	assert.Equal(t, " WHERE event_type IN ($1, $2)", where)
	assert.Equal(t, []any{"arrival", "discharge"}, args)
}

func TestEventFilter_WindowBounds(t *testing.T) {
	// GIVEN a time window
	from := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Minute)

	// THEN the lower bound is exclusive and the upper inclusive
	where, args := EventFilter{From: &from, To: &to}.whereClause()
	assert.Equal(t, " WHERE timestamp > $1 AND timestamp <= $2", where)
	assert.Equal(t, []any{from, to}, args)
}

func TestEventFilter_AllFieldsNumberedInOrder(t *testing.T) {
	from := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	f := EventFilter{
		UnitID:     "u1",
		PatientID:  "p1",
		ScenarioID: "s1",
		Types:      []string{"arrival"},
		From:       &from,
	}
	where, args := f.whereClause()
	assert.Equal(t,
		" WHERE unit_id = $1 AND patient_id = $2 AND scenario_id = $3 AND event_type IN ($4) AND timestamp > $5",
		where)
	assert.Len(t, args, 5)
}

func TestTerminalRunStatus(t *testing.T) {
	assert.False(t, TerminalRunStatus(RunPending))
	assert.False(t, TerminalRunStatus(RunRunning))
	assert.True(t, TerminalRunStatus(RunCompleted))
	assert.True(t, TerminalRunStatus(RunFailed))
}
