package dendro

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellingdate/domain/core"
)

func intPtr(v int) *int { return &v }

// batchModels assigns the shared test model to every record id
func batchModels(records []SeriesRecord) map[core.SeriesID]*FittedModel {
	model := testModel()
	models := make(map[core.SeriesID]*FittedModel, len(records))
	for _, rec := range records {
		models[rec.ID] = model
	}
	return models
}

func TestAggregateDropsRecordWithoutCountOrWaneyEdge(t *testing.T) {
	// nine series, one of them undatable: it is dropped and reported,
	// the other eight aggregate into a contiguous-year table
	records := []SeriesRecord{
		{ID: "s1", LastRingYear: 1400, SapwoodCount: intPtr(2)},
		{ID: "s2", LastRingYear: 1402, SapwoodCount: intPtr(3)},
		{ID: "s3", LastRingYear: 1404, HasWaneyEdge: true},
		{ID: "s4", LastRingYear: 1398, SapwoodCount: intPtr(1)},
		{ID: "s5", LastRingYear: 1401, SapwoodCount: intPtr(4)},
		{ID: "s6", LastRingYear: 1405, HasWaneyEdge: true},
		{ID: "s7", LastRingYear: 1399, SapwoodCount: intPtr(2)},
		{ID: "s8", LastRingYear: 1403, SapwoodCount: intPtr(5)},
		{ID: "bad", LastRingYear: 1400}, // no count, no waney edge
	}

	table, err := Aggregate(context.Background(), records, batchModels(records), false)
	require.NoError(t, err)

	require.Len(t, table.Diagnostics, 1)
	assert.Equal(t, core.SeriesID("bad"), table.Diagnostics[0].SeriesID)
	assert.Len(t, table.Series, 8)
	assert.NotContains(t, table.Series, core.SeriesID("bad"))

	// contiguous axis from the earliest last ring to the latest plus the
	// model support
	require.NotEmpty(t, table.Years)
	assert.Equal(t, 1398, table.Years[0])
	assert.Equal(t, 1405+5, table.Years[len(table.Years)-1])
	for i := 1; i < len(table.Years); i++ {
		assert.Equal(t, table.Years[i-1]+1, table.Years[i])
	}

	// every column is aligned with the axis
	require.Len(t, table.SPD, len(table.Years))
	require.Len(t, table.SPDExact, len(table.Years))
	for id, column := range table.Series {
		assert.Len(t, column, len(table.Years), "series %s", id)
	}
}

func TestAggregateSPDSumsSeriesMasses(t *testing.T) {
	records := []SeriesRecord{
		{ID: "a", LastRingYear: 1400, SapwoodCount: intPtr(2)},
		{ID: "b", LastRingYear: 1410, HasWaneyEdge: true},
	}
	table, err := Aggregate(context.Background(), records, batchModels(records), false)
	require.NoError(t, err)

	// each surviving series contributes total mass 1
	spdTotal := 0.0
	for _, p := range table.SPD {
		spdTotal += p
	}
	assert.InDelta(t, 2.0, spdTotal, 1e-9)

	// the exact column only carries the waney-edge series
	exactTotal := 0.0
	for i, p := range table.SPDExact {
		exactTotal += p
		if p > 0 {
			assert.Equal(t, 1410, table.Years[i])
		}
	}
	assert.InDelta(t, 1.0, exactTotal, 1e-12)
}

func TestAggregateScaleNormalizesPooledCurve(t *testing.T) {
	records := []SeriesRecord{
		{ID: "a", LastRingYear: 1400, SapwoodCount: intPtr(1)},
		{ID: "b", LastRingYear: 1403, SapwoodCount: intPtr(3)},
		{ID: "c", LastRingYear: 1401, HasWaneyEdge: true},
	}
	table, err := Aggregate(context.Background(), records, batchModels(records), true)
	require.NoError(t, err)
	require.True(t, table.Scaled)

	total := 0.0
	for _, p := range table.SPD {
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// the exact column shares the pooled factor: one point mass divided
	// by the batch total of 3
	exactTotal := 0.0
	for _, p := range table.SPDExact {
		exactTotal += p
	}
	assert.InDelta(t, 1.0/3.0, exactTotal, 1e-9)
}

func TestAggregateDiagnosticsForMissingModelAndDuplicates(t *testing.T) {
	model := testModel()
	records := []SeriesRecord{
		{ID: "a", LastRingYear: 1400, SapwoodCount: intPtr(2)},
		{ID: "a", LastRingYear: 1401, SapwoodCount: intPtr(2)}, // duplicate id
		{ID: "orphan", LastRingYear: 1402, SapwoodCount: intPtr(2)},
	}
	models := map[core.SeriesID]*FittedModel{"a": model}

	table, err := Aggregate(context.Background(), records, models, false)
	require.NoError(t, err)
	assert.Len(t, table.Series, 1)
	assert.Len(t, table.Diagnostics, 2)
}

func TestAggregateProjectionFailureIsRecoveredLocally(t *testing.T) {
	records := []SeriesRecord{
		{ID: "ok", LastRingYear: 1400, SapwoodCount: intPtr(2)},
		{ID: "beyond", LastRingYear: 1400, SapwoodCount: intPtr(99)}, // > support
	}
	table, err := Aggregate(context.Background(), records, batchModels(records), false)
	require.NoError(t, err)
	assert.Len(t, table.Series, 1)
	require.Len(t, table.Diagnostics, 1)
	assert.Equal(t, core.SeriesID("beyond"), table.Diagnostics[0].SeriesID)
}

func TestAggregateEmptyInputs(t *testing.T) {
	_, err := Aggregate(context.Background(), nil, nil, false)
	assert.ErrorIs(t, err, core.ErrEmptyInputSet)

	// every record invalid
	records := []SeriesRecord{
		{ID: "x", LastRingYear: 1400},
		{ID: "", LastRingYear: 1401, HasWaneyEdge: true},
	}
	_, err = Aggregate(context.Background(), records, nil, false)
	assert.ErrorIs(t, err, core.ErrEmptyInputSet)
}

func TestAggregateWaneyEdgeExactness(t *testing.T) {
	// a waney-edge series has exactly one year at probability 1 even when
	// a count is also present
	records := []SeriesRecord{
		{ID: "w", LastRingYear: 1500, SapwoodCount: intPtr(7), HasWaneyEdge: true},
	}
	table, err := Aggregate(context.Background(), records, batchModels(records), false)
	require.NoError(t, err)

	column := table.Series["w"]
	ones, zeros := 0, 0
	for i, p := range column {
		switch {
		case p == 1.0:
			ones++
			assert.Equal(t, 1500, table.Years[i])
		case p == 0.0:
			zeros++
		default:
			t.Fatalf("unexpected probability %v at year %d", p, table.Years[i])
		}
	}
	assert.Equal(t, 1, ones)
	assert.Equal(t, len(column)-1, zeros)
}
