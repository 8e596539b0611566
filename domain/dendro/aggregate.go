package dendro

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"fellingdate/domain/core"
)

// Aggregate pools the felling-date distributions of a batch of series into
// a summed probability distribution (SPD) over a single contiguous
// calendar-year axis.
//
// Records that carry no dating information (no sapwood count and no waney
// edge), reference a missing model, duplicate an earlier ID, or fail
// projection are dropped with a diagnostic rather than failing the batch.
// Only an entirely empty surviving set is fatal (core.ErrEmptyInputSet).
//
// The axis runs from the earliest last-ring year to the latest plus a
// look-ahead equal to the largest support of the referenced models, so
// every projected distribution fits. Per-series projections are
// independent and computed in parallel; the merge by year key is
// deterministic.
//
// With scale=true both SPD columns are divided by the total SPD mass so
// the pooled curve sums to 1; SPDExact shares the factor and is never
// normalized independently.
func Aggregate(ctx context.Context, records []SeriesRecord, models map[core.SeriesID]*FittedModel, scale bool) (*SPDTable, error) {
	if len(records) == 0 {
		return nil, core.ErrEmptyInputSet
	}

	var diagnostics []Diagnostic
	surviving := make([]SeriesRecord, 0, len(records))
	seen := make(map[core.SeriesID]bool, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			diagnostics = append(diagnostics, Diagnostic{SeriesID: rec.ID, Reason: err.Error()})
			continue
		}
		if seen[rec.ID] {
			diagnostics = append(diagnostics, Diagnostic{SeriesID: rec.ID, Reason: "duplicate series id"})
			continue
		}
		if !rec.HasWaneyEdge {
			if _, ok := models[rec.ID]; !ok {
				diagnostics = append(diagnostics, Diagnostic{SeriesID: rec.ID, Reason: "no fitted model for series"})
				continue
			}
		}
		seen[rec.ID] = true
		surviving = append(surviving, rec)
	}
	if len(surviving) == 0 {
		return nil, fmt.Errorf("%w: %d records rejected", core.ErrEmptyInputSet, len(diagnostics))
	}

	minYear, maxYear := surviving[0].LastRingYear, surviving[0].LastRingYear
	lookahead := 0
	for _, rec := range surviving {
		if rec.LastRingYear < minYear {
			minYear = rec.LastRingYear
		}
		if rec.LastRingYear > maxYear {
			maxYear = rec.LastRingYear
		}
		if !rec.HasWaneyEdge {
			if m := models[rec.ID]; m.SupportMax > lookahead {
				lookahead = m.SupportMax
			}
		}
	}

	// Fan out the independent projections, collect into indexed slots.
	type projection struct {
		rec  SeriesRecord
		dist YearDistribution
		err  error
	}
	results := make([]projection, len(surviving))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, rec := range surviving {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dist, err := Project(models[rec.ID], valueOrZero(rec.SapwoodCount), rec.LastRingYear, rec.HasWaneyEdge)
			results[i] = projection{rec: rec, dist: dist, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	years := make([]int, 0, maxYear+lookahead-minYear+1)
	for y := minYear; y <= maxYear+lookahead; y++ {
		years = append(years, y)
	}

	table := &SPDTable{
		ID:          core.AggregationID(core.NewID()),
		Years:       years,
		SPD:         make([]float64, len(years)),
		SPDExact:    make([]float64, len(years)),
		Series:      make(map[core.SeriesID][]float64, len(results)),
		Diagnostics: diagnostics,
		Scaled:      scale,
	}
	kept := 0
	for _, res := range results {
		if res.err != nil {
			table.Diagnostics = append(table.Diagnostics, Diagnostic{SeriesID: res.rec.ID, Reason: res.err.Error()})
			continue
		}
		kept++
		column := make([]float64, len(years))
		for i, y := range years {
			column[i] = res.dist[y] // missing years contribute 0
		}
		table.Series[res.rec.ID] = column
		for i := range years {
			table.SPD[i] += column[i]
			if res.rec.HasWaneyEdge {
				table.SPDExact[i] += column[i]
			}
		}
	}
	if kept == 0 {
		return nil, fmt.Errorf("%w: every projection failed", core.ErrEmptyInputSet)
	}

	if scale {
		total := 0.0
		for _, p := range table.SPD {
			total += p
		}
		if total > 0 {
			for i := range table.SPD {
				table.SPD[i] /= total
				table.SPDExact[i] /= total
			}
		}
	}
	return table, nil
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
