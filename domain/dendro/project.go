package dendro

import (
	"fmt"

	"fellingdate/domain/core"
)

// Project converts a fitted sapwood model into a calendar-year felling-date
// distribution for one series.
//
// A series with a waney edge is felled in the year of its last preserved
// ring: the result is a point mass at lastRingYear and the model is not
// consulted. Otherwise the true ring count k must be at least the observed
// count, so the model PMF is restricted to k >= observedCount, renormalized
// to the conditional distribution, and reindexed onto years by
// lastRingYear + (k - observedCount).
func Project(model *FittedModel, observedCount, lastRingYear int, hasWaneyEdge bool) (YearDistribution, error) {
	if hasWaneyEdge {
		return YearDistribution{lastRingYear: 1.0}, nil
	}
	if model == nil {
		return nil, fmt.Errorf("projection without a waney edge requires a fitted model")
	}
	if err := model.Family.Validate(); err != nil {
		return nil, err
	}
	if observedCount < 0 {
		return nil, fmt.Errorf("%w: got %d", core.ErrInvalidSapwoodCount, observedCount)
	}
	if observedCount > model.SupportMax {
		return nil, fmt.Errorf("%w: observed %d, support ends at %d",
			core.ErrInsufficientModelSupport, observedCount, model.SupportMax)
	}

	// Conditional slice on k >= observedCount. The count-0 edge case keeps
	// the full support: every fitted density is zero below ring 1 anyway.
	from := observedCount
	if from < 1 {
		from = 1
	}
	sliceMass := 0.0
	for k := from; k <= model.SupportMax; k++ {
		sliceMass += model.PMF[k]
	}
	if sliceMass <= 0 {
		return nil, fmt.Errorf("%w: no probability mass at or above count %d",
			core.ErrInsufficientModelSupport, observedCount)
	}

	dist := make(YearDistribution, model.SupportMax-from+1)
	for k := from; k <= model.SupportMax; k++ {
		year := lastRingYear + (k - observedCount)
		dist[year] = model.PMF[k] / sliceMass
	}
	return dist, nil
}
