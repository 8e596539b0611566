package dendro

import (
	"fmt"
	"math"

	"fellingdate/domain/core"
)

// HDI finds the highest-density interval of a discrete distribution given
// as parallel slices of ordered axis values and probabilities: the
// contiguous interval with minimal axis width whose cumulative probability
// reaches credMass, ties broken toward the interval starting earliest.
//
// When the total mass over the axis is below credMass (truncated support)
// the full axis is returned with the available mass; callers detect
// under-coverage via AchievedMass < credMass.
func HDI(axis []int, probs []float64, credMass float64) (CredibleInterval, error) {
	if math.IsNaN(credMass) || math.IsInf(credMass, 0) || credMass <= 0 || credMass >= 1 {
		return CredibleInterval{}, core.NewInvalidCredMassError(credMass)
	}
	if len(axis) != len(probs) {
		return CredibleInterval{}, fmt.Errorf("axis has %d values but %d probabilities", len(axis), len(probs))
	}
	if len(axis) == 0 {
		return CredibleInterval{}, fmt.Errorf("cannot compute an interval over an empty axis")
	}
	for i := 1; i < len(axis); i++ {
		if axis[i] <= axis[i-1] {
			return CredibleInterval{}, fmt.Errorf("axis values must be strictly increasing")
		}
	}

	total := 0.0
	for _, p := range probs {
		total += p
	}
	if total < credMass {
		return CredibleInterval{
			Lower:        axis[0],
			Upper:        axis[len(axis)-1],
			AchievedMass: total,
		}, nil
	}

	best := CredibleInterval{}
	bestWidth := -1
	for i := range axis {
		cum := 0.0
		for j := i; j < len(axis); j++ {
			cum += probs[j]
			if cum >= credMass {
				width := axis[j] - axis[i]
				if bestWidth < 0 || width < bestWidth {
					bestWidth = width
					best = CredibleInterval{Lower: axis[i], Upper: axis[j], AchievedMass: cum}
				}
				break
			}
		}
	}
	return best, nil
}

// HDIOfDistribution computes the highest-density interval of a
// YearDistribution, a convenience wrapper over HDI.
func HDIOfDistribution(dist YearDistribution, credMass float64) (CredibleInterval, error) {
	years := dist.Years()
	probs := make([]float64, len(years))
	for i, y := range years {
		probs[i] = dist[y]
	}
	return HDI(years, probs, credMass)
}
