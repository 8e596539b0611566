package dendro

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// Density evaluates the probability density of a supported family at x.
// Families with positive support return 0 for x <= 0 rather than NaN.
// Fails with core.ErrUnsupportedFamily for anything outside the closed
// family set, in every call path that reaches the catalog.
func Density(family Family, x, param1, param2 float64) (float64, error) {
	if err := family.Validate(); err != nil {
		return 0, err
	}
	switch family {
	case FamilyLognormal:
		if x <= 0 {
			return 0, nil
		}
		return distuv.LogNormal{Mu: param1, Sigma: param2}.Prob(x), nil
	case FamilyNormal:
		return distuv.Normal{Mu: param1, Sigma: param2}.Prob(x), nil
	case FamilyWeibull:
		if x <= 0 {
			return 0, nil
		}
		return distuv.Weibull{K: param1, Lambda: param2}.Prob(x), nil
	default: // FamilyGamma, guarded by Validate above
		if x <= 0 {
			return 0, nil
		}
		return distuv.Gamma{Alpha: param1, Beta: param2}.Prob(x), nil
	}
}

// Frequencies computes the expected count n * density(x) at each support
// point, the frequency curve matched against an empirical histogram of
// sample size n.
func Frequencies(family Family, xs []int, param1, param2 float64, n int) ([]float64, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		d, err := Density(family, float64(x), param1, param2)
		if err != nil {
			return nil, err
		}
		out[i] = float64(n) * d
	}
	return out, nil
}
