package dendro

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mathext"

	"fellingdate/domain/core"
)

const (
	// minRingSD is the boundary standard deviation used when a histogram
	// has no variance. Kept below one ring but wide enough that the
	// density evaluated on the integer grid never sums above 1, for any
	// of the four families.
	minRingSD = 0.75

	newtonMaxIter = 200
	newtonTol     = 1e-12
)

// Fit estimates family parameters from a reference histogram by maximum
// likelihood and evaluates the fitted frequency curve over the full
// integer support 1..max(n_sapwood). Gaps between observed ring counts
// are filled with model-implied (possibly fractional) expected counts.
func Fit(hist ReferenceHistogram, family Family) (*FittedModel, error) {
	if err := family.Validate(); err != nil {
		return nil, err
	}
	if hist.IsEmpty() {
		return nil, core.ErrEmptyReferenceData
	}

	sample := hist.Sample()
	param1, param2, err := estimate(sample, family)
	if err != nil {
		return nil, fmt.Errorf("fitting %s to reference histogram: %w", family, err)
	}

	n := hist.Total()
	supportMax := hist.MaxSapwood()
	support := make([]int, supportMax)
	for i := range support {
		support[i] = i + 1
	}
	freqs, err := Frequencies(family, support, param1, param2, n)
	if err != nil {
		return nil, err
	}

	model := &FittedModel{
		Family:     family,
		Param1:     param1,
		Param2:     param2,
		SampleSize: n,
		SupportMax: supportMax,
		PMF:        make(map[int]float64, supportMax),
		Frequency:  make(map[int]float64, supportMax),
	}
	for i, k := range support {
		model.Frequency[k] = freqs[i]
		model.PMF[k] = freqs[i] / float64(n)
	}
	return model, nil
}

// estimate computes the two MLE parameters for the family. Degenerate
// samples (a single distinct value) fall back to the family's
// minimum-variance boundary parameterization instead of raising.
func estimate(sample []float64, family Family) (float64, float64, error) {
	mean, err := stats.Mean(sample)
	if err != nil {
		return 0, 0, err
	}
	sd, err := stats.StandardDeviationPopulation(sample)
	if err != nil {
		return 0, 0, err
	}
	if sd == 0 {
		return boundaryParams(mean, family)
	}

	switch family {
	case FamilyNormal:
		return mean, sd, nil
	case FamilyLognormal:
		logMean, logSD := logMoments(sample)
		return logMean, logSD, nil
	case FamilyWeibull:
		return fitWeibull(sample)
	case FamilyGamma:
		return fitGamma(sample, mean)
	}
	return 0, 0, core.NewUnsupportedFamilyError(string(family))
}

// boundaryParams returns the minimum-variance parameterization centred on
// the sample mean, used when the histogram has a single distinct value.
// Each family is parameterized so its standard deviation is ~minRingSD.
func boundaryParams(mean float64, family Family) (float64, float64, error) {
	switch family {
	case FamilyNormal:
		return mean, minRingSD, nil
	case FamilyLognormal:
		// sdlog equivalent of minRingSD rings at the sample mean
		return math.Log(mean), minRingSD / mean, nil
	case FamilyWeibull:
		// sd of a high-shape Weibull is ~ (pi/sqrt(6)) * scale/shape
		shape := math.Pi / math.Sqrt(6) * mean / minRingSD
		return shape, mean, nil
	case FamilyGamma:
		// var = shape/rate^2 with mean = shape/rate
		shape := mean * mean / (minRingSD * minRingSD)
		return shape, shape / mean, nil
	}
	return 0, 0, core.NewUnsupportedFamilyError(string(family))
}

// logMoments returns the mean and population sd of the log sample, the
// closed-form lognormal MLE.
func logMoments(sample []float64) (float64, float64) {
	logs := make([]float64, len(sample))
	for i, x := range sample {
		logs[i] = math.Log(x)
	}
	m, _ := stats.Mean(logs)
	sd, _ := stats.StandardDeviationPopulation(logs)
	return m, sd
}

// fitWeibull solves the Weibull profile-likelihood equation for the shape
// by Newton iteration, then computes the closed-form scale.
func fitWeibull(sample []float64) (float64, float64, error) {
	n := float64(len(sample))
	logs := make([]float64, len(sample))
	for i, x := range sample {
		logs[i] = math.Log(x)
	}
	logMean, _ := stats.Mean(logs)
	logSD, _ := stats.StandardDeviationPopulation(logs)

	// Menon-style starting value
	k := 1.2 / logSD
	for iter := 0; iter < newtonMaxIter; iter++ {
		var sk, skl, skll float64
		for i, x := range sample {
			xk := math.Pow(x, k)
			sk += xk
			skl += xk * logs[i]
			skll += xk * logs[i] * logs[i]
		}
		g := skl/sk - 1/k - logMean
		dg := (skll*sk-skl*skl)/(sk*sk) + 1/(k*k)
		step := g / dg
		for k-step <= 0 {
			step /= 2
		}
		k -= step
		if math.Abs(step) < newtonTol {
			break
		}
	}
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, 0, fmt.Errorf("weibull shape estimation did not converge")
	}

	var sk float64
	for _, x := range sample {
		sk += math.Pow(x, k)
	}
	scale := math.Pow(sk/n, 1/k)
	return k, scale, nil
}

// fitGamma solves ln(k) - digamma(k) = s for the shape by Newton
// iteration from the Minka closed-form starting value; rate = shape/mean.
func fitGamma(sample []float64, mean float64) (float64, float64, error) {
	logMean := 0.0
	for _, x := range sample {
		logMean += math.Log(x)
	}
	logMean /= float64(len(sample))

	s := math.Log(mean) - logMean
	if s <= 0 {
		// log-moment gap closes only for a constant sample
		return boundaryParams(mean, FamilyGamma)
	}

	k := (3 - s + math.Sqrt((s-3)*(s-3)+24*s)) / (12 * s)
	for iter := 0; iter < newtonMaxIter; iter++ {
		f := math.Log(k) - mathext.Digamma(k) - s
		h := 1e-6 * k
		df := ((math.Log(k+h) - mathext.Digamma(k+h)) - (math.Log(k-h) - mathext.Digamma(k-h))) / (2 * h)
		step := f / df
		for k-step <= 0 {
			step /= 2
		}
		k -= step
		if math.Abs(step) < newtonTol {
			break
		}
	}
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, 0, fmt.Errorf("gamma shape estimation did not converge")
	}
	return k, k / mean, nil
}
