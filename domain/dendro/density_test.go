package dendro

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellingdate/domain/core"
)

func TestParseFamily(t *testing.T) {
	for _, name := range []string{"lognormal", "normal", "weibull", "gamma"} {
		family, err := ParseFamily(name)
		require.NoError(t, err)
		assert.Equal(t, Family(name), family)
	}

	_, err := ParseFamily("nuka-cola")
	assert.ErrorIs(t, err, core.ErrUnsupportedFamily)
}

func TestFamilyParamNames(t *testing.T) {
	p1, p2 := FamilyLognormal.ParamNames()
	assert.Equal(t, "meanlog", p1)
	assert.Equal(t, "sdlog", p2)

	p1, p2 = FamilyGamma.ParamNames()
	assert.Equal(t, "shape", p1)
	assert.Equal(t, "rate", p2)
}

func TestDensityNormal(t *testing.T) {
	// standard normal at 0 is 1/sqrt(2*pi)
	d, err := Density(FamilyNormal, 0, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), d, 1e-12)
}

func TestDensityLognormal(t *testing.T) {
	// lognormal density at x = exp(mu) is 1/(x * sigma * sqrt(2*pi))
	mu, sigma := 2.0, 0.5
	x := math.Exp(mu)
	d, err := Density(FamilyLognormal, x, mu, sigma)
	require.NoError(t, err)
	assert.InDelta(t, 1/(x*sigma*math.Sqrt(2*math.Pi)), d, 1e-12)
}

func TestDensityPositiveSupportFamiliesAreZeroBelowOne(t *testing.T) {
	for _, family := range []Family{FamilyLognormal, FamilyWeibull, FamilyGamma} {
		d, err := Density(family, -3, 2, 1)
		require.NoError(t, err)
		assert.Zero(t, d, "family %s", family)

		d, err = Density(family, 0, 2, 1)
		require.NoError(t, err)
		assert.Zero(t, d, "family %s", family)
	}
}

func TestDensityRejectsUnknownFamily(t *testing.T) {
	_, err := Density(Family("nuka-cola"), 10, 1, 1)
	assert.ErrorIs(t, err, core.ErrUnsupportedFamily)
}

func TestFrequenciesScaleBySampleSize(t *testing.T) {
	xs := []int{10, 15, 20}
	freqs, err := Frequencies(FamilyNormal, xs, 15, 5, 100)
	require.NoError(t, err)
	require.Len(t, freqs, 3)

	for i, x := range xs {
		d, err := Density(FamilyNormal, float64(x), 15, 5)
		require.NoError(t, err)
		assert.InDelta(t, 100*d, freqs[i], 1e-12)
		assert.GreaterOrEqual(t, freqs[i], 0.0)
	}
}

func TestFrequenciesRejectsUnknownFamily(t *testing.T) {
	_, err := Frequencies(Family("cauchy"), []int{1, 2}, 0, 1, 10)
	assert.True(t, errors.Is(err, core.ErrUnsupportedFamily))
}
