package refdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

func TestCatalogListIsSortedAndComplete(t *testing.T) {
	catalog := NewCatalog()
	infos, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, len(builtinDatasets))

	for i := 1; i < len(infos); i++ {
		assert.Less(t, infos[i-1].Name, infos[i].Name)
	}
	for _, info := range infos {
		assert.NotEmpty(t, info.Region, "dataset %s", info.Name)
		assert.Greater(t, info.Observations, 0, "dataset %s", info.Name)
	}
}

func TestCatalogUnknownDataset(t *testing.T) {
	catalog := NewCatalog()
	_, err := catalog.Histogram(context.Background(), "Atlantis_1879")
	assert.ErrorIs(t, err, core.ErrUnknownReferenceDataset)
}

func TestCatalogHistogramsAreValid(t *testing.T) {
	catalog := NewCatalog()
	infos, err := catalog.List(context.Background())
	require.NoError(t, err)
	for _, info := range infos {
		hist, err := catalog.Histogram(context.Background(), info.Name)
		require.NoError(t, err, "dataset %s", info.Name)
		assert.False(t, hist.IsEmpty())
		assert.Equal(t, info.Observations, hist.Total())
	}
}

// wazny estimates a felling-date interval for a series with ten sapwood
// rings and last ring 1234 against the Wazny_1990 dataset.
func wazny(t *testing.T, family dendro.Family, credMass float64) dendro.CredibleInterval {
	t.Helper()
	hist, err := NewCatalog().Histogram(context.Background(), "Wazny_1990")
	require.NoError(t, err)

	model, err := dendro.Fit(hist, family)
	require.NoError(t, err)

	dist, err := dendro.Project(model, 10, 1234, false)
	require.NoError(t, err)

	interval, err := dendro.HDIOfDistribution(dist, credMass)
	require.NoError(t, err)
	return interval
}

func TestWaznyLognormalInterval(t *testing.T) {
	interval := wazny(t, dendro.FamilyLognormal, 0.95)
	assert.Equal(t, 1234, interval.Lower)
	assert.Equal(t, 1250, interval.Upper)
	assert.GreaterOrEqual(t, interval.AchievedMass, 0.95)
}

func TestWaznyNormalInterval(t *testing.T) {
	interval := wazny(t, dendro.FamilyNormal, 0.95)
	assert.Equal(t, 1234, interval.Lower)
	assert.Equal(t, 1248, interval.Upper)
	assert.GreaterOrEqual(t, interval.AchievedMass, 0.95)
}

func TestWaznyFittedParameters(t *testing.T) {
	hist, err := NewCatalog().Histogram(context.Background(), "Wazny_1990")
	require.NoError(t, err)

	logn, err := dendro.Fit(hist, dendro.FamilyLognormal)
	require.NoError(t, err)
	assert.InDelta(t, 2.762188390733473, logn.Param1, 1e-9)
	assert.InDelta(t, 0.289937194445383, logn.Param2, 1e-9)

	norm, err := dendro.Fit(hist, dendro.FamilyNormal)
	require.NoError(t, err)
	assert.InDelta(t, 16.504694835680752, norm.Param1, 1e-9)
	assert.InDelta(t, 4.767478494755327, norm.Param2, 1e-9)
}
