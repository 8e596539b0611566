package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellingdate/domain/core"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadHistogramFileCSV(t *testing.T) {
	path := writeTempFile(t, "sapwood.csv", "n_sapwood,count\n8,3\n9,5\n10,2\n")

	hist, err := ReadHistogramFile(path, ',')
	require.NoError(t, err)
	assert.Equal(t, 10, hist.Total())
	assert.Equal(t, 10, hist.MaxSapwood())
}

func TestReadHistogramFileCustomDelimiter(t *testing.T) {
	path := writeTempFile(t, "sapwood.txt", "n_sapwood;count\n8;3\n9;5\n")

	hist, err := ReadHistogramFile(path, ';')
	require.NoError(t, err)
	assert.Equal(t, 8, hist.Total())
}

func TestReadHistogramFileExtraColumnsIgnored(t *testing.T) {
	path := writeTempFile(t, "sapwood.csv", "region,n_sapwood,notes,count\nPL,8,ok,3\nPL,9,,5\n")

	hist, err := ReadHistogramFile(path, ',')
	require.NoError(t, err)
	assert.Equal(t, 8, hist.Total())
}

func TestReadHistogramFileMalformed(t *testing.T) {
	for name, content := range map[string]string{
		"missing_columns": "rings,freq\n8,3\n",
		"header_only":     "n_sapwood,count\n",
		"bad_number":      "n_sapwood,count\n8,many\n",
		"short_row":       "n_sapwood,count\n8\n",
		"duplicate_rows":  "n_sapwood,count\n8,3\n8,2\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeTempFile(t, "bad.csv", content)
			_, err := ReadHistogramFile(path, ',')
			assert.ErrorIs(t, err, core.ErrMalformedReferenceFile)
		})
	}

	_, err := ReadHistogramFile(filepath.Join(t.TempDir(), "absent.csv"), ',')
	assert.ErrorIs(t, err, core.ErrMalformedReferenceFile)
}

func TestReadSeriesFileCSV(t *testing.T) {
	path := writeTempFile(t, "series.csv",
		"id,last_ring_year,n_sapwood,waney_edge\n"+
			"trs_1,1400,5,\n"+
			"trs_2,1402,,WK\n"+
			"trs_3,1399,8,yes\n")

	records, err := ReadSeriesFile(path, ',')
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, core.SeriesID("trs_1"), records[0].ID)
	assert.Equal(t, 1400, records[0].LastRingYear)
	require.NotNil(t, records[0].SapwoodCount)
	assert.Equal(t, 5, *records[0].SapwoodCount)
	assert.False(t, records[0].HasWaneyEdge)

	assert.Nil(t, records[1].SapwoodCount)
	assert.True(t, records[1].HasWaneyEdge)

	assert.True(t, records[2].HasWaneyEdge)
}

func TestReadSeriesFileOptionalColumnsAbsent(t *testing.T) {
	path := writeTempFile(t, "series.csv", "id,last_ring_year\ntrs_1,1400\n")

	records, err := ReadSeriesFile(path, ',')
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].SapwoodCount)
	assert.False(t, records[0].HasWaneyEdge)
}

func TestReadSeriesFileMalformed(t *testing.T) {
	path := writeTempFile(t, "series.csv", "id,last_ring_year\ntrs_1,soon\n")
	_, err := ReadSeriesFile(path, ',')
	assert.ErrorIs(t, err, core.ErrMalformedReferenceFile)

	path = writeTempFile(t, "series.csv", "code,year\ntrs_1,1400\n")
	_, err = ReadSeriesFile(path, ',')
	assert.ErrorIs(t, err, core.ErrMalformedReferenceFile)
}

func TestCoerceWaneyEdge(t *testing.T) {
	for _, cell := range []string{"true", "TRUE", " t ", "yes", "Y", "1", "WK", "we", "waney edge", "bark present"} {
		assert.True(t, CoerceWaneyEdge(cell), "cell %q", cell)
	}
	for _, cell := range []string{"", "false", "no", "0", "n/a", "heartwood"} {
		assert.False(t, CoerceWaneyEdge(cell), "cell %q", cell)
	}
}
