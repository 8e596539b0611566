package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

// ReadHistogramFile reads a reference histogram from a delimited text file
// or an xlsx workbook, chosen by file extension. The table must carry
// columns named exactly "n_sapwood" and "count".
func ReadHistogramFile(path string, delimiter rune) (dendro.ReferenceHistogram, error) {
	rows, err := readRows(path, delimiter)
	if err != nil {
		return dendro.ReferenceHistogram{}, err
	}
	return parseHistogramRows(path, rows)
}

// ReadSeriesFile reads series records from a delimited text file or an
// xlsx workbook. Expected columns: "id", "last_ring_year", and optionally
// "n_sapwood" and "waney_edge". The waney-edge column accepts the loose
// spellings found in real inventories; the core only ever sees the
// resulting boolean.
func ReadSeriesFile(path string, delimiter rune) ([]dendro.SeriesRecord, error) {
	rows, err := readRows(path, delimiter)
	if err != nil {
		return nil, err
	}
	return parseSeriesRows(path, rows)
}

func readRows(path string, delimiter rune) ([][]string, error) {
	if strings.EqualFold(strings.TrimPrefix(ext(path), "."), "xlsx") {
		return readXLSXRows(path)
	}
	return readCSVRows(path, delimiter)
}

func ext(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}

func readCSVRows(path string, delimiter rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedReferenceFile, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedReferenceFile, path, err)
	}
	return rows, nil
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedReferenceFile, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewMalformedReferenceFileError(path, 0, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedReferenceFile, path, err)
	}
	return rows, nil
}

// columnIndex locates required and optional header columns by exact name
func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func parseHistogramRows(path string, rows [][]string) (dendro.ReferenceHistogram, error) {
	if len(rows) < 2 {
		return dendro.ReferenceHistogram{}, core.NewMalformedReferenceFileError(path, 0, "need a header row and at least one data row")
	}
	sapwoodCol := columnIndex(rows[0], "n_sapwood")
	countCol := columnIndex(rows[0], "count")
	if sapwoodCol < 0 || countCol < 0 {
		return dendro.ReferenceHistogram{}, core.NewMalformedReferenceFileError(path, 1, `missing required columns "n_sapwood" and "count"`)
	}

	bins := make([]dendro.HistogramBin, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) <= sapwoodCol || len(row) <= countCol {
			return dendro.ReferenceHistogram{}, core.NewMalformedReferenceFileError(path, rowNum, "short row")
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[sapwoodCol]))
		if err != nil {
			return dendro.ReferenceHistogram{}, core.NewMalformedReferenceFileError(path, rowNum, fmt.Sprintf("bad n_sapwood %q", row[sapwoodCol]))
		}
		c, err := strconv.Atoi(strings.TrimSpace(row[countCol]))
		if err != nil {
			return dendro.ReferenceHistogram{}, core.NewMalformedReferenceFileError(path, rowNum, fmt.Sprintf("bad count %q", row[countCol]))
		}
		bins = append(bins, dendro.HistogramBin{NSapwood: n, Count: c})
	}

	hist, err := dendro.NewReferenceHistogram(bins)
	if err != nil {
		return dendro.ReferenceHistogram{}, fmt.Errorf("%w: %s: %v", core.ErrMalformedReferenceFile, path, err)
	}
	return hist, nil
}

func parseSeriesRows(path string, rows [][]string) ([]dendro.SeriesRecord, error) {
	if len(rows) < 2 {
		return nil, core.NewMalformedReferenceFileError(path, 0, "need a header row and at least one data row")
	}
	idCol := columnIndex(rows[0], "id")
	yearCol := columnIndex(rows[0], "last_ring_year")
	if idCol < 0 || yearCol < 0 {
		return nil, core.NewMalformedReferenceFileError(path, 1, `missing required columns "id" and "last_ring_year"`)
	}
	countCol := columnIndex(rows[0], "n_sapwood")
	waneyCol := columnIndex(rows[0], "waney_edge")

	records := make([]dendro.SeriesRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) <= idCol || len(row) <= yearCol {
			return nil, core.NewMalformedReferenceFileError(path, rowNum, "short row")
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearCol]))
		if err != nil {
			return nil, core.NewMalformedReferenceFileError(path, rowNum, fmt.Sprintf("bad last_ring_year %q", row[yearCol]))
		}
		rec := dendro.SeriesRecord{
			ID:           core.SeriesID(strings.TrimSpace(row[idCol])),
			LastRingYear: year,
		}
		if countCol >= 0 && len(row) > countCol {
			if cell := strings.TrimSpace(row[countCol]); cell != "" {
				count, err := strconv.Atoi(cell)
				if err != nil {
					return nil, core.NewMalformedReferenceFileError(path, rowNum, fmt.Sprintf("bad n_sapwood %q", cell))
				}
				rec.SapwoodCount = &count
			}
		}
		if waneyCol >= 0 && len(row) > waneyCol {
			rec.HasWaneyEdge = CoerceWaneyEdge(row[waneyCol])
		}
		records = append(records, rec)
	}
	return records, nil
}

// CoerceWaneyEdge interprets the loose waney-edge spellings found in
// series inventories ("yes", "WK", "bark", ...). This coercion lives at
// the file boundary; dendro.SeriesRecord carries a genuine boolean.
func CoerceWaneyEdge(cell string) bool {
	v := strings.ToLower(strings.TrimSpace(cell))
	switch v {
	case "true", "t", "yes", "y", "1", "wk", "we":
		return true
	}
	return strings.Contains(v, "waney") || strings.Contains(v, "bark")
}
