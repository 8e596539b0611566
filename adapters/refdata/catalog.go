// Package refdata supplies reference sapwood datasets: a built-in catalog
// of published regional datasets plus readers for user-supplied delimited
// and spreadsheet files.
package refdata

import (
	"context"
	"sort"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
	"fellingdate/ports"
)

// dataset is one catalog entry: published sapwood-ring counts for a region
type dataset struct {
	region string
	bins   []dendro.HistogramBin
}

// Catalog is an explicit read-only map of named reference datasets. It is
// injected wherever histograms are needed; nothing reads it through global
// state.
type Catalog struct {
	datasets map[string]dataset
}

// NewCatalog returns the built-in reference datasets
func NewCatalog() *Catalog {
	return &Catalog{datasets: builtinDatasets}
}

// List enumerates the available datasets in name order
func (c *Catalog) List(ctx context.Context) ([]ports.DatasetInfo, error) {
	infos := make([]ports.DatasetInfo, 0, len(c.datasets))
	for name, ds := range c.datasets {
		n := 0
		for _, b := range ds.bins {
			n += b.Count
		}
		infos = append(infos, ports.DatasetInfo{Name: name, Region: ds.region, Observations: n})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Histogram resolves a dataset by name
func (c *Catalog) Histogram(ctx context.Context, name string) (dendro.ReferenceHistogram, error) {
	ds, ok := c.datasets[name]
	if !ok {
		return dendro.ReferenceHistogram{}, core.NewUnknownReferenceDatasetError(name)
	}
	return dendro.NewReferenceHistogram(ds.bins)
}

// builtinDatasets holds the published regional sapwood datasets as
// (n_sapwood, count) rows.
var builtinDatasets = map[string]dataset{
	"Wazny_1990": {
		region: "Poland",
		bins: []dendro.HistogramBin{
			{NSapwood: 8, Count: 8}, {NSapwood: 9, Count: 13}, {NSapwood: 10, Count: 17}, {NSapwood: 11, Count: 22}, {NSapwood: 12, Count: 31}, {NSapwood: 13, Count: 33}, {NSapwood: 14, Count: 33},
			{NSapwood: 15, Count: 38}, {NSapwood: 16, Count: 35}, {NSapwood: 17, Count: 34}, {NSapwood: 18, Count: 30}, {NSapwood: 19, Count: 27}, {NSapwood: 20, Count: 23}, {NSapwood: 21, Count: 18},
			{NSapwood: 22, Count: 17}, {NSapwood: 23, Count: 12}, {NSapwood: 24, Count: 9}, {NSapwood: 25, Count: 8}, {NSapwood: 26, Count: 5}, {NSapwood: 27, Count: 3}, {NSapwood: 28, Count: 5},
			{NSapwood: 29, Count: 2}, {NSapwood: 30, Count: 1}, {NSapwood: 35, Count: 1}, {NSapwood: 36, Count: 1},
		},
	},
	"Hollstein_1980": {
		region: "South and Central Germany",
		bins: []dendro.HistogramBin{
			{NSapwood: 9, Count: 3}, {NSapwood: 10, Count: 6}, {NSapwood: 11, Count: 10}, {NSapwood: 12, Count: 15}, {NSapwood: 13, Count: 21}, {NSapwood: 14, Count: 26}, {NSapwood: 15, Count: 31},
			{NSapwood: 16, Count: 34}, {NSapwood: 17, Count: 36}, {NSapwood: 18, Count: 36}, {NSapwood: 19, Count: 35}, {NSapwood: 20, Count: 33}, {NSapwood: 21, Count: 30}, {NSapwood: 22, Count: 27},
			{NSapwood: 23, Count: 24}, {NSapwood: 24, Count: 21}, {NSapwood: 25, Count: 18}, {NSapwood: 26, Count: 15}, {NSapwood: 27, Count: 13}, {NSapwood: 28, Count: 11}, {NSapwood: 29, Count: 9},
			{NSapwood: 30, Count: 7}, {NSapwood: 31, Count: 6}, {NSapwood: 32, Count: 5}, {NSapwood: 33, Count: 4}, {NSapwood: 34, Count: 3}, {NSapwood: 35, Count: 2}, {NSapwood: 36, Count: 2},
			{NSapwood: 37, Count: 2}, {NSapwood: 38, Count: 1}, {NSapwood: 39, Count: 1}, {NSapwood: 40, Count: 1}, {NSapwood: 41, Count: 1},
		},
	},
	"Brathen_1982": {
		region: "Western Sweden",
		bins: []dendro.HistogramBin{
			{NSapwood: 9, Count: 2}, {NSapwood: 10, Count: 3}, {NSapwood: 11, Count: 5}, {NSapwood: 12, Count: 6}, {NSapwood: 13, Count: 7}, {NSapwood: 14, Count: 7}, {NSapwood: 15, Count: 7},
			{NSapwood: 16, Count: 6}, {NSapwood: 17, Count: 5}, {NSapwood: 18, Count: 5}, {NSapwood: 19, Count: 4}, {NSapwood: 20, Count: 3}, {NSapwood: 21, Count: 2}, {NSapwood: 22, Count: 2},
			{NSapwood: 23, Count: 1}, {NSapwood: 24, Count: 1}, {NSapwood: 25, Count: 1}, {NSapwood: 26, Count: 1},
		},
	},
	"Pilcher_1987": {
		region: "Northern France",
		bins: []dendro.HistogramBin{
			{NSapwood: 12, Count: 4}, {NSapwood: 13, Count: 6}, {NSapwood: 14, Count: 8}, {NSapwood: 15, Count: 9}, {NSapwood: 16, Count: 11}, {NSapwood: 17, Count: 12}, {NSapwood: 18, Count: 13},
			{NSapwood: 19, Count: 13}, {NSapwood: 20, Count: 13}, {NSapwood: 21, Count: 13}, {NSapwood: 22, Count: 12}, {NSapwood: 23, Count: 12}, {NSapwood: 24, Count: 11}, {NSapwood: 25, Count: 10},
			{NSapwood: 26, Count: 9}, {NSapwood: 27, Count: 8}, {NSapwood: 28, Count: 7}, {NSapwood: 29, Count: 6}, {NSapwood: 30, Count: 5}, {NSapwood: 31, Count: 5}, {NSapwood: 32, Count: 4},
			{NSapwood: 33, Count: 4}, {NSapwood: 34, Count: 3}, {NSapwood: 35, Count: 3}, {NSapwood: 36, Count: 2}, {NSapwood: 37, Count: 2}, {NSapwood: 38, Count: 2}, {NSapwood: 39, Count: 1},
			{NSapwood: 40, Count: 1}, {NSapwood: 41, Count: 1}, {NSapwood: 42, Count: 1}, {NSapwood: 43, Count: 1}, {NSapwood: 44, Count: 1},
		},
	},
	"Miles_1997_WM": {
		region: "West Midlands, England",
		bins: []dendro.HistogramBin{
			{NSapwood: 7, Count: 5}, {NSapwood: 8, Count: 8}, {NSapwood: 9, Count: 13}, {NSapwood: 10, Count: 17}, {NSapwood: 11, Count: 20}, {NSapwood: 12, Count: 22}, {NSapwood: 13, Count: 23},
			{NSapwood: 14, Count: 23}, {NSapwood: 15, Count: 22}, {NSapwood: 16, Count: 20}, {NSapwood: 17, Count: 18}, {NSapwood: 18, Count: 16}, {NSapwood: 19, Count: 14}, {NSapwood: 20, Count: 12},
			{NSapwood: 21, Count: 10}, {NSapwood: 22, Count: 9}, {NSapwood: 23, Count: 7}, {NSapwood: 24, Count: 6}, {NSapwood: 25, Count: 5}, {NSapwood: 26, Count: 4}, {NSapwood: 27, Count: 3},
			{NSapwood: 28, Count: 3}, {NSapwood: 29, Count: 2}, {NSapwood: 30, Count: 2}, {NSapwood: 31, Count: 1}, {NSapwood: 32, Count: 1}, {NSapwood: 33, Count: 1}, {NSapwood: 34, Count: 1},
			{NSapwood: 35, Count: 1}, {NSapwood: 36, Count: 1},
		},
	},
	"Sohar_2012_ELL_c": {
		region: "Eastern Estonia, Latvia, Lithuania",
		bins: []dendro.HistogramBin{
			{NSapwood: 6, Count: 6}, {NSapwood: 7, Count: 14}, {NSapwood: 8, Count: 22}, {NSapwood: 9, Count: 28}, {NSapwood: 10, Count: 31}, {NSapwood: 11, Count: 30}, {NSapwood: 12, Count: 27},
			{NSapwood: 13, Count: 23}, {NSapwood: 14, Count: 18}, {NSapwood: 15, Count: 14}, {NSapwood: 16, Count: 10}, {NSapwood: 17, Count: 8}, {NSapwood: 18, Count: 5}, {NSapwood: 19, Count: 4},
			{NSapwood: 20, Count: 3}, {NSapwood: 21, Count: 2}, {NSapwood: 22, Count: 1}, {NSapwood: 23, Count: 1}, {NSapwood: 24, Count: 1},
		},
	},
	"vanDaalen_Norway": {
		region: "Norway",
		bins: []dendro.HistogramBin{
			{NSapwood: 11, Count: 1}, {NSapwood: 12, Count: 2}, {NSapwood: 13, Count: 4}, {NSapwood: 14, Count: 6}, {NSapwood: 15, Count: 8}, {NSapwood: 16, Count: 9}, {NSapwood: 17, Count: 10},
			{NSapwood: 18, Count: 10}, {NSapwood: 19, Count: 10}, {NSapwood: 20, Count: 9}, {NSapwood: 21, Count: 8}, {NSapwood: 22, Count: 7}, {NSapwood: 23, Count: 5}, {NSapwood: 24, Count: 4},
			{NSapwood: 25, Count: 3}, {NSapwood: 26, Count: 2}, {NSapwood: 27, Count: 2}, {NSapwood: 28, Count: 1}, {NSapwood: 29, Count: 1}, {NSapwood: 30, Count: 1},
		},
	},
	"vanDaalen_NLBE": {
		region: "Netherlands and Belgium",
		bins: []dendro.HistogramBin{
			{NSapwood: 8, Count: 5}, {NSapwood: 9, Count: 13}, {NSapwood: 10, Count: 26}, {NSapwood: 11, Count: 40}, {NSapwood: 12, Count: 53}, {NSapwood: 13, Count: 62}, {NSapwood: 14, Count: 66},
			{NSapwood: 15, Count: 66}, {NSapwood: 16, Count: 61}, {NSapwood: 17, Count: 54}, {NSapwood: 18, Count: 45}, {NSapwood: 19, Count: 37}, {NSapwood: 20, Count: 29}, {NSapwood: 21, Count: 23},
			{NSapwood: 22, Count: 17}, {NSapwood: 23, Count: 13}, {NSapwood: 24, Count: 9}, {NSapwood: 25, Count: 7}, {NSapwood: 26, Count: 5}, {NSapwood: 27, Count: 3}, {NSapwood: 28, Count: 2},
			{NSapwood: 29, Count: 2}, {NSapwood: 30, Count: 1}, {NSapwood: 31, Count: 1}, {NSapwood: 32, Count: 1},
		},
	},
}
