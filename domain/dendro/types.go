package dendro

import (
	"fmt"
	"sort"

	"fellingdate/domain/core"
)

// Family identifies one of the supported parametric density families.
// The set is closed: every operation that receives a Family must reject
// values outside the four constants below with core.ErrUnsupportedFamily.
type Family string

const (
	FamilyLognormal Family = "lognormal"
	FamilyNormal    Family = "normal"
	FamilyWeibull   Family = "weibull"
	FamilyGamma     Family = "gamma"
)

// ParseFamily converts a user-supplied name into a Family
func ParseFamily(name string) (Family, error) {
	switch Family(name) {
	case FamilyLognormal, FamilyNormal, FamilyWeibull, FamilyGamma:
		return Family(name), nil
	}
	return "", core.NewUnsupportedFamilyError(name)
}

// Validate checks that the family is one of the four supported values
func (f Family) Validate() error {
	_, err := ParseFamily(string(f))
	return err
}

// ParamNames returns the conventional names of the family's two parameters
func (f Family) ParamNames() (string, string) {
	switch f {
	case FamilyLognormal:
		return "meanlog", "sdlog"
	case FamilyNormal:
		return "mean", "sd"
	case FamilyWeibull:
		return "shape", "scale"
	case FamilyGamma:
		return "shape", "rate"
	}
	return "", ""
}

// Families lists the supported density families in canonical order
func Families() []Family {
	return []Family{FamilyLognormal, FamilyNormal, FamilyWeibull, FamilyGamma}
}

// HistogramBin is one row of a reference histogram: the number of samples
// observed with exactly NSapwood sapwood rings.
type HistogramBin struct {
	NSapwood int `json:"n_sapwood" db:"n_sapwood"`
	Count    int `json:"count" db:"count"`
}

// ReferenceHistogram is an empirical distribution of sapwood-ring counts.
// INVARIANTS:
// - NSapwood values are unique and >= 1
// - Count values are > 0 (zero-count rows are excluded)
// - bins are ordered by NSapwood ascending
type ReferenceHistogram struct {
	bins []HistogramBin
}

// NewReferenceHistogram validates and normalizes raw bins into a histogram.
// Zero-count rows are dropped; duplicate or non-positive ring counts are
// rejected.
func NewReferenceHistogram(bins []HistogramBin) (ReferenceHistogram, error) {
	kept := make([]HistogramBin, 0, len(bins))
	seen := make(map[int]bool, len(bins))
	for _, b := range bins {
		if b.Count < 0 {
			return ReferenceHistogram{}, fmt.Errorf("negative count %d for n_sapwood %d", b.Count, b.NSapwood)
		}
		if b.Count == 0 {
			continue
		}
		if b.NSapwood < 1 {
			return ReferenceHistogram{}, fmt.Errorf("n_sapwood must be >= 1, got %d", b.NSapwood)
		}
		if seen[b.NSapwood] {
			return ReferenceHistogram{}, fmt.Errorf("duplicate n_sapwood value %d", b.NSapwood)
		}
		seen[b.NSapwood] = true
		kept = append(kept, b)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].NSapwood < kept[j].NSapwood })
	return ReferenceHistogram{bins: kept}, nil
}

// Bins returns a copy of the histogram rows in ascending ring-count order
func (h ReferenceHistogram) Bins() []HistogramBin {
	out := make([]HistogramBin, len(h.bins))
	copy(out, h.bins)
	return out
}

// IsEmpty reports whether the histogram holds no observations
func (h ReferenceHistogram) IsEmpty() bool {
	return len(h.bins) == 0
}

// Total returns the total number of observations across all bins
func (h ReferenceHistogram) Total() int {
	n := 0
	for _, b := range h.bins {
		n += b.Count
	}
	return n
}

// MaxSapwood returns the largest observed ring count, 0 when empty
func (h ReferenceHistogram) MaxSapwood() int {
	if len(h.bins) == 0 {
		return 0
	}
	return h.bins[len(h.bins)-1].NSapwood
}

// Sample expands the histogram into the implicit raw sample, each ring
// count repeated by its bin count, in ascending order.
func (h ReferenceHistogram) Sample() []float64 {
	xs := make([]float64, 0, h.Total())
	for _, b := range h.bins {
		for i := 0; i < b.Count; i++ {
			xs = append(xs, float64(b.NSapwood))
		}
	}
	return xs
}

// FittedModel is a density family fitted to a reference histogram by
// maximum likelihood, truncated at the largest observed ring count.
// INVARIANTS:
// - Frequency values are non-negative
// - PMF values sum to <= 1 over 1..SupportMax (finite truncation, no tail)
// - PMF[k] == Frequency[k] / SampleSize
type FittedModel struct {
	Family     Family          `json:"family"`
	Param1     float64         `json:"param1"`
	Param2     float64         `json:"param2"`
	SampleSize int             `json:"sample_size"`
	SupportMax int             `json:"support_max"`
	PMF        map[int]float64 `json:"pmf"`
	Frequency  map[int]float64 `json:"frequency"`
}

// CredibleInterval is the narrowest contiguous region of an ordered
// discrete axis covering at least the requested probability mass.
// AchievedMass below the requested mass signals a truncated support.
type CredibleInterval struct {
	Lower        int     `json:"lower"`
	Upper        int     `json:"upper"`
	AchievedMass float64 `json:"achieved_mass"`
}

// SeriesRecord describes one tree-ring series entering an aggregation.
// SapwoodCount may be nil only when HasWaneyEdge is true: a series with
// neither a count nor a waney edge carries no dating information.
type SeriesRecord struct {
	ID           core.SeriesID `json:"id"`
	LastRingYear int           `json:"last_ring_year"`
	SapwoodCount *int          `json:"sapwood_count,omitempty"`
	HasWaneyEdge bool          `json:"waney_edge"`
}

// Validate checks the record invariants described above
func (r SeriesRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("series record has an empty id")
	}
	if r.HasWaneyEdge {
		return nil
	}
	if r.SapwoodCount == nil {
		return fmt.Errorf("series %s has neither a sapwood count nor a waney edge", r.ID)
	}
	if *r.SapwoodCount < 0 {
		return fmt.Errorf("%w: series %s has count %d", core.ErrInvalidSapwoodCount, r.ID, *r.SapwoodCount)
	}
	return nil
}

// YearDistribution maps calendar years to felling-date probabilities for
// one series. For a waney-edge series it is a single point mass.
type YearDistribution map[int]float64

// TotalMass returns the summed probability over all years
func (d YearDistribution) TotalMass() float64 {
	total := 0.0
	for _, p := range d {
		total += p
	}
	return total
}

// Years returns the supported calendar years in ascending order
func (d YearDistribution) Years() []int {
	years := make([]int, 0, len(d))
	for y := range d {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Diagnostic records a series dropped during aggregation and why.
// Drops are recovered locally; they never fail the batch unless every
// record is dropped.
type Diagnostic struct {
	SeriesID core.SeriesID `json:"series_id"`
	Reason   string        `json:"reason"`
}

// SPDTable is the pooled felling-date distribution of a batch of series
// on a single contiguous calendar-year axis.
// INVARIANTS:
// - Years is a contiguous increasing integer sequence
// - len(SPD) == len(SPDExact) == len(Years) == len(Series[id]) for all id
// - absent per-series probability is stored as 0, never omitted
type SPDTable struct {
	ID          core.AggregationID          `json:"id"`
	Years       []int                       `json:"years"`
	SPD         []float64                   `json:"spd"`
	SPDExact    []float64                   `json:"spd_exact"`
	Series      map[core.SeriesID][]float64 `json:"series"`
	Diagnostics []Diagnostic                `json:"diagnostics,omitempty"`
	Scaled      bool                        `json:"scaled"`
}
