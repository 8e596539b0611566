package app

import (
	"context"
	"errors"
	"math"

	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
	"fellingdate/ports"
)

// FellingService orchestrates the estimation pipeline: resolve a reference
// histogram, fit a density family, project series onto the calendar axis
// and report credible intervals or pooled sums.
type FellingService struct {
	sources []ports.ReferenceSource
}

// NewFellingService creates a service reading reference data from the
// given sources, tried in order (catalog first, external stores after).
func NewFellingService(sources ...ports.ReferenceSource) *FellingService {
	return &FellingService{sources: sources}
}

// IntervalRequest describes a single-series felling-date estimate
type IntervalRequest struct {
	Dataset      string        `json:"dataset"`
	Family       dendro.Family `json:"family"`
	SapwoodCount int           `json:"sapwood_count"`
	LastRingYear int           `json:"last_ring_year"`
	HasWaneyEdge bool          `json:"waney_edge"`
	CredMass     float64       `json:"cred_mass"`
}

// IntervalEstimate is the full result of a single-series estimate
type IntervalEstimate struct {
	Request      IntervalRequest         `json:"request"`
	Model        *dendro.FittedModel     `json:"model,omitempty"`
	Distribution dendro.YearDistribution `json:"distribution"`
	Interval     dendro.CredibleInterval `json:"interval"`
}

// FitResult pairs a fitted model with the credible range of sapwood-ring
// counts it implies.
type FitResult struct {
	Dataset       string                  `json:"dataset"`
	Model         *dendro.FittedModel     `json:"model"`
	CountInterval dendro.CredibleInterval `json:"count_interval"`
}

// SumRequest describes a batch aggregation over one reference dataset
type SumRequest struct {
	Records []dendro.SeriesRecord `json:"records"`
	Dataset string                `json:"dataset"`
	Family  dendro.Family         `json:"family"`
	Scale   bool                  `json:"scale"`
}

// Datasets enumerates reference datasets across all configured sources
func (s *FellingService) Datasets(ctx context.Context) ([]ports.DatasetInfo, error) {
	var infos []ports.DatasetInfo
	for _, src := range s.sources {
		part, err := src.List(ctx)
		if err != nil {
			return nil, err
		}
		infos = append(infos, part...)
	}
	return infos, nil
}

// Histogram resolves a dataset name against the sources in order
func (s *FellingService) Histogram(ctx context.Context, name string) (dendro.ReferenceHistogram, error) {
	for _, src := range s.sources {
		hist, err := src.Histogram(ctx, name)
		if err == nil {
			return hist, nil
		}
		if !errors.Is(err, core.ErrUnknownReferenceDataset) {
			return dendro.ReferenceHistogram{}, err
		}
	}
	return dendro.ReferenceHistogram{}, core.NewUnknownReferenceDatasetError(name)
}

// FitReference fits a family to a named dataset and reports the credible
// range of sapwood-ring counts under the fitted model.
func (s *FellingService) FitReference(ctx context.Context, datasetName string, family dendro.Family, credMass float64) (*FitResult, error) {
	if err := validateCredMass(credMass); err != nil {
		return nil, err
	}
	hist, err := s.Histogram(ctx, datasetName)
	if err != nil {
		return nil, err
	}
	model, err := dendro.Fit(hist, family)
	if err != nil {
		return nil, err
	}

	axis := make([]int, model.SupportMax)
	probs := make([]float64, model.SupportMax)
	for k := 1; k <= model.SupportMax; k++ {
		axis[k-1] = k
		probs[k-1] = model.PMF[k]
	}
	interval, err := dendro.HDI(axis, probs, credMass)
	if err != nil {
		return nil, err
	}
	return &FitResult{Dataset: datasetName, Model: model, CountInterval: interval}, nil
}

// EstimateInterval runs the fit-project-HDI pipeline for one series
func (s *FellingService) EstimateInterval(ctx context.Context, req IntervalRequest) (*IntervalEstimate, error) {
	if err := validateCredMass(req.CredMass); err != nil {
		return nil, err
	}

	if req.HasWaneyEdge {
		// Exact felling year, no reference model involved
		dist, err := dendro.Project(nil, 0, req.LastRingYear, true)
		if err != nil {
			return nil, err
		}
		interval, err := dendro.HDIOfDistribution(dist, req.CredMass)
		if err != nil {
			return nil, err
		}
		return &IntervalEstimate{Request: req, Distribution: dist, Interval: interval}, nil
	}

	hist, err := s.Histogram(ctx, req.Dataset)
	if err != nil {
		return nil, err
	}
	model, err := dendro.Fit(hist, req.Family)
	if err != nil {
		return nil, err
	}
	dist, err := dendro.Project(model, req.SapwoodCount, req.LastRingYear, false)
	if err != nil {
		return nil, err
	}
	interval, err := dendro.HDIOfDistribution(dist, req.CredMass)
	if err != nil {
		return nil, err
	}
	return &IntervalEstimate{Request: req, Model: model, Distribution: dist, Interval: interval}, nil
}

// SumSeries fits the requested dataset once and pools the felling-date
// distributions of the whole batch into an SPD table.
func (s *FellingService) SumSeries(ctx context.Context, req SumRequest) (*dendro.SPDTable, error) {
	if len(req.Records) == 0 {
		return nil, core.ErrEmptyInputSet
	}
	hist, err := s.Histogram(ctx, req.Dataset)
	if err != nil {
		return nil, err
	}
	model, err := dendro.Fit(hist, req.Family)
	if err != nil {
		return nil, err
	}

	models := make(map[core.SeriesID]*dendro.FittedModel, len(req.Records))
	for _, rec := range req.Records {
		models[rec.ID] = model
	}
	return dendro.Aggregate(ctx, req.Records, models, req.Scale)
}

func validateCredMass(credMass float64) error {
	if math.IsNaN(credMass) || math.IsInf(credMass, 0) || credMass <= 0 || credMass >= 1 {
		return core.NewInvalidCredMassError(credMass)
	}
	return nil
}
