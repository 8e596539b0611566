package ports

import (
	"context"

	"fellingdate/domain/dendro"
)

// DatasetInfo describes one reference sapwood dataset available for fitting
type DatasetInfo struct {
	Name         string `json:"name"`
	Region       string `json:"region"`
	Observations int    `json:"observations"`
}

// ReferenceSource supplies reference histograms of sapwood-ring counts,
// either from the built-in catalog or an external store. Implementations
// fail with core.ErrUnknownReferenceDataset when a name does not resolve.
type ReferenceSource interface {
	List(ctx context.Context) ([]DatasetInfo, error)
	Histogram(ctx context.Context, name string) (dendro.ReferenceHistogram, error)
}
