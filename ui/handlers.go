package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fellingdate/adapters/report"
	"fellingdate/app"
	"fellingdate/domain/core"
	"fellingdate/domain/dendro"
)

// fitRequest is the JSON body of POST /api/fit
type fitRequest struct {
	Dataset  string  `json:"dataset" binding:"required"`
	Family   string  `json:"family" binding:"required"`
	CredMass float64 `json:"cred_mass"`
}

// intervalRequest is the JSON body of POST /api/interval
type intervalRequest struct {
	Dataset      string  `json:"dataset"`
	Family       string  `json:"family"`
	SapwoodCount int     `json:"sapwood_count"`
	LastRingYear int     `json:"last_ring_year"`
	HasWaneyEdge bool    `json:"waney_edge"`
	CredMass     float64 `json:"cred_mass"`
}

// seriesRecord mirrors dendro.SeriesRecord for JSON binding
type seriesRecord struct {
	ID           string `json:"id"`
	LastRingYear int    `json:"last_ring_year"`
	SapwoodCount *int   `json:"sapwood_count"`
	HasWaneyEdge bool   `json:"waney_edge"`
}

// spdRequest is the JSON body of POST /api/spd
type spdRequest struct {
	Records []seriesRecord `json:"records" binding:"required"`
	Dataset string         `json:"dataset" binding:"required"`
	Family  string         `json:"family" binding:"required"`
	Scale   bool           `json:"scale"`
}

func (s *Server) handleListDatasets(c *gin.Context) {
	infos, err := s.service.Datasets(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": infos})
}

func (s *Server) handleFit(c *gin.Context) {
	var req fitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	family, err := dendro.ParseFamily(req.Family)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := s.service.FitReference(c.Request.Context(), req.Dataset, family, credMassOrDefault(req.CredMass))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleInterval(c *gin.Context) {
	req, ok := bindIntervalRequest(c)
	if !ok {
		return
	}
	estimate, err := s.service.EstimateInterval(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (s *Server) handleIntervalReport(c *gin.Context) {
	req, ok := bindIntervalRequest(c)
	if !ok {
		return
	}
	estimate, err := s.service.EstimateInterval(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.ToHTML(report.IntervalMarkdown(estimate)))
}

func (s *Server) handleSPD(c *gin.Context) {
	var req spdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	family, err := dendro.ParseFamily(req.Family)
	if err != nil {
		writeError(c, err)
		return
	}
	records := make([]dendro.SeriesRecord, len(req.Records))
	for i, r := range req.Records {
		records[i] = dendro.SeriesRecord{
			ID:           core.SeriesID(r.ID),
			LastRingYear: r.LastRingYear,
			SapwoodCount: r.SapwoodCount,
			HasWaneyEdge: r.HasWaneyEdge,
		}
	}
	table, err := s.service.SumSeries(c.Request.Context(), app.SumRequest{
		Records: records,
		Dataset: req.Dataset,
		Family:  family,
		Scale:   req.Scale,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func bindIntervalRequest(c *gin.Context) (app.IntervalRequest, bool) {
	var req intervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return app.IntervalRequest{}, false
	}
	out := app.IntervalRequest{
		Dataset:      req.Dataset,
		SapwoodCount: req.SapwoodCount,
		LastRingYear: req.LastRingYear,
		HasWaneyEdge: req.HasWaneyEdge,
		CredMass:     credMassOrDefault(req.CredMass),
	}
	if !req.HasWaneyEdge {
		family, err := dendro.ParseFamily(req.Family)
		if err != nil {
			writeError(c, err)
			return app.IntervalRequest{}, false
		}
		out.Family = family
	}
	return out, true
}

// credMassOrDefault applies the conventional 95.4% (two sigma) default
// when the request leaves cred_mass unset.
func credMassOrDefault(v float64) float64 {
	if v == 0 {
		return 0.954
	}
	return v
}

// writeError maps domain errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case core.IsValidationError(err),
		errors.Is(err, core.ErrEmptyReferenceData),
		errors.Is(err, core.ErrMalformedReferenceFile),
		errors.Is(err, core.ErrInsufficientModelSupport),
		errors.Is(err, core.ErrEmptyInputSet):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
