package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/racematch/importer"
	"github.com/padraicbc/racematch/matching"
	"github.com/padraicbc/racematch/models"
)

// Import runs a provider batch through identity resolution into a race.
func (h *Handler) Import(c echo.Context) error {
	var b importer.Batch
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b.SourceProvider = strings.TrimSpace(b.SourceProvider)
	if b.SourceProvider == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sourceProvider is required")
	}
	if b.RaceID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "raceID is required")
	}

	rep, err := h.importer.Import(c.Request().Context(), b)
	if err != nil {
		if rep == nil {
			return httpError(err)
		}
		h.logger.Error("import finished with error", zap.String("batch_id", rep.BatchID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rep)
}

type previewResponse struct {
	Candidates []matching.Candidate `json:"candidates"`
	Decision   matching.Decision    `json:"decision"`
}

// PreviewMatch scores a raw record against the runner store without
// writing anything.
func (h *Handler) PreviewMatch(c echo.Context) error {
	var raw models.RawRunnerData
	if err := c.Bind(&raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(raw.Name) == "" {
		return httpError(matching.ErrMissingName)
	}

	candidates, err := h.resolver.Finder().FindCandidates(c.Request().Context(), h.repo, raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if candidates == nil {
		candidates = []matching.Candidate{}
	}
	return c.JSON(http.StatusOK, previewResponse{
		Candidates: candidates,
		Decision:   h.resolver.Predict(candidates),
	})
}
