package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/padraicbc/racematch/models"
)

type createSeriesRequest struct {
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	Year             int                  `json:"year"`
	StartDate        *string              `json:"startDate"`
	EndDate          *string              `json:"endDate"`
	ScoringSystem    models.ScoringSystem `json:"scoringSystem"`
	MinimumRaces     int                  `json:"minimumRaces"`
	MaxRacesForScore *int                 `json:"maxRacesForScore"`
	IsPrivate        bool                 `json:"isPrivate"`
}

// CreateSeries inserts a new series. Scoring defaults to points and the
// minimum race count to 1.
func (h *Handler) CreateSeries(c echo.Context) error {
	var req createSeriesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.ScoringSystem == "" {
		req.ScoringSystem = models.ScoringPoints
	}
	if req.MinimumRaces == 0 {
		req.MinimumRaces = 1
	}

	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Year <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "year is required")
	}
	switch req.ScoringSystem {
	case models.ScoringPoints, models.ScoringTime, models.ScoringPlacement:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "scoringSystem must be points, time or placement")
	}
	if req.MinimumRaces < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "minimumRaces must be at least 1")
	}
	if req.MaxRacesForScore != nil && *req.MaxRacesForScore < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "maxRacesForScore must be at least 1")
	}

	series := &models.RaceSeries{
		Name:             req.Name,
		Description:      strings.TrimSpace(req.Description),
		Year:             req.Year,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		ScoringSystem:    req.ScoringSystem,
		MinimumRaces:     req.MinimumRaces,
		MaxRacesForScore: req.MaxRacesForScore,
		IsActive:         true,
		IsPrivate:        req.IsPrivate,
	}
	if err := h.repo.CreateSeries(c.Request().Context(), series); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, series)
}

type addSeriesRaceRequest struct {
	RaceID           int              `json:"raceID"`
	SeriesRaceNumber int              `json:"seriesRaceNumber"`
	PointsMultiplier *decimal.Decimal `json:"pointsMultiplier"`
}

// AddSeriesRace links a race into a series.
func (h *Handler) AddSeriesRace(c echo.Context) error {
	seriesID, err := paramID(c)
	if err != nil {
		return err
	}
	var req addSeriesRaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	mult := decimal.NewFromInt(1)
	if req.PointsMultiplier != nil {
		mult = *req.PointsMultiplier
	}
	if !mult.IsPositive() {
		return echo.NewHTTPError(http.StatusBadRequest, "pointsMultiplier must be positive")
	}
	if req.SeriesRaceNumber < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "seriesRaceNumber must be at least 1")
	}

	ctx := c.Request().Context()
	if _, err := h.repo.GetSeries(ctx, seriesID); err != nil {
		return httpError(err)
	}
	if _, err := h.repo.GetRace(ctx, req.RaceID); err != nil {
		return httpError(err)
	}

	sr := &models.RaceSeriesRace{
		SeriesID:         seriesID,
		RaceID:           req.RaceID,
		SeriesRaceNumber: req.SeriesRaceNumber,
		PointsMultiplier: mult.Round(2),
	}
	if err := h.repo.AddSeriesRace(ctx, sr); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sr)
}

type addParticipantRequest struct {
	RunnerID int `json:"runnerID"`
}

// AddParticipant allowlists a runner in a private series.
func (h *Handler) AddParticipant(c echo.Context) error {
	seriesID, err := paramID(c)
	if err != nil {
		return err
	}
	var req addParticipantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	series, err := h.repo.GetSeries(ctx, seriesID)
	if err != nil {
		return httpError(err)
	}
	if !series.IsPrivate {
		return echo.NewHTTPError(http.StatusBadRequest, "series is not private")
	}
	if _, err := h.repo.GetRunner(ctx, req.RunnerID); err != nil {
		return httpError(err)
	}

	if err := h.repo.AddSeriesParticipant(ctx, seriesID, req.RunnerID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Leaderboard returns the ranked standings of a series.
func (h *Handler) Leaderboard(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	lb, err := h.engine.Leaderboard(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, lb)
}
