package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/racematch/models"
)

type createRaceRequest struct {
	Name          string  `json:"name"`
	Date          string  `json:"date"`
	Distance      string  `json:"distance"`
	DistanceMiles float64 `json:"distanceMiles"`
}

// CreateRace inserts a new race.
func (h *Handler) CreateRace(c echo.Context) error {
	var req createRaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Distance = strings.ToLower(strings.TrimSpace(req.Distance))

	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if _, err := time.Parse(time.DateOnly, req.Date); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	if !models.ValidDistance(req.Distance) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown distance "+req.Distance)
	}

	race := &models.Race{
		Name:          req.Name,
		Date:          req.Date,
		Distance:      req.Distance,
		DistanceMiles: req.DistanceMiles,
	}
	if err := h.repo.CreateRace(c.Request().Context(), race); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, race)
}

// GetRace returns one race.
func (h *Handler) GetRace(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	race, err := h.repo.GetRace(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, race)
}

// RaceResults returns a race's results with their runners.
func (h *Handler) RaceResults(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.repo.GetRace(ctx, id); err != nil {
		return httpError(err)
	}

	results, err := h.repo.GetResultsForRaces(ctx, []int{id})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if results == nil {
		results = []models.Result{}
	}
	return c.JSON(http.StatusOK, results)
}

// GetRunner returns one runner.
func (h *Handler) GetRunner(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	runner, err := h.repo.GetRunner(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, runner)
}
