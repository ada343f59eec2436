package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "github.com/padraicbc/racematch/middleware"
	"github.com/padraicbc/racematch/models"
)

// ListMatches returns the review queue. Defaults to pending matches;
// status=all lists every audit row.
func (h *Handler) ListMatches(c echo.Context) error {
	status := models.MatchStatus(c.QueryParam("status"))
	switch status {
	case "":
		status = models.MatchPending
	case "all":
		status = ""
	default:
		if !status.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status "+string(status))
		}
	}

	matches, err := h.reviewer.ListMatches(c.Request().Context(), status)
	if err != nil {
		return httpError(err)
	}
	if matches == nil {
		matches = []models.RunnerMatch{}
	}
	return c.JSON(http.StatusOK, matches)
}

// ApproveMatch records the authenticated user's approval of a match.
func (h *Handler) ApproveMatch(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	m, err := h.reviewer.ApproveMatch(c.Request().Context(), id, mw.Username(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}

// RejectMatch records the authenticated user's rejection of a match.
func (h *Handler) RejectMatch(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	m, err := h.reviewer.RejectMatch(c.Request().Context(), id, mw.Username(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, m)
}
