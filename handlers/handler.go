package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/racematch/importer"
	"github.com/padraicbc/racematch/matching"
	"github.com/padraicbc/racematch/normalize"
	"github.com/padraicbc/racematch/scoring"
	"github.com/padraicbc/racematch/store"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	repo     store.Repository
	resolver *matching.Resolver
	reviewer *matching.Reviewer
	engine   *scoring.Engine
	importer *importer.Importer
	logger   *zap.Logger
	JWTKey   []byte
}

// New creates a Handler over repo. The reviewer and scoring engine are built
// on the same repository.
func New(repo store.Repository, resolver *matching.Resolver, imp *importer.Importer, jwtKey []byte, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:     repo,
		resolver: resolver,
		reviewer: matching.NewReviewer(repo, logger),
		engine:   scoring.NewEngine(repo, logger),
		importer: imp,
		logger:   logger,
		JWTKey:   jwtKey,
	}
}

func paramID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// httpError maps core errors onto HTTP status codes.
func httpError(err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, matching.ErrMatchNotFound),
		errors.Is(err, scoring.ErrSeriesNotFound),
		errors.Is(err, importer.ErrRaceNotFound):
		code = http.StatusNotFound
	case errors.Is(err, matching.ErrMatchAlreadyReviewed),
		errors.Is(err, matching.ErrMatchNotReviewable),
		errors.Is(err, scoring.ErrRaceMissing):
		code = http.StatusConflict
	case errors.Is(err, scoring.ErrScoringSystemNotImplemented):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, matching.ErrMissingName),
		errors.Is(err, matching.ErrMissingFinishTime),
		errors.Is(err, matching.ErrMissingReviewer),
		errors.Is(err, scoring.ErrInvalidSeries),
		errors.Is(err, normalize.ErrInvalidFinishTime):
		code = http.StatusBadRequest
	}
	return echo.NewHTTPError(code, err.Error()).SetInternal(err)
}
