package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gridpulse/internal/globalenergy"
	"github.com/fyrsmithlabs/gridpulse/internal/insight"
)

func (s *Server) handleGlobalQuery(c echo.Context) error {
	q := globalenergy.Query{Country: c.QueryParam("country")}

	if raw := c.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
		}
		q.Year = year
	}
	if raw := c.QueryParam("max_energy"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "max_energy must be a number")
		}
		q.MaxEnergyTWh = max
	}

	return c.JSON(http.StatusOK, s.deps.Global.Query(q))
}

func (s *Server) handleGlobalFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Global.FilterOptions())
}

func (s *Server) handleGeneratePredictions(c echo.Context) error {
	groups, err := s.deps.Insight.GenerateAggregate(c.Request().Context())
	switch {
	case errors.Is(err, insight.ErrAlreadyExists):
		return c.JSON(http.StatusOK, map[string]string{"message": "predictions file already exists"})
	case errors.Is(err, insight.ErrSourceMissing):
		return echo.NewHTTPError(http.StatusNotFound, "source csv not found")
	case err != nil:
		s.logger.Error("generating predictions failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "generation failed")
	}

	return c.JSON(http.StatusCreated, map[string]int{"groups": groups})
}

// InsightRequest is the request body for POST /ai-insight.
type InsightRequest struct {
	Query string `json:"query"`
}

// InsightResponse is the response body for POST /ai-insight. A provider
// failure still produces an answer; only a missing aggregate file comes
// back as an error field.
type InsightResponse struct {
	Answer string `json:"answer,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleInsight(c echo.Context) error {
	var req InsightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	answer, err := s.deps.Insight.Ask(c.Request().Context(), req.Query)
	if errors.Is(err, insight.ErrAggregateMissing) {
		return c.JSON(http.StatusOK, InsightResponse{
			Error: "predictions file not found, call /generate-predictions first",
		})
	}
	if err != nil {
		s.logger.Error("insight request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "insight failed")
	}

	return c.JSON(http.StatusOK, InsightResponse{Answer: answer})
}
