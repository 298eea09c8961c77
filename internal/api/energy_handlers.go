package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gridpulse/internal/energy"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	dateLayout   = "2006-01-02"
)

// EnergyRecordRequest is the request body for creating or replacing an
// energy record.
type EnergyRecordRequest struct {
	Country  string  `json:"country"`
	Type     string  `json:"type"`
	Source   string  `json:"source"`
	ValueKWh float64 `json:"value_kwh"`
	Date     string  `json:"date"`
}

// toRecord validates the request and converts it to a store record.
func (r EnergyRecordRequest) toRecord() (energy.Record, error) {
	if r.Country == "" {
		return energy.Record{}, errors.New("country is required")
	}
	recordType := energy.RecordType(r.Type)
	if !recordType.Valid() {
		return energy.Record{}, errors.New("type must be generation or consumption")
	}
	if r.ValueKWh < 0 {
		return energy.Record{}, errors.New("value_kwh must not be negative")
	}
	date, err := time.ParseInLocation(dateLayout, r.Date, time.UTC)
	if err != nil {
		return energy.Record{}, errors.New("date must be YYYY-MM-DD")
	}

	return energy.Record{
		Country:  r.Country,
		Type:     recordType,
		Source:   r.Source,
		ValueKWh: r.ValueKWh,
		Date:     date,
	}, nil
}

// queryInt parses an optional positive integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return v, nil
}

func (s *Server) handleListEnergy(c echo.Context) error {
	page, err := queryInt(c, "page", defaultPage)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.deps.Energy.List(c.Request().Context(), energy.ListFilter{
		Country: c.QueryParam("country"),
		Type:    c.QueryParam("type"),
		Source:  c.QueryParam("source"),
		Date:    c.QueryParam("date"),
	}, page, limit)
	if err != nil {
		s.logger.Error("list energy failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "listing failed")
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleCreateEnergy(c echo.Context) error {
	var req EnergyRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	record, err := req.toRecord()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id, err := s.deps.Energy.Create(c.Request().Context(), record)
	if err != nil {
		s.logger.Error("create energy record failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "create failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleUpdateEnergy(c echo.Context) error {
	var req EnergyRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	record, err := req.toRecord()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = s.deps.Energy.Update(c.Request().Context(), c.Param("id"), record)
	if errors.Is(err, energy.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	if err != nil {
		s.logger.Error("update energy record failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "update failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "record updated"})
}

func (s *Server) handleDeleteEnergy(c echo.Context) error {
	err := s.deps.Energy.Delete(c.Request().Context(), c.Param("id"))
	if errors.Is(err, energy.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	if err != nil {
		s.logger.Error("delete energy record failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "record deleted"})
}

// handleSeedEnergy wipes and reimports the energy collection from the
// source CSV. Destructive, so it demands an explicit confirm=true.
func (s *Server) handleSeedEnergy(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return echo.NewHTTPError(http.StatusBadRequest,
			"seeding wipes the energy collection; pass confirm=true to proceed")
	}

	rows, err := energy.LoadSeedRows(s.config.SeedSource)
	if errors.Is(err, energy.ErrSourceMissing) {
		return echo.NewHTTPError(http.StatusNotFound, "source csv not found")
	}
	if err != nil {
		s.logger.Error("loading seed csv failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "seed failed")
	}

	inserted, err := s.deps.Energy.Seed(c.Request().Context(), energy.SeedRecords(rows))
	if err != nil {
		s.logger.Error("seeding energy collection failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "seed failed")
	}

	return c.JSON(http.StatusOK, map[string]int{"inserted": inserted})
}
