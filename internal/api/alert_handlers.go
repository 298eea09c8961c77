package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gridpulse/internal/alert"
)

// maxScreenshotBytes bounds the uploaded dashboard screenshot.
const maxScreenshotBytes = 10 << 20

// handleCreateAlert accepts a multipart form with the alert fields and a
// PNG screenshot, stores the alert and emails the screenshot to the
// user. A mail failure is a gateway error; the alert record stays
// pending for later reconciliation.
func (s *Server) handleCreateAlert(c echo.Context) error {
	email := c.FormValue("email")
	country := c.FormValue("country")
	startDate := c.FormValue("startDate")
	endDate := c.FormValue("endDate")

	if email == "" || country == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and country are required")
	}
	for _, d := range []string{startDate, endDate} {
		if _, err := time.ParseInLocation(dateLayout, d, time.UTC); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "startDate and endDate must be YYYY-MM-DD")
		}
	}

	fh, err := c.FormFile("screenshot")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "screenshot file is required")
	}
	if fh.Size > maxScreenshotBytes {
		return echo.NewHTTPError(http.StatusBadRequest, "screenshot too large")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "screenshot unreadable")
	}
	defer f.Close()
	screenshot, err := io.ReadAll(io.LimitReader(f, maxScreenshotBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "screenshot unreadable")
	}

	err = s.deps.Alerts.Create(c.Request().Context(), alert.CreateParams{
		Email:      email,
		UserID:     c.FormValue("userId"),
		Country:    country,
		StartDate:  startDate,
		EndDate:    endDate,
		Screenshot: screenshot,
	})
	if errors.Is(err, alert.ErrMailFailed) {
		s.logger.Error("alert notification failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "alert stored but notification email failed")
	}
	if err != nil {
		s.logger.Error("alert creation failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "alert creation failed")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "alert created"})
}
