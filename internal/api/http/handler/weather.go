package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skycast/skycast-server/internal/logger"
	"github.com/skycast/skycast-server/internal/model"
)

// WeatherService produces daily forecasts.
type WeatherService interface {
	Forecast(ctx context.Context, days int) []model.Forecast
}

// Weather handles HTTP endpoints for forecasts.
type Weather struct {
	weatherService WeatherService
	logger         *logger.Logger
}

// NewWeather creates a new Weather handler.
func NewWeather(weatherService WeatherService, logger *logger.Logger) *Weather {
	return &Weather{
		weatherService: weatherService,
		logger:         logger,
	}
}

// Forecast returns the forecast for the coming days. The optional "days"
// query parameter selects the horizon; the service clamps it.
func (h *Weather) Forecast(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("days must be an integer"))
			return
		}
		days = parsed
	}

	forecasts := h.weatherService.Forecast(c.Request.Context(), days)

	h.logger.Debug("Weather handler: forecast served",
		"days", len(forecasts))

	c.JSON(http.StatusOK, forecasts)
}
