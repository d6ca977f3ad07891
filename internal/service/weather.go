package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/skycast/skycast-server/internal/logger"
	"github.com/skycast/skycast-server/internal/model"
)

var summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

const (
	defaultForecastDays = 5
	maxForecastDays     = 14
	minTemperatureC     = -20
	maxTemperatureC     = 55
)

// Weather generates random daily forecasts behind a small in-process TTL
// cache. Forecast data is synthetic; there is no upstream provider.
type Weather struct {
	cacheTTL time.Duration
	logger   *logger.Logger

	mu    sync.Mutex
	cache map[int]cachedForecast
}

type cachedForecast struct {
	forecasts []model.Forecast
	expiresAt time.Time
}

func NewWeather(cacheTTL time.Duration, logger *logger.Logger) *Weather {
	return &Weather{
		cacheTTL: cacheTTL,
		logger:   logger,
		cache:    make(map[int]cachedForecast),
	}
}

// Forecast returns forecasts for the next days. Days is clamped to
// [1, 14]; zero or negative selects the default of 5.
func (w *Weather) Forecast(_ context.Context, days int) []model.Forecast {
	if days <= 0 {
		days = defaultForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if cached, ok := w.cache[days]; ok && time.Now().Before(cached.expiresAt) {
		w.logger.Debug("Weather service: forecast served from cache",
			"days", days)
		return cached.forecasts
	}

	forecasts := make([]model.Forecast, days)
	today := time.Now().Truncate(24 * time.Hour)
	for i := range forecasts {
		tempC := minTemperatureC + rand.IntN(maxTemperatureC-minTemperatureC+1)
		forecasts[i] = model.Forecast{
			Date:         today.AddDate(0, 0, i+1),
			TemperatureC: tempC,
			TemperatureF: 32 + tempC*9/5,
			Summary:      summaries[rand.IntN(len(summaries))],
		}
	}

	w.cache[days] = cachedForecast{
		forecasts: forecasts,
		expiresAt: time.Now().Add(w.cacheTTL),
	}

	w.logger.Debug("Weather service: forecast generated",
		"days", days)

	return forecasts
}
