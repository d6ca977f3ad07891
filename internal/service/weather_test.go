package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast-server/internal/testutil"
)

func TestWeather_Forecast_Shape(t *testing.T) {
	ctx := context.Background()
	w := NewWeather(time.Minute, testutil.MakeNoopLogger())

	forecasts := w.Forecast(ctx, 7)
	require.Len(t, forecasts, 7)

	for i, f := range forecasts {
		assert.GreaterOrEqual(t, f.TemperatureC, -20)
		assert.LessOrEqual(t, f.TemperatureC, 55)
		assert.Equal(t, 32+f.TemperatureC*9/5, f.TemperatureF)
		assert.Contains(t, summaries, f.Summary)
		assert.True(t, f.Date.After(time.Now().Add(-24*time.Hour)), "forecast %d should be in the future", i)
	}
}

func TestWeather_Forecast_DaysClamped(t *testing.T) {
	ctx := context.Background()
	w := NewWeather(time.Minute, testutil.MakeNoopLogger())

	assert.Len(t, w.Forecast(ctx, 0), defaultForecastDays)
	assert.Len(t, w.Forecast(ctx, -3), defaultForecastDays)
	assert.Len(t, w.Forecast(ctx, 100), maxForecastDays)
}

func TestWeather_Forecast_Cached(t *testing.T) {
	ctx := context.Background()
	w := NewWeather(time.Minute, testutil.MakeNoopLogger())

	first := w.Forecast(ctx, 5)
	second := w.Forecast(ctx, 5)
	assert.Equal(t, first, second)
}

func TestWeather_Forecast_CacheExpires(t *testing.T) {
	ctx := context.Background()
	w := NewWeather(time.Nanosecond, testutil.MakeNoopLogger())

	w.Forecast(ctx, 5)
	firstExpiry := w.cache[5].expiresAt

	time.Sleep(time.Millisecond)
	w.Forecast(ctx, 5)

	assert.True(t, w.cache[5].expiresAt.After(firstExpiry))
}
