package station

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDailyForecast(t *testing.T) {
	days, err := parseDailyForecast([]byte(forecastBody))
	require.NoError(t, err)
	require.Len(t, days, ForecastDays)

	today := days[0]
	assert.Equal(t, time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC), today.Date)
	assert.Equal(t, "Tue", today.WeekdayName)
	assert.Equal(t, 16.0, today.MaxTempC)
	assert.Equal(t, 8.2, today.MinTempC)
	assert.Equal(t, "CLEAR", today.Code)
	assert.Equal(t, "07:52", today.Sunrise, "Lisbon is on standard time in January")
	assert.Equal(t, "17:41", today.Sunset)

	assert.Equal(t, "Wed", days[1].WeekdayName)
	assert.Equal(t, "Thu", days[2].WeekdayName)
	for _, day := range days[1:] {
		assert.Empty(t, day.Sunrise, "sun events are only shown for today")
		assert.Empty(t, day.Sunset)
	}
}

func TestParseDailyForecastCapsDayCount(t *testing.T) {
	body := `{
		"timeZone": {"id": "Europe/Lisbon"},
		"forecastDays": [
			{"displayDate": {"year": 2026, "month": 1, "day": 20}},
			{"displayDate": {"year": 2026, "month": 1, "day": 21}},
			{"displayDate": {"year": 2026, "month": 1, "day": 22}},
			{"displayDate": {"year": 2026, "month": 1, "day": 23}},
			{"displayDate": {"year": 2026, "month": 1, "day": 24}}
		]
	}`
	days, err := parseDailyForecast([]byte(body))
	require.NoError(t, err)
	assert.Len(t, days, ForecastDays)
}

func TestParseDailyForecastErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed body", body: `not json`},
		{name: "no days", body: `{"forecastDays":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDailyForecast([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}
