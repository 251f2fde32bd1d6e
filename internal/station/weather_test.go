package station

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrentConditions(t *testing.T) {
	snapshot, err := parseCurrentConditions([]byte(currentBody))
	require.NoError(t, err)

	assert.Equal(t, WeatherSnapshot{
		TemperatureC:  14.5,
		FeelsLikeC:    13.1,
		MaxTempC:      16.0,
		MinTempC:      8.2,
		Humidity:      62,
		UVIndex:       3,
		WindSpeedKph:  12,
		RainChancePct: 5,
		Code:          "CLEAR",
		Description:   "Sunny",
		IsDayTime:     true,
	}, snapshot)
}

func TestParseCurrentConditionsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed body", body: `not json`},
		{name: "missing condition", body: `{"temperature":{"degrees":14.5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCurrentConditions([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}
