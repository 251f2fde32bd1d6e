package station

import "time"

// ForecastDays is the number of days shown on the forecast row, today
// included at index 0.
const ForecastDays = 3

// MaxCalendarEvents is the render capacity of the events column. Events
// past this count are dropped in API order.
const MaxCalendarEvents = 4

// SummaryBudget is the character budget of one event summary line.
// Summaries over budget are cut to 38 characters plus an ellipsis.
const SummaryBudget = 40

// Location is produced once by the location task and read-only afterwards.
type Location struct {
	Latitude    float64
	Longitude   float64
	City        string
	CountryCode string
	Timezone    string // IANA identifier
}

// WeatherSnapshot is the current-conditions record as rendered on the
// weather tab. Code is the provider's condition type, an open string enum.
type WeatherSnapshot struct {
	TemperatureC  float64
	FeelsLikeC    float64
	MaxTempC      float64
	MinTempC      float64
	Humidity      int
	UVIndex       int
	WindSpeedKph  int
	RainChancePct int
	Code          string
	Description   string
	IsDayTime     bool
}

// ForecastDay is one day of the multi-day forecast. Sunrise and Sunset are
// local wall-clock strings and only set for index 0.
type ForecastDay struct {
	Date          time.Time // calendar date, midnight UTC
	WeekdayName   string
	MaxTempC      float64
	MinTempC      float64
	RainChancePct int
	Code          string
	Description   string
	Sunrise       string
	Sunset        string
}

// CalendarEvent is one rendered event line. Start and Duration are
// display strings; an all-day event has neither.
type CalendarEvent struct {
	Summary  string
	Start    string
	Duration string
	AllDay   bool
}
