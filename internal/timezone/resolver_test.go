package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffsetRuleFor(t *testing.T) {
	tests := []struct {
		zone      string
		wantTZ    string
		wantStd   int
		wantErr   bool
	}{
		{zone: "Europe/Lisbon", wantTZ: "WET0WEST,M3.5.0/1,M10.5.0", wantStd: 0},
		{zone: "Asia/Tokyo", wantTZ: "JST-9", wantStd: 540},
		{zone: "America/New_York", wantTZ: "EST5EDT,M3.2.0,M11.1.0", wantStd: -300},
		{zone: "Asia/Kolkata", wantTZ: "IST-5:30", wantStd: 330},
		{zone: "Mars/Olympus_Mons", wantErr: true},
		{zone: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			rule, err := OffsetRuleFor(tt.zone)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrZoneNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTZ, rule.TZ)
			assert.Equal(t, tt.wantStd, rule.StdOffset)
		})
	}
}

func TestConvertCivilToZone(t *testing.T) {
	tests := []struct {
		name  string
		zone  string
		input string
		want  string
	}{
		{name: "lisbon january standard time", zone: "Europe/Lisbon", input: "2026-01-20T19:14:59", want: "19:14"},
		{name: "fractional seconds and suffix ignored", zone: "Europe/Lisbon", input: "2026-01-20T19:14:59.289Z", want: "19:14"},
		{name: "lisbon july summer time", zone: "Europe/Lisbon", input: "2026-07-20T19:14:59", want: "20:14"},
		{name: "tokyo wraps past midnight", zone: "Asia/Tokyo", input: "2026-01-20T19:14:59", want: "04:14"},
		{name: "new york january", zone: "America/New_York", input: "2026-01-20T19:14:59", want: "14:14"},
		{name: "new york july daylight time", zone: "America/New_York", input: "2026-07-20T19:14:59", want: "15:14"},
		{name: "sydney january is summer", zone: "Australia/Sydney", input: "2026-01-20T10:00:00", want: "21:00"},
		{name: "sydney july is winter", zone: "Australia/Sydney", input: "2026-07-20T10:00:00", want: "20:00"},
		{name: "kolkata half hour offset", zone: "Asia/Kolkata", input: "2026-01-20T10:00:00", want: "15:30"},
		{name: "eu summer starts last sunday of march", zone: "Europe/Lisbon", input: "2026-03-29T12:00:00", want: "13:00"},
		{name: "day before eu summer start", zone: "Europe/Lisbon", input: "2026-03-28T12:00:00", want: "12:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertCivilToZone(tt.zone, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown zone", func(t *testing.T) {
		_, err := ConvertCivilToZone("Nowhere/Void", "2026-01-20T19:14:59")
		assert.ErrorIs(t, err, ErrZoneNotFound)
	})
	t.Run("malformed timestamp", func(t *testing.T) {
		_, err := ConvertCivilToZone("Europe/Lisbon", "20-01-2026")
		assert.Error(t, err)
	})
}

func TestConvertInstantToLocalRoundTrip(t *testing.T) {
	instant := time.Date(2026, time.January, 20, 19, 14, 59, 0, time.UTC)

	civil, err := ConvertInstantToLocal("Europe/Lisbon", instant)
	require.NoError(t, err)

	assert.Equal(t, 2026, civil.Year)
	assert.Equal(t, time.January, civil.Month)
	assert.Equal(t, 20, civil.Day)
	assert.Equal(t, 2, civil.Weekday) // Tuesday

	// Agrees with the string conversion to the minute.
	clock, err := ConvertCivilToZone("Europe/Lisbon", "2026-01-20T19:14:59")
	require.NoError(t, err)
	assert.Equal(t, clock, civil.Clock())
}

func TestDurationBetween(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
	}{
		{"2024-01-01T09:00:00", "2024-01-01T09:45:00", "45 min"},
		{"2024-01-01T09:00:00", "2024-01-01T10:00:00", "1 hour"},
		{"2024-01-01T09:00:00", "2024-01-01T11:30:00", "2 h 30 min"},
		{"2024-01-01T09:00:00", "2024-01-01T12:00:00", "3 hours"},
		{"2024-01-01T09:00:00", "2024-01-01T09:00:00", "0 min"},
		{"2024-01-01T23:30:00", "2024-01-02T01:00:00", "1 h 30 min"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := DurationBetween(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("end before start", func(t *testing.T) {
		_, err := DurationBetween("2024-01-01T10:00:00", "2024-01-01T09:00:00")
		assert.Error(t, err)
	})
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		year, month, day int
		want             int
	}{
		{2024, 1, 1, 1},   // Monday
		{2026, 1, 20, 2},  // Tuesday
		{2000, 2, 29, 2},  // Tuesday, century leap day
		{1900, 1, 1, 1},   // Monday, non-leap century
		{2026, 3, 1, 0},   // Sunday
		{1999, 12, 31, 5}, // Friday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Weekday(tt.year, tt.month, tt.day),
			"%04d-%02d-%02d", tt.year, tt.month, tt.day)
	}
}

func TestCivilFormatting(t *testing.T) {
	civil := Civil{Year: 2024, Month: time.January, Day: 1, Hour: 9, Minute: 5, Weekday: 1}
	assert.Equal(t, "Monday, 1 Jan 2024", civil.HeaderDate())
	assert.Equal(t, "09:05", civil.Clock())
	assert.Equal(t, "Sun", WeekdayShortName(0))
	assert.Equal(t, "Sat", WeekdayShortName(6))
}

func TestOffsetSuffix(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "Z"},
		{540, "+09:00"},
		{-300, "-05:00"},
		{330, "+05:30"},
		{60, "+01:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OffsetSuffix(tt.minutes), "%d minutes", tt.minutes)
	}
}
