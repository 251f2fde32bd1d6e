package station

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ruimsramos/epaper-display/internal/barrier"
	"github.com/ruimsramos/epaper-display/internal/timezone"
)

const dailyForecastURL = "https://weather.googleapis.com/v1/forecast/days:lookup"

// runForecastTask waits for the location, fetches the multi-day forecast
// and renders the forecast row. Day 0 carries today's sunrise/sunset in
// local wall-clock time; the following days carry their weekday names.
// Raises FlagForecast on every exit path.
func (c *Cycle) runForecastTask(ctx context.Context) {
	log := c.log.WithField("task", "forecast")
	defer c.flags.Raise(barrier.FlagForecast)

	c.flags.AwaitAll(barrier.FlagLocation)
	loc, ok := c.location()
	if !ok {
		log.Warn("no location this cycle; skipping forecast")
		return
	}

	values := url.Values{}
	values.Set("key", c.cfg.WeatherAPIKey)
	values.Set("location.latitude", fmt.Sprintf("%f", loc.Latitude))
	values.Set("location.longitude", fmt.Sprintf("%f", loc.Longitude))
	values.Set("days", strconv.Itoa(ForecastDays))
	requestURL := fmt.Sprintf("%s?%s", dailyForecastURL, values.Encode())

	var body []byte
	err := c.withNetwork(func() error {
		var getErr error
		body, getErr = c.net.Get(ctx, requestURL, "")
		return getErr
	})
	if err != nil {
		log.WithError(err).Error("fetching forecast")
		return
	}

	days, err := parseDailyForecast(body)
	if err != nil {
		log.WithError(err).Error("parsing forecast")
		return
	}
	log.WithField("days", len(days)).Info("forecast fetched")

	err = c.withFramebuffer(func() error {
		return c.renderer.WriteForecast(days)
	})
	if err != nil {
		log.WithError(err).Error("rendering forecast")
	}
}

func parseDailyForecast(body []byte) ([]ForecastDay, error) {
	var payload struct {
		TimeZone struct {
			ID string `json:"id"`
		} `json:"timeZone"`
		ForecastDays []struct {
			DisplayDate struct {
				Year  int `json:"year"`
				Month int `json:"month"`
				Day   int `json:"day"`
			} `json:"displayDate"`
			MaxTemperature struct {
				Degrees float64 `json:"degrees"`
			} `json:"maxTemperature"`
			MinTemperature struct {
				Degrees float64 `json:"degrees"`
			} `json:"minTemperature"`
			DaytimeForecast struct {
				WeatherCondition struct {
					Description struct {
						Text string `json:"text"`
					} `json:"description"`
					Type string `json:"type"`
				} `json:"weatherCondition"`
				Precipitation struct {
					Probability struct {
						Percent int `json:"percent"`
					} `json:"probability"`
				} `json:"precipitation"`
			} `json:"daytimeForecast"`
			SunEvents struct {
				SunriseTime string `json:"sunriseTime"`
				SunsetTime  string `json:"sunsetTime"`
			} `json:"sunEvents"`
		} `json:"forecastDays"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if len(payload.ForecastDays) == 0 {
		return nil, fmt.Errorf("response has no forecast days")
	}

	count := len(payload.ForecastDays)
	if count > ForecastDays {
		count = ForecastDays
	}

	days := make([]ForecastDay, 0, count)
	for i := 0; i < count; i++ {
		fd := payload.ForecastDays[i]

		day := ForecastDay{
			MaxTempC:      fd.MaxTemperature.Degrees,
			MinTempC:      fd.MinTemperature.Degrees,
			RainChancePct: fd.DaytimeForecast.Precipitation.Probability.Percent,
			Code:          fd.DaytimeForecast.WeatherCondition.Type,
			Description:   fd.DaytimeForecast.WeatherCondition.Description.Text,
		}

		if fd.DisplayDate.Year != 0 {
			day.Date = time.Date(fd.DisplayDate.Year, time.Month(fd.DisplayDate.Month),
				fd.DisplayDate.Day, 0, 0, 0, 0, time.UTC)
			weekday := timezone.Weekday(fd.DisplayDate.Year, fd.DisplayDate.Month, fd.DisplayDate.Day)
			day.WeekdayName = timezone.WeekdayShortName(weekday)
		}

		// Only today's sun events are shown on the panel.
		if i == 0 {
			day.Sunrise = localClockOrEmpty(payload.TimeZone.ID, fd.SunEvents.SunriseTime)
			day.Sunset = localClockOrEmpty(payload.TimeZone.ID, fd.SunEvents.SunsetTime)
		}

		days = append(days, day)
	}
	return days, nil
}

func localClockOrEmpty(zoneID, civilTimestamp string) string {
	if zoneID == "" || civilTimestamp == "" {
		return ""
	}
	clock, err := timezone.ConvertCivilToZone(zoneID, civilTimestamp)
	if err != nil {
		return ""
	}
	return clock
}
