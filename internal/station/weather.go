package station

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ruimsramos/epaper-display/internal/barrier"
)

const currentConditionsURL = "https://weather.googleapis.com/v1/currentConditions:lookup"

// runCurrentWeatherTask waits for the location, fetches the current
// conditions and renders the weather tab. It raises FlagCurrentWeather on
// every exit path; fetch and render failures only leave the widget stale.
func (c *Cycle) runCurrentWeatherTask(ctx context.Context) {
	log := c.log.WithField("task", "current-weather")
	defer c.flags.Raise(barrier.FlagCurrentWeather)

	c.flags.AwaitAll(barrier.FlagLocation)
	loc, ok := c.location()
	if !ok {
		log.Warn("no location this cycle; skipping current weather")
		return
	}

	values := url.Values{}
	values.Set("key", c.cfg.WeatherAPIKey)
	values.Set("location.latitude", fmt.Sprintf("%f", loc.Latitude))
	values.Set("location.longitude", fmt.Sprintf("%f", loc.Longitude))
	requestURL := fmt.Sprintf("%s?%s", currentConditionsURL, values.Encode())

	var body []byte
	err := c.withNetwork(func() error {
		var getErr error
		body, getErr = c.net.Get(ctx, requestURL, "")
		return getErr
	})
	if err != nil {
		log.WithError(err).Error("fetching current conditions")
		return
	}

	snapshot, err := parseCurrentConditions(body)
	if err != nil {
		log.WithError(err).Error("parsing current conditions")
		return
	}
	log.WithField("condition", snapshot.Code).Info("current weather fetched")

	err = c.withFramebuffer(func() error {
		return c.renderer.WriteCurrentWeather(snapshot)
	})
	if err != nil {
		log.WithError(err).Error("rendering current weather")
	}
}

func parseCurrentConditions(body []byte) (WeatherSnapshot, error) {
	var payload struct {
		IsDayTime        bool `json:"isDayTime"`
		WeatherCondition struct {
			Description struct {
				Text string `json:"text"`
			} `json:"description"`
			Type string `json:"type"`
		} `json:"weatherCondition"`
		Temperature struct {
			Degrees float64 `json:"degrees"`
		} `json:"temperature"`
		FeelsLikeTemperature struct {
			Degrees float64 `json:"degrees"`
		} `json:"feelsLikeTemperature"`
		RelativeHumidity int `json:"relativeHumidity"`
		UVIndex          int `json:"uvIndex"`
		History          struct {
			MaxTemperature struct {
				Degrees float64 `json:"degrees"`
			} `json:"maxTemperature"`
			MinTemperature struct {
				Degrees float64 `json:"degrees"`
			} `json:"minTemperature"`
		} `json:"currentConditionsHistory"`
		Wind struct {
			Speed struct {
				Value int `json:"value"`
			} `json:"speed"`
		} `json:"wind"`
		Precipitation struct {
			Probability struct {
				Percent int `json:"percent"`
			} `json:"probability"`
		} `json:"precipitation"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return WeatherSnapshot{}, err
	}
	if payload.WeatherCondition.Type == "" {
		return WeatherSnapshot{}, fmt.Errorf("response has no weather condition")
	}

	return WeatherSnapshot{
		TemperatureC:  payload.Temperature.Degrees,
		FeelsLikeC:    payload.FeelsLikeTemperature.Degrees,
		MaxTempC:      payload.History.MaxTemperature.Degrees,
		MinTempC:      payload.History.MinTemperature.Degrees,
		Humidity:      payload.RelativeHumidity,
		UVIndex:       payload.UVIndex,
		WindSpeedKph:  payload.Wind.Speed.Value,
		RainChancePct: payload.Precipitation.Probability.Percent,
		Code:          payload.WeatherCondition.Type,
		Description:   payload.WeatherCondition.Description.Text,
		IsDayTime:     payload.IsDayTime,
	}, nil
}
