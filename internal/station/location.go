package station

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kelvins/geocoder"
	"github.com/sirupsen/logrus"

	"github.com/ruimsramos/epaper-display/internal/barrier"
	"github.com/ruimsramos/epaper-display/internal/timezone"
)

const ipGeolocationURL = "http://ip-api.com/json"

// runLocationTask resolves the cycle's coordinates and timezone, either
// from an IP-geolocation lookup or from static configuration, publishes
// them, and renders the location and date header. It raises FlagLocation
// on every exit path.
func (c *Cycle) runLocationTask(ctx context.Context) {
	log := c.log.WithField("task", "location")
	defer c.flags.Raise(barrier.FlagLocation)

	var (
		loc Location
		err error
	)
	if c.cfg.UseDynamicLocation {
		loc, err = c.fetchDynamicLocation(ctx)
		if err != nil {
			log.WithError(err).Error("resolving location; downstream widgets stay stale")
			return
		}
	} else {
		loc = c.staticLocation(log)
	}
	c.publishLocation(loc)
	log.WithFields(logrus.Fields{
		"city": loc.City, "country": loc.CountryCode, "timezone": loc.Timezone,
	}).Info("location resolved")

	local, err := timezone.ConvertInstantToLocal(loc.Timezone, c.now())
	if err != nil {
		log.WithError(err).Error("resolving local civil time")
		return
	}

	err = c.withFramebuffer(func() error {
		if err := c.renderer.WriteLocation(loc.City, loc.CountryCode); err != nil {
			return err
		}
		if err := c.renderer.WriteDate(local.HeaderDate()); err != nil {
			return err
		}
		return c.renderer.WriteLastUpdated(local.Clock())
	})
	if err != nil {
		log.WithError(err).Error("rendering location header")
	}
}

// fetchDynamicLocation queries the IP-geolocation service for the
// coordinates, city and timezone of the device's public address.
func (c *Cycle) fetchDynamicLocation(ctx context.Context) (Location, error) {
	var body []byte
	err := c.withNetwork(func() error {
		var getErr error
		body, getErr = c.net.Get(ctx, ipGeolocationURL, "")
		return getErr
	})
	if err != nil {
		return Location{}, fmt.Errorf("geolocation request: %w", err)
	}

	var payload struct {
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
		City        string  `json:"city"`
		CountryCode string  `json:"countryCode"`
		Timezone    string  `json:"timezone"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Location{}, fmt.Errorf("parsing geolocation response: %w", err)
	}
	if payload.Timezone == "" {
		return Location{}, fmt.Errorf("geolocation response has no timezone")
	}

	return Location{
		Latitude:    payload.Lat,
		Longitude:   payload.Lon,
		City:        payload.City,
		CountryCode: payload.CountryCode,
		Timezone:    payload.Timezone,
	}, nil
}

// staticLocation builds the location from configuration. The coordinates
// still get a rendered label: reverse geocoding resolves a city name when
// a geocoder key is configured, otherwise the raw coordinates are shown.
func (c *Cycle) staticLocation(log *logrus.Entry) Location {
	loc := Location{
		Latitude:  c.cfg.StaticLatitude,
		Longitude: c.cfg.StaticLongitude,
		City:      fmt.Sprintf("%.2f, %.2f", c.cfg.StaticLatitude, c.cfg.StaticLongitude),
		Timezone:  c.cfg.StaticTimezone,
	}
	if c.cfg.GeocoderAPIKey == "" {
		return loc
	}

	geocoder.ApiKey = c.cfg.GeocoderAPIKey
	var addresses []geocoder.Address
	// The geocoder talks over the shared outbound channel too.
	err := c.withNetwork(func() error {
		var geoErr error
		addresses, geoErr = geocoder.GeocodingReverse(geocoder.Location{
			Latitude:  c.cfg.StaticLatitude,
			Longitude: c.cfg.StaticLongitude,
		})
		return geoErr
	})
	if err != nil || len(addresses) == 0 {
		log.WithError(err).Warn("reverse geocoding failed; rendering raw coordinates")
		return loc
	}
	return applyReverseGeocode(loc, addresses[0])
}

// applyReverseGeocode folds a reverse-geocoded address into the location
// label. The geocoder only carries full country names, never ISO codes, so
// CountryCode stays empty and the header shows the city alone.
func applyReverseGeocode(loc Location, addr geocoder.Address) Location {
	if addr.City != "" {
		loc.City = addr.City
	}
	return loc
}
