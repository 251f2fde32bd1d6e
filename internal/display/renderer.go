// Package display renders the station's widgets to a shared off-screen
// framebuffer and commits it for the e-paper panel.
//
// The panel is split down the middle: the left column carries the date
// header and today's meetings (or the fact of the day), the right column
// the location, current weather and the forecast row. Callers serialize
// draws through the framebuffer lock domain; the renderer itself keeps no
// locking.
package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"

	"github.com/ruimsramos/epaper-display/internal/station"
)

const (
	marginX      = 50.0
	headerY      = 32.0
	subHeaderY   = 62.0
	contentTopY  = 110.0
	lineHeight   = 34.0
	footerMargin = 24.0

	headingSize = 22.0
	bodySize    = 16.0
	tempSize    = 44.0
	smallSize   = 13.0

	iconSize = 96
)

// Options configure the framebuffer and its assets.
type Options struct {
	Width      int
	Height     int
	FontPath   string // optional TTF; the built-in bitmap face is used when empty
	IconDir    string // optional directory of <condition>.png icons
	OutputPath string
}

// EPaper implements the station renderer on a gg drawing context.
type EPaper struct {
	dc         *gg.Context
	font       *truetype.Font
	iconDir    string
	outputPath string
	log        *logrus.Entry
}

// New allocates the framebuffer, clears it and draws the static chrome.
func New(opts Options, log *logrus.Entry) (*EPaper, error) {
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)

	e := &EPaper{
		dc:         dc,
		iconDir:    opts.IconDir,
		outputPath: opts.OutputPath,
		log:        log.WithField("component", "display"),
	}

	if opts.FontPath != "" {
		data, err := os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("reading font file: %w", err)
		}
		e.font, err = truetype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
	}

	e.drawChrome()
	return e, nil
}

// drawChrome places the fixed base elements: the two column headings and
// the divider.
func (e *EPaper) drawChrome() {
	mid := float64(e.dc.Width()) / 2

	e.setFace(headingSize)
	e.dc.DrawString("Today's Meetings", marginX, headerY)
	e.dc.DrawString("Weather", marginX+mid, headerY)

	e.dc.SetLineWidth(1)
	e.dc.DrawLine(mid, 0, mid, float64(e.dc.Height()))
	e.dc.Stroke()
}

func (e *EPaper) setFace(size float64) {
	if e.font == nil {
		return // gg's default bitmap face
	}
	e.dc.SetFontFace(truetype.NewFace(e.font, &truetype.Options{Size: size}))
}

// WriteLocation draws "City, CC" under the weather heading.
func (e *EPaper) WriteLocation(city, countryCode string) error {
	label := city
	if countryCode != "" {
		label = fmt.Sprintf("%s, %s", city, countryCode)
	}
	e.setFace(bodySize)
	e.dc.DrawString(label, marginX+2+float64(e.dc.Width())/2, subHeaderY)
	return nil
}

// WriteDate draws the long date under the meetings heading.
func (e *EPaper) WriteDate(date string) error {
	e.setFace(bodySize)
	e.dc.DrawString(date, marginX+2, subHeaderY)
	return nil
}

// WriteLastUpdated draws the refresh time in the bottom-left corner.
func (e *EPaper) WriteLastUpdated(clock string) error {
	e.setFace(smallSize)
	e.dc.DrawString("Updated "+clock, marginX, float64(e.dc.Height())-footerMargin)
	return nil
}

// WriteCurrentWeather draws the current-conditions block in the right
// column: icon, big temperature, and the detail lines.
func (e *EPaper) WriteCurrentWeather(w station.WeatherSnapshot) error {
	left := float64(e.dc.Width())/2 + marginX
	top := contentTopY

	e.drawConditionIcon(w.Code, w.IsDayTime, int(left), int(top))

	tempLeft := left + iconSize + 24
	e.setFace(tempSize)
	e.dc.DrawString(fmt.Sprintf("%.0f°C", w.TemperatureC), tempLeft, top+48)

	e.setFace(bodySize)
	e.dc.DrawString(fmt.Sprintf("feels like %.0f°C", w.FeelsLikeC), tempLeft, top+76)
	e.dc.DrawString(w.Description, left, top+iconSize+26)

	detailTop := top + iconSize + 26 + lineHeight
	details := []string{
		fmt.Sprintf("min %.0f°C / max %.0f°C", w.MinTempC, w.MaxTempC),
		fmt.Sprintf("humidity %d%%   UV %d", w.Humidity, w.UVIndex),
		fmt.Sprintf("wind %d km/h   rain %d%%", w.WindSpeedKph, w.RainChancePct),
	}
	for i, line := range details {
		e.dc.DrawString(line, left, detailTop+float64(i)*lineHeight)
	}
	return nil
}

// WriteForecast draws the forecast row across the bottom of the right
// column. Day 0 shows sunrise/sunset instead of a weekday name.
func (e *EPaper) WriteForecast(days []station.ForecastDay) error {
	mid := float64(e.dc.Width()) / 2
	colWidth := (mid - 2*marginX) / float64(station.ForecastDays)
	top := float64(e.dc.Height()) - 150

	for i, day := range days {
		if i >= station.ForecastDays {
			break
		}
		left := mid + marginX + float64(i)*colWidth

		e.setFace(bodySize)
		name := day.WeekdayName
		if i == 0 {
			name = "Today"
		}
		e.dc.DrawString(name, left, top)

		e.setFace(smallSize)
		e.dc.DrawString(fmt.Sprintf("%.0f° / %.0f°", day.MinTempC, day.MaxTempC), left, top+24)
		e.dc.DrawString(fmt.Sprintf("rain %d%%", day.RainChancePct), left, top+44)
		if i == 0 && day.Sunrise != "" {
			e.dc.DrawString(fmt.Sprintf("↑%s ↓%s", day.Sunrise, day.Sunset), left, top+64)
		} else if day.Description != "" {
			e.dc.DrawString(day.Description, left, top+64)
		}
	}
	return nil
}

// WriteEvents draws up to the panel's capacity of event lines in the left
// column.
func (e *EPaper) WriteEvents(events []station.CalendarEvent) error {
	top := contentTopY
	for i, event := range events {
		if i >= station.MaxCalendarEvents {
			break
		}
		lineTop := top + float64(i)*2*lineHeight

		e.setFace(bodySize)
		e.dc.DrawString(event.Summary, marginX, lineTop)

		e.setFace(smallSize)
		when := "All day"
		if !event.AllDay {
			when = event.Start
			if event.Duration != "" {
				when = fmt.Sprintf("%s  (%s)", event.Start, event.Duration)
			}
		}
		e.dc.DrawString(when, marginX, lineTop+20)
	}
	return nil
}

// WriteFact draws the fact of the day where the events would go.
func (e *EPaper) WriteFact(fact string) error {
	e.setFace(bodySize)
	width := float64(e.dc.Width())/2 - 2*marginX
	e.dc.DrawStringWrapped(fact, marginX, contentTopY, 0, 0, width, 1.5, gg.AlignLeft)
	return nil
}

// Commit pushes the framebuffer out for the panel driver and returns its
// status. It is called exactly once per cycle, after all widgets have
// drawn.
func (e *EPaper) Commit() error {
	if err := gg.SavePNG(e.outputPath, e.dc.Image()); err != nil {
		return fmt.Errorf("writing panel image: %w", err)
	}
	e.log.WithField("path", e.outputPath).Info("framebuffer committed")
	return nil
}

// drawConditionIcon blits the icon for a condition code, if the icon set
// has one. A missing icon is not an error; the text beside it stands on
// its own.
func (e *EPaper) drawConditionIcon(code string, isDayTime bool, x, y int) {
	if e.iconDir == "" || code == "" {
		return
	}
	name := strings.ToLower(code)
	if !isDayTime {
		// Night variants override when present.
		if icon, err := e.loadIcon(name + "_night"); err == nil {
			e.dc.DrawImage(icon, x, y)
			return
		}
	}
	icon, err := e.loadIcon(name)
	if err != nil {
		e.log.WithField("icon", name).Debug("icon not available")
		return
	}
	e.dc.DrawImage(icon, x, y)
}

func (e *EPaper) loadIcon(name string) (image.Image, error) {
	f, err := os.Open(filepath.Join(e.iconDir, name+".png"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	xdraw.BiLinear.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Over, nil)
	return dst, nil
}
