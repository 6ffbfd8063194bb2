// Package chart turns a price series into the geometry of a two-line SVG
// time chart: actual prices always, predicted prices when the series starts
// with a prediction.
package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jwaldner/stockai/internal/models"
)

const (
	Width  = 800
	Height = 400

	marginTop    = 20
	marginRight  = 30
	marginBottom = 40
	marginLeft   = 64

	// MaxXLabels caps the number of date labels under the X axis
	MaxXLabels = 8
	yTickCount = 5
	maxYTicks  = 20

	ActualName     = "Actual Price"
	PredictedName  = "Predicted Price"
	ActualColor    = "#2563eb"
	PredictedColor = "#dc2626"
)

// Marker is one drawn value with its hover text
type Marker struct {
	X       string
	Y       string
	Tooltip string
}

// Series is one line of the chart
type Series struct {
	Name    string
	Color   string
	Path    string // SVG path data; "M" starts a new segment after a gap
	Markers []Marker
}

// Tick is an axis label and its position along the axis
type Tick struct {
	Pos   string
	Label string
}

// Chart is everything the template needs to draw the SVG
type Chart struct {
	Width, Height int

	PlotLeft, PlotTop, PlotRight, PlotBottom string

	Series []Series
	XTicks []Tick
	YTicks []Tick
}

type valueFunc func(models.PricePoint) *float64

func actualValue(p models.PricePoint) *float64    { return p.Actual }
func predictedValue(p models.PricePoint) *float64 { return p.Predicted }

// ShowPredicted reports whether the predicted line is drawn. Only the first
// point decides; later points may or may not carry a prediction.
func ShowPredicted(points []models.PricePoint) bool {
	return len(points) > 0 && points[0].HasPredicted()
}

// Build lays out the chart for points in the order given
func Build(points []models.PricePoint) Chart {
	plotLeft := float64(marginLeft)
	plotTop := float64(marginTop)
	plotRight := float64(Width - marginRight)
	plotBottom := float64(Height - marginBottom)

	c := Chart{
		Width:      Width,
		Height:     Height,
		PlotLeft:   coord(plotLeft),
		PlotTop:    coord(plotTop),
		PlotRight:  coord(plotRight),
		PlotBottom: coord(plotBottom),
	}

	type line struct {
		name, color string
		value       valueFunc
	}
	lines := []line{{ActualName, ActualColor, actualValue}}
	if ShowPredicted(points) {
		lines = append(lines, line{PredictedName, PredictedColor, predictedValue})
	}

	lo, hi, step := yRange(points, len(lines) == 2)

	xAt := func(i int) float64 {
		if len(points) <= 1 {
			return (plotLeft + plotRight) / 2
		}
		return plotLeft + float64(i)*(plotRight-plotLeft)/float64(len(points)-1)
	}
	yAt := func(v float64) float64 {
		return plotBottom - (v-lo)/(hi-lo)*(plotBottom-plotTop)
	}

	for _, l := range lines {
		s := Series{Name: l.name, Color: l.color}
		var path strings.Builder
		penDown := false

		for i, p := range points {
			v := l.value(p)
			if v == nil {
				penDown = false
				continue
			}
			x, y := coord(xAt(i)), coord(yAt(*v))
			if path.Len() > 0 {
				path.WriteByte(' ')
			}
			if penDown {
				path.WriteString("L")
			} else {
				path.WriteString("M")
			}
			path.WriteString(x + " " + y)
			penDown = true

			s.Markers = append(s.Markers, Marker{
				X:       x,
				Y:       y,
				Tooltip: p.Date + " · " + l.name + ": " + FormatPrice(*v),
			})
		}
		s.Path = path.String()
		c.Series = append(c.Series, s)
	}

	every := 1
	if len(points) > MaxXLabels {
		every = int(math.Ceil(float64(len(points)) / float64(MaxXLabels)))
	}
	for i, p := range points {
		if i%every == 0 {
			c.XTicks = append(c.XTicks, Tick{Pos: coord(xAt(i)), Label: p.Date})
		}
	}

	n := int(math.Round((hi - lo) / step))
	for i := 0; i <= n && i <= maxYTicks; i++ {
		v := lo + float64(i)*step
		c.YTicks = append(c.YTicks, Tick{Pos: coord(yAt(v)), Label: axisLabel(v)})
	}

	return c
}

// yRange returns rounded bounds and tick step covering every drawn value
func yRange(points []models.PricePoint, withPredicted bool) (lo, hi, step float64) {
	low, high := math.Inf(1), math.Inf(-1)
	observe := func(v *float64) {
		if v == nil {
			return
		}
		low = math.Min(low, *v)
		high = math.Max(high, *v)
	}
	for _, p := range points {
		observe(p.Actual)
		if withPredicted {
			observe(p.Predicted)
		}
	}

	if math.IsInf(low, 1) {
		low, high = 0, 1
	}
	if !(high > low) {
		// a flat series; the band scales with the value so it survives rounding
		band := math.Max(1, math.Abs(low)*1e-6)
		low, high = low-band, high+band
	}

	step = niceStep((high - low) / float64(yTickCount-1))
	if step <= 0 || math.IsNaN(step) || math.IsInf(step, 0) {
		return low, high, high - low
	}
	lo = math.Floor(low/step) * step
	hi = math.Ceil(high/step) * step
	return lo, hi, step
}

// niceStep rounds raw up to 1, 2 or 5 times a power of ten
func niceStep(raw float64) float64 {
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	switch f := raw / base; {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}

// FormatPrice renders a price with two decimals for tooltips
func FormatPrice(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func axisLabel(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
