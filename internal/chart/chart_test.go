package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/jwaldner/stockai/internal/models"
	testdata "github.com/jwaldner/stockai/test_data"
)

func TestSingleSeriesWithoutPrediction(t *testing.T) {
	c := Build([]models.PricePoint{{Date: "d1", Actual: models.Price(100)}})

	if len(c.Series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(c.Series))
	}
	if c.Series[0].Name != "Actual Price" {
		t.Errorf("expected Actual Price, got %s", c.Series[0].Name)
	}
	if len(c.Series[0].Markers) != 1 {
		t.Errorf("expected one marker, got %d", len(c.Series[0].Markers))
	}
}

func TestFirstPointDecidesPredictedSeries(t *testing.T) {
	c := Build([]models.PricePoint{
		{Date: "d1", Actual: models.Price(100), Predicted: models.Price(102)},
		{Date: "d2", Actual: models.Price(101)},
	})

	if len(c.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(c.Series))
	}
	if c.Series[0].Name != "Actual Price" || c.Series[1].Name != "Predicted Price" {
		t.Errorf("unexpected series names: %s, %s", c.Series[0].Name, c.Series[1].Name)
	}
	if c.Series[1].Color != PredictedColor {
		t.Errorf("expected predicted color %s, got %s", PredictedColor, c.Series[1].Color)
	}
	if got := len(c.Series[1].Markers); got != 1 {
		t.Errorf("predicted line should only mark the first point, got %d markers", got)
	}
}

func TestLaterPredictionsIgnoredWhenFirstPointHasNone(t *testing.T) {
	points := []models.PricePoint{
		{Date: "d1", Actual: models.Price(100)},
		{Date: "d2", Actual: models.Price(101), Predicted: models.Price(103)},
		{Date: "d3", Predicted: models.Price(104)},
	}
	if ShowPredicted(points) {
		t.Fatal("first point has no prediction, series must not be drawn")
	}
	c := Build(points)
	if len(c.Series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(c.Series))
	}
}

func TestGapsBreakTheLine(t *testing.T) {
	c := Build(testdata.MockAppleSeries())

	actual := c.Series[0]
	if n := strings.Count(actual.Path, "M"); n != 1 {
		t.Errorf("actual values are contiguous, expected 1 segment, got %d in %q", n, actual.Path)
	}
	if len(actual.Markers) != 7 {
		t.Errorf("expected 7 actual markers, got %d", len(actual.Markers))
	}

	predicted := c.Series[1]
	if n := strings.Count(predicted.Path, "M"); n != 2 {
		t.Errorf("expected 2 predicted segments around the gap, got %d in %q", n, predicted.Path)
	}
	if len(predicted.Markers) != 7 {
		t.Errorf("expected 7 predicted markers, got %d", len(predicted.Markers))
	}
}

func TestOrderPreserved(t *testing.T) {
	points := []models.PricePoint{
		{Date: "2024-03-01", Actual: models.Price(10)},
		{Date: "2024-01-01", Actual: models.Price(20)},
		{Date: "2024-02-01", Actual: models.Price(30)},
	}
	c := Build(points)

	for i, want := range []string{"2024-03-01", "2024-01-01", "2024-02-01"} {
		if c.XTicks[i].Label != want {
			t.Errorf("tick %d: expected %s, got %s", i, want, c.XTicks[i].Label)
		}
		if !strings.HasPrefix(c.Series[0].Markers[i].Tooltip, want) {
			t.Errorf("marker %d: expected tooltip for %s, got %s", i, want, c.Series[0].Markers[i].Tooltip)
		}
	}
}

func TestXLabelsThinned(t *testing.T) {
	var points []models.PricePoint
	for i := 0; i < 60; i++ {
		points = append(points, models.PricePoint{Date: "d", Actual: models.Price(float64(100 + i))})
	}
	c := Build(points)
	if len(c.XTicks) > MaxXLabels {
		t.Errorf("expected at most %d x labels, got %d", MaxXLabels, len(c.XTicks))
	}
	if len(c.Series[0].Markers) != 60 {
		t.Errorf("thinning labels must not drop points, got %d markers", len(c.Series[0].Markers))
	}
}

func TestYTicksCoverRange(t *testing.T) {
	c := Build([]models.PricePoint{
		{Date: "d1", Actual: models.Price(150), Predicted: models.Price(151)},
		{Date: "d2", Actual: models.Price(185.64)},
	})

	if len(c.YTicks) < 2 {
		t.Fatalf("expected several y ticks, got %d", len(c.YTicks))
	}
	if c.YTicks[0].Label != "150" {
		t.Errorf("expected lowest tick 150, got %s", c.YTicks[0].Label)
	}
	if c.YTicks[len(c.YTicks)-1].Label != "190" {
		t.Errorf("expected highest tick 190, got %s", c.YTicks[len(c.YTicks)-1].Label)
	}
}

func TestYTicksAtLargeMagnitudes(t *testing.T) {
	cases := map[string][]models.PricePoint{
		"tiny spread": {
			{Date: "d1", Actual: models.Price(1e17)},
			{Date: "d2", Actual: models.Price(1e17 + 16)},
		},
		"flat": {
			{Date: "d1", Actual: models.Price(1e17)},
			{Date: "d2", Actual: models.Price(1e17)},
		},
	}

	for name, points := range cases {
		t.Run(name, func(t *testing.T) {
			done := make(chan Chart, 1)
			go func() { done <- Build(points) }()

			var c Chart
			select {
			case c = <-done:
			case <-time.After(3 * time.Second):
				t.Fatal("Build did not return")
			}

			if len(c.YTicks) == 0 || len(c.YTicks) > maxYTicks+1 {
				t.Errorf("expected a bounded set of y ticks, got %d", len(c.YTicks))
			}
			for _, tick := range c.YTicks {
				if strings.Contains(tick.Pos, "NaN") || strings.Contains(tick.Pos, "Inf") {
					t.Errorf("tick position not finite: %s", tick.Pos)
				}
			}
			if strings.Contains(c.Series[0].Path, "NaN") {
				t.Errorf("path has NaN coordinates: %s", c.Series[0].Path)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	cases := map[float64]string{
		150:     "150.00",
		185.645: "185.65",
		0.1:     "0.10",
	}
	for in, want := range cases {
		if got := FormatPrice(in); got != want {
			t.Errorf("FormatPrice(%v) = %s, want %s", in, got, want)
		}
	}
}
