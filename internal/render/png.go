// Package render draws detection charts: a static PNG for download and an
// interactive HTML view backed by ECharts.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"

	"example.com/candlestick-detector/internal/ohlcv"
)

// Output geometry, 16:9.
const (
	Width  = 1280
	Height = 720
)

// Vertical layout fractions of the canvas: candles on top, a gap, then the
// volume band at the bottom. The y-range is stretched below the lowest low so
// the regions never overlap.
const (
	volumeFrac = 0.22
	gapFrac    = 0.05
	topPadFrac = 0.04
)

// PNG renders the series as a candlestick chart with a volume band and
// squares at each non-NaN marker value. marker follows the evaluator's
// convention: close price at matched rows, NaN elsewhere. A nil or empty
// marker draws the base chart alone.
func PNG(s *ohlcv.Series, marker []float64, title string) ([]byte, error) {
	if s.Len() == 0 {
		return nil, errors.New("render: empty series")
	}
	lo, hi, ok := priceBounds(s.Bars)
	if !ok {
		return nil, errors.New("render: no rows with usable prices")
	}

	span := hi - lo
	if span <= 0 {
		span = math.Max(math.Abs(hi)*0.01, 1)
	}
	total := span * (1 + topPadFrac) / (1 - volumeFrac - gapFrac)
	yMax := hi + span*topPadFrac
	yMin := yMax - total

	n := s.Len()
	series := []chart.Series{
		VolumeSeries{Name: "volume", Bars: s.Bars, Frac: volumeFrac},
		CandleSeries{Name: "price", Bars: s.Bars},
	}
	if len(marker) > 0 {
		series = append(series, MarkerSeries{Name: "matches", Values: marker})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  Width,
		Height: Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 28, Left: 16, Right: 28, Bottom: 8},
		},
		XAxis: chart.XAxis{
			Ticks: dateTicks(s.Bars),
			Range: &chart.ContinuousRange{Min: -0.6, Max: float64(n-1) + 0.6},
		},
		YAxis: chart.YAxis{
			Ticks: priceTicks(lo, hi),
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		YAxisSecondary: chart.YAxis{
			Style: chart.Style{Hidden: true},
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// priceBounds returns the lowest low and highest high over rows with finite
// prices. ok is false when no row is usable.
func priceBounds(bars []ohlcv.Bar) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := range bars {
		b := &bars[i]
		if math.IsNaN(b.Low) || math.IsNaN(b.High) || math.IsNaN(b.Open) || math.IsNaN(b.Close) {
			continue
		}
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
		ok = true
	}
	if !ok || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 0, false
	}
	return lo, hi, true
}

func dateTicks(bars []ohlcv.Bar) []chart.Tick {
	n := len(bars)
	step := (n + 5) / 6
	if step < 1 {
		step = 1
	}
	ticks := make([]chart.Tick, 0, 7)
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{
			Value: float64(i),
			Label: bars[i].Timestamp.Format("02/01/2006"),
		})
	}
	return ticks
}

func priceTicks(lo, hi float64) []chart.Tick {
	span := hi - lo
	if span <= 0 {
		return []chart.Tick{{Value: lo, Label: formatPrice(lo, 1)}}
	}
	step := niceStep(span / 4)
	ticks := make([]chart.Tick, 0, 8)
	for v := math.Ceil(lo/step) * step; v <= hi+step/2; v += step {
		ticks = append(ticks, chart.Tick{Value: v, Label: formatPrice(v, step)})
	}
	return ticks
}

// niceStep rounds raw up to the nearest 1/2/5 multiple of a power of ten.
func niceStep(raw float64) float64 {
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	switch norm := raw / mag; {
	case norm < 1.5:
		return mag
	case norm < 3:
		return 2 * mag
	case norm < 7:
		return 5 * mag
	default:
		return 10 * mag
	}
}

func formatPrice(v, step float64) string {
	decimals := 0
	for step < 1 && decimals < 8 {
		step *= 10
		decimals++
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
