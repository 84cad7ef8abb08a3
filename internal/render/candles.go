package render

import (
	"errors"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"example.com/candlestick-detector/internal/ohlcv"
)

var (
	colorUp      = drawing.ColorFromHex("26a69a")
	colorDown    = drawing.ColorFromHex("ef5350")
	colorMarker  = drawing.ColorFromHex("f1c40f")
	colorDivider = drawing.ColorFromHex("d0d0d0")
)

// CandleSeries draws one candlestick per bar. Bars with NaN prices are
// skipped; the loader lets them through on purpose.
type CandleSeries struct {
	Name string
	Bars []ohlcv.Bar
}

func (cs CandleSeries) GetName() string { return cs.Name }

func (cs CandleSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (cs CandleSeries) GetStyle() chart.Style { return chart.Style{} }

func (cs CandleSeries) Validate() error {
	if len(cs.Bars) == 0 {
		return errors.New("candle series requires at least one bar")
	}
	return nil
}

func (cs CandleSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	halfw := barHalfWidth(xrange, len(cs.Bars))
	for i := range cs.Bars {
		b := &cs.Bars[i]
		if math.IsNaN(b.Open) || math.IsNaN(b.High) || math.IsNaN(b.Low) || math.IsNaN(b.Close) {
			continue
		}

		col := colorUp
		if b.IsBearish() {
			col = colorDown
		}

		x := canvasBox.Left + xrange.Translate(float64(i))
		yHigh := canvasBox.Bottom - yrange.Translate(b.High)
		yLow := canvasBox.Bottom - yrange.Translate(b.Low)

		r.SetStrokeColor(col)
		r.SetStrokeWidth(1.0)
		r.MoveTo(x, yHigh)
		r.LineTo(x, yLow)
		r.Stroke()

		top := canvasBox.Bottom - yrange.Translate(math.Max(b.Open, b.Close))
		bottom := canvasBox.Bottom - yrange.Translate(math.Min(b.Open, b.Close))
		if bottom == top {
			bottom = top + 1 // doji bodies still get a visible line
		}
		r.SetStrokeColor(col)
		r.SetStrokeWidth(1.0)
		fillRect(r, x-halfw, top, x+halfw, bottom, col, true)
	}
}

// VolumeSeries draws volume bars in a band across the bottom Frac of the
// canvas, below the candles.
type VolumeSeries struct {
	Name string
	Bars []ohlcv.Bar
	Frac float64
}

func (vs VolumeSeries) GetName() string { return vs.Name }

func (vs VolumeSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (vs VolumeSeries) GetStyle() chart.Style { return chart.Style{} }

func (vs VolumeSeries) Validate() error {
	if len(vs.Bars) == 0 {
		return errors.New("volume series requires at least one bar")
	}
	return nil
}

func (vs VolumeSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, _ chart.Range, _ chart.Style) {
	var maxV float64
	for i := range vs.Bars {
		if v := vs.Bars[i].Volume; !math.IsNaN(v) && v > maxV {
			maxV = v
		}
	}

	bandH := int(float64(canvasBox.Height()) * vs.Frac)
	bandTop := canvasBox.Bottom - bandH
	r.SetStrokeColor(colorDivider)
	r.SetStrokeWidth(1.0)
	r.MoveTo(canvasBox.Left, bandTop)
	r.LineTo(canvasBox.Right, bandTop)
	r.Stroke()

	if maxV <= 0 {
		return
	}

	halfw := barHalfWidth(xrange, len(vs.Bars))
	for i := range vs.Bars {
		b := &vs.Bars[i]
		if math.IsNaN(b.Volume) || b.Volume <= 0 {
			continue
		}
		h := int(float64(bandH-4) * (b.Volume / maxV))
		if h < 1 {
			h = 1
		}
		col := colorUp.WithAlpha(140)
		if b.IsBearish() {
			col = colorDown.WithAlpha(140)
		}
		x := canvasBox.Left + xrange.Translate(float64(i))
		fillRect(r, x-halfw, canvasBox.Bottom-h, x+halfw, canvasBox.Bottom, col, false)
	}
}

// MarkerSeries draws a square at every non-NaN value, the convention the
// evaluator uses to flag matched rows at their closes.
type MarkerSeries struct {
	Name   string
	Values []float64
}

const markerHalf = 5

func (ms MarkerSeries) GetName() string { return ms.Name }

func (ms MarkerSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (ms MarkerSeries) GetStyle() chart.Style { return chart.Style{} }

func (ms MarkerSeries) Validate() error {
	if len(ms.Values) == 0 {
		return errors.New("marker series requires at least one value")
	}
	return nil
}

func (ms MarkerSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	for i, v := range ms.Values {
		if math.IsNaN(v) {
			continue
		}
		x := canvasBox.Left + xrange.Translate(float64(i))
		y := canvasBox.Bottom - yrange.Translate(v)
		fillRect(r, x-markerHalf, y-markerHalf, x+markerHalf, y+markerHalf, colorMarker, false)
	}
}

func barHalfWidth(xrange chart.Range, n int) int {
	if n <= 0 {
		return 1
	}
	slot := float64(xrange.GetDomain()) / xrange.GetDelta()
	half := int(slot * 0.35)
	if half < 1 {
		half = 1
	}
	return half
}

func fillRect(r chart.Renderer, left, top, right, bottom int, col drawing.Color, stroke bool) {
	r.SetFillColor(col)
	r.MoveTo(left, top)
	r.LineTo(right, top)
	r.LineTo(right, bottom)
	r.LineTo(left, bottom)
	r.Close()
	if stroke {
		r.FillStroke()
	} else {
		r.Fill()
	}
}
