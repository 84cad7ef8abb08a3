package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"example.com/candlestick-detector/internal/ohlcv"
)

// InteractiveHTML renders the series as a zoomable ECharts page: candlesticks
// with markers overlaid, volume bars beneath. The marker convention is the
// same as PNG's.
func InteractiveHTML(s *ohlcv.Series, marker []float64, title string) ([]byte, error) {
	if s.Len() == 0 {
		return nil, errors.New("render: empty series")
	}

	xAxis := make([]string, 0, s.Len())
	klineData := make([]opts.KlineData, 0, s.Len())
	volumeData := make([]opts.BarData, 0, s.Len())
	var scatterData []opts.ScatterData

	for i := range s.Bars {
		b := &s.Bars[i]
		xAxis = append(xAxis, b.Timestamp.Format("02/01/2006"))
		klineData = append(klineData, opts.KlineData{
			Value: [4]float64{b.Open, b.Close, b.Low, b.High},
		})

		volColor := "#26a69a"
		if b.IsBearish() {
			volColor = "#ef5350"
		}
		volumeData = append(volumeData, opts.BarData{
			Value:     b.Volume,
			ItemStyle: &opts.ItemStyle{Color: volColor},
		})

		if marker != nil && i < len(marker) && !math.IsNaN(marker[i]) {
			scatterData = append(scatterData, opts.ScatterData{
				Value:      []interface{}{i, marker[i]},
				Symbol:     "rect",
				SymbolSize: 12,
			})
		}
	}

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Left: "center"}),
		charts.WithXAxisOpts(opts.XAxis{SplitNumber: 12, Scale: true}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     true,
			SplitLine: &opts.SplitLine{Show: true},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			XAxisIndex: []int{0},
			Start:      0,
			End:        100,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "slider",
			XAxisIndex: []int{0},
			Start:      0,
			End:        100,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:        true,
			Trigger:     "axis",
			AxisPointer: &opts.AxisPointer{Type: "cross"},
		}),
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1280px",
			Height:    "540px",
		}),
	)
	kline.SetXAxis(xAxis).AddSeries("Price", klineData,
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        "#26a69a",
			Color0:       "#ef5350",
			BorderColor:  "#26a69a",
			BorderColor0: "#ef5350",
		}),
	)

	if len(scatterData) > 0 {
		scatter := charts.NewScatter()
		scatter.SetXAxis(xAxis).AddSeries(fmt.Sprintf("%s matches", title), scatterData,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#f1c40f"}),
		)
		kline.Overlap(scatter)
	}

	volume := charts.NewBar()
	volume.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{SplitNumber: 12}),
		charts.WithYAxisOpts(opts.YAxis{Scale: true}),
		charts.WithLegendOpts(opts.Legend{Show: false}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "1280px",
			Height: "180px",
		}),
	)
	volume.SetXAxis(xAxis).AddSeries("Volume", volumeData)

	page := components.NewPage()
	page.AddCharts(kline, volume)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render interactive chart: %w", err)
	}
	return buf.Bytes(), nil
}
