//Package plot renders the success rate chart: the fitted trend line, the
// mean success percentage of each rate, and its standard deviation as an error bar.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/nathanhack/eccsweep/benchmarking"
	"github.com/nathanhack/eccsweep/polyfit"
	"github.com/sirupsen/logrus"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	DefaultDegree = 6
	DefaultTitle  = "Codec percentage bit error tolerance"
	DefaultXLabel = "Percentage bit error rate"
	DefaultYLabel = "Percentage of recovered blocks"
)

var (
	fitColor  = drawing.ColorFromHex("1f77b4")
	meanColor = drawing.ColorFromHex("ff7f0e")
	barColor  = drawing.ColorFromHex("2ca02c")
)

//ChartData is everything drawn on the chart.
type ChartData struct {
	Title  string
	XLabel string
	YLabel string

	Rates     []float64
	Mean      []float64
	StdDev    []float64
	ErrorBars [][2]float64 // mean-std, mean+std
	Fit       polyfit.Polynomial
	FitY      []float64 // Fit evaluated at every rate
}

//NewChartData fits a polynomial of the given degree through the (rate, mean) pairs.
// When there are not enough distinct rates for that degree the degree is lowered.
func NewChartData(stats []benchmarking.RateStats, degree int) (ChartData, error) {
	if len(stats) == 0 {
		return ChartData{}, fmt.Errorf("no rate statistics to chart")
	}

	data := ChartData{
		Title:     DefaultTitle,
		XLabel:    DefaultXLabel,
		YLabel:    DefaultYLabel,
		Rates:     make([]float64, len(stats)),
		Mean:      make([]float64, len(stats)),
		StdDev:    make([]float64, len(stats)),
		ErrorBars: make([][2]float64, len(stats)),
	}
	for i, s := range stats {
		data.Rates[i] = s.Rate
		data.Mean[i] = s.Mean
		data.StdDev[i] = s.StdDev
		data.ErrorBars[i] = [2]float64{s.Mean - s.StdDev, s.Mean + s.StdDev}
	}

	if distinct := polyfit.Distinct(data.Rates); distinct < degree+1 {
		logrus.Warnf("only %v distinct rates, lowering the fit degree from %v to %v", distinct, degree, distinct-1)
		degree = distinct - 1
	}

	fit, err := polyfit.Fit(data.Rates, data.Mean, degree)
	if err != nil {
		return ChartData{}, err
	}
	data.Fit = fit
	data.FitY = fit.EvalAll(data.Rates)
	return data, nil
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

//Chart builds the go-chart chart for the data.
func Chart(data ChartData) chart.Chart {
	fitY := make([]float64, len(data.FitY))
	for i, y := range data.FitY {
		fitY[i] = clamp(y, 0, 100)
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "fit",
			XValues: data.Rates,
			YValues: fitY,
			Style:   chart.Style{StrokeColor: fitColor, StrokeWidth: 2},
		},
	}
	for i, x := range data.Rates {
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{x, x},
			YValues: []float64{clamp(data.ErrorBars[i][0], 0, 100), clamp(data.ErrorBars[i][1], 0, 100)},
			Style:   chart.Style{StrokeColor: barColor, StrokeWidth: 1},
		})
	}
	series = append(series, chart.ContinuousSeries{
		Name:    "mean",
		XValues: data.Rates,
		YValues: data.Mean,
		Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: meanColor},
	})

	// one grid step of padding on both sides keeps a single rate drawable
	step := 1.0 / benchmarking.RateScale
	minX, maxX := data.Rates[0], data.Rates[0]
	for _, x := range data.Rates {
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}

	return chart.Chart{
		Title:  data.Title,
		Width:  1600,
		Height: 1000,
		XAxis: chart.XAxis{
			Name:  data.XLabel,
			Range: &chart.ContinuousRange{Min: math.Max(0, minX-step), Max: maxX + step},
		},
		YAxis: chart.YAxis{
			Name:  data.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: series,
	}
}

//Render writes the chart as a PNG image.
func Render(w io.Writer, data ChartData) error {
	c := Chart(data)
	return c.Render(chart.PNG, w)
}

//SaveFile renders the chart to the PNG file at path.
func SaveFile(path string, data ChartData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = Render(f, data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("error while rendering chart to %v: %w", path, err)
	}
	return nil
}
