package chart

import (
	"fmt"
	"io"
	"os"

	"github.com/nathanhack/eccsweep/cmd/internal/tools"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var OutputFile string

var ChartRun = func(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("requires at least one RESULTS_JSON")
		return
	}

	stats, err := tools.LoadAll(args)
	if err != nil {
		fmt.Println(err)
		return
	}

	f, err := os.Create(OutputFile)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()

	if err := Render(f, args, stats); err != nil {
		fmt.Println(err)
		return
	}
}

//Render writes an interactive line chart, one line per results file, of the
// mean success percentage at every rate.
func Render(w io.Writer, names []string, stats []*tools.SweepResults) error {
	percentagesFloats := make(map[float64]bool)
	for _, s := range stats {
		for p := range s.Stats {
			percentagesFloats[p] = true
		}
	}
	xvalues, xnames := xAxisAndValues(percentagesFloats)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Results",
			Subtitle: "Percentage of recovered blocks",
			Left:     "20%",
		}),
		charts.WithLegendOpts(opts.Legend{Show: true,
			Orient: "vertical",
			Right:  "0",
			Top:    "top",
			Type:   "scroll",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Bit error rate",
			SplitLine: &opts.SplitLine{Show: true},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Recovered",
			Min:       0,
			Max:       100,
			SplitLine: &opts.SplitLine{Show: true},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)

	line.SetXAxis(xnames)

	for i, s := range stats {
		line.AddSeries(names[i], series(s, xvalues))
	}

	return line.Render(w)
}

func xAxisAndValues(percentagesFloats map[float64]bool) ([]float64, []string) {
	nums := make([]float64, 0, len(percentagesFloats))
	strs := make([]string, 0, len(percentagesFloats))
	for k := range percentagesFloats {
		nums = append(nums, k)
	}

	slices.Sort(nums)

	for _, n := range nums {
		strs = append(strs, fmt.Sprintf("%0.3f", n))
	}

	return nums, strs
}

func series(stat *tools.SweepResults, values []float64) []opts.LineData {
	results := make([]opts.LineData, len(values))
	null := opts.LineData{Value: nil}
	for i, v := range values {

		x, has := stat.Stats[v]
		if !has {
			results[i] = null
			continue
		}

		results[i] = opts.LineData{
			Value: x.Mean,
		}
	}
	return results
}
