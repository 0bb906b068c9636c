package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathanhack/eccsweep/cmd/internal/tools"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

var OutputFile string
var StdDev bool

var CSVRun = func(cmd *cobra.Command, args []string) {
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

	if err := Write(f, args, stats, StdDev); err != nil {
		fmt.Println(err)
		return
	}
}

//Write writes one row per results file and one column per rate. Cells hold the
// mean success percentage, or its standard deviation when stdDev is set.
func Write(out io.Writer, names []string, stats []*tools.SweepResults, stdDev bool) error {
	w := csv.NewWriter(out)

	percentagesFloats := make(map[float64]bool)
	for _, s := range stats {
		for p := range s.Stats {
			percentagesFloats[p] = true
		}
	}

	//first write headers
	percentagesList := make([]float64, 0, len(percentagesFloats))
	for p := range percentagesFloats {
		percentagesList = append(percentagesList, p)
	}
	slices.Sort(percentagesList)

	header := []string{"Results File"}

	for _, p := range percentagesList {
		header = append(header, fmt.Sprintf("%v", p))
	}

	err := w.Write(header)
	if err != nil {
		return err
	}

	for i, s := range stats {
		record := make([]string, len(header))
		record[0] = strings.TrimSuffix(names[i], filepath.Ext(names[i]))

		for i, p := range percentagesList {
			v, has := s.Stats[p]
			if has {
				if stdDev {
					record[i+1] = fmt.Sprintf("%v", v.StdDev)
				} else {
					record[i+1] = fmt.Sprintf("%v", v.Mean)
				}
			}
		}

		err = w.Write(record)
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
