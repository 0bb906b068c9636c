package table

import (
	"fmt"
	"io"
	"os"

	"github.com/nathanhack/eccsweep/cmd/internal/tools"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var TableRun = func(cmd *cobra.Command, args []string) {
	if len(args) < 1 {
		fmt.Println("requires at least one RESULTS_JSON")
		return
	}

	stats, err := tools.LoadAll(args)
	if err != nil {
		fmt.Println(err)
		return
	}

	for i, s := range stats {
		Write(os.Stdout, args[i], s)
	}
}

//Write prints the per rate statistics of a results file.
func Write(w io.Writer, name string, stats *tools.SweepResults) {
	fmt.Fprintf(w, "%v (%v)\n", name, stats.TypeInfo)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rate", "Trials", "Recovered %", "Std Dev", "Channel flips %"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range stats.Sorted() {
		table.Append([]string{
			fmt.Sprintf("%0.3f", s.Rate),
			fmt.Sprint(s.Trials),
			fmt.Sprintf("%0.2f", s.Mean),
			fmt.Sprintf("%0.2f", s.StdDev),
			fmt.Sprintf("%0.3f", s.ChannelErrorRate*100),
		})
	}
	table.Render()
}
