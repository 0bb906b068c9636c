package runs

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nathanhack/eccsweep/store"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var RunsRun = func(cmd *cobra.Command, args []string) {
	if _, err := os.Stat(args[0]); err != nil {
		fmt.Println(err)
		return
	}

	s, err := store.Open(args[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	defer s.Close()

	runs, err := s.Runs(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}
	Write(os.Stdout, runs)
}

//Write prints one line per logged sweep run.
func Write(w io.Writer, runs []store.RunInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Started", "Source", "Type", "Seed", "Rates", "Trials", "Logged"})
	for _, r := range runs {
		table.Append([]string{
			fmt.Sprint(r.ID),
			r.StartedAt.Local().Format(time.RFC3339),
			r.Source,
			r.TypeInfo,
			fmt.Sprint(r.Seed),
			fmt.Sprintf("%v-%v", r.First, r.Last),
			fmt.Sprint(r.Trials),
			fmt.Sprintf("%v/%v", r.TrialCount, (r.Last-r.First+1)*r.Trials),
		})
	}
	table.Render()
}
