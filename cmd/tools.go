package cmd

import (
	"github.com/nathanhack/eccsweep/cmd/internal/tools/chart"
	"github.com/nathanhack/eccsweep/cmd/internal/tools/csv"
	"github.com/nathanhack/eccsweep/cmd/internal/tools/runs"
	"github.com/nathanhack/eccsweep/cmd/internal/tools/table"

	"github.com/spf13/cobra"
)

// toolsCmd represents the tools command
var toolsCmd = &cobra.Command{
	Use:     "tools",
	Aliases: []string{"t"},
	Short:   "Tools for sweep results",
	Long:    `Tools for sweep results`,
}

// toolsResultsCmd represents the results command
var toolsResultsCmd = &cobra.Command{
	Use:     "results",
	Aliases: []string{"r"},
	Short:   "A tool to organize results for graphing and comparison",
	Long:    `A tool to organize results for graphing and comparison`,
}

// toolsCSVCmd represents the csv command
var toolsCSVCmd = &cobra.Command{
	Use:     "csv RESULTS_JSON [RESULTS_JSON] ...",
	Aliases: []string{"c"},
	Short:   "Export to a CSV file",
	Long:    `Export to a CSV file`,
	Run:     csv.CSVRun,
}

// toolsChartCmd represents the chart command
var toolsChartCmd = &cobra.Command{
	Use:     "chart RESULTS_JSON [RESULTS_JSON] ...",
	Aliases: []string{"ch"},
	Short:   "Chart results as HTML",
	Long:    `Creates an interactive HTML line chart comparing the success percentage of each results file`,
	Run:     chart.ChartRun,
}

// toolsTableCmd represents the table command
var toolsTableCmd = &cobra.Command{
	Use:     "table RESULTS_JSON [RESULTS_JSON] ...",
	Aliases: []string{"t"},
	Short:   "Print results as a table",
	Long:    `Prints the statistics of every rate of each results file`,
	Run:     table.TableRun,
}

// toolsRunsCmd represents the runs command
var toolsRunsCmd = &cobra.Command{
	Use:   "runs DB_FILE",
	Short: "List logged sweeps",
	Long:  `Lists the sweeps logged to a SQLite trial log`,
	Args:  cobra.ExactArgs(1),
	Run:   runs.RunsRun,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.AddCommand(toolsResultsCmd)

	toolsResultsCmd.AddCommand(toolsCSVCmd)
	toolsCSVCmd.Flags().StringVarP(&csv.OutputFile, "output", "o", "results.csv", "filename of the combined csv")
	toolsCSVCmd.Flags().BoolVarP(&csv.StdDev, "std", "s", false, "outputs the standard deviation instead of the mean")

	toolsResultsCmd.AddCommand(toolsChartCmd)
	toolsChartCmd.Flags().StringVarP(&chart.OutputFile, "output", "o", "results.html", "filename of the chart")

	toolsResultsCmd.AddCommand(toolsTableCmd)
	toolsResultsCmd.AddCommand(toolsRunsCmd)
}
