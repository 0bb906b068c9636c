package cmd

import (
	"github.com/nathanhack/eccsweep/cmd/internal/sweep"

	"github.com/spf13/cobra"
)

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:     "sweep BLOCKS_XML",
	Aliases: []string{"s"},
	Short:   "Sweeps the bit error rates",
	Long: `Encodes the first blocks of BLOCKS_XML, then for every bit error rate sends them
through the channel simulator and the decoder a number of times. The success
percentage of every rate is saved to the results file and charted.`,
	Args: cobra.ExactArgs(1),
	Run:  sweep.SweepRun,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	f := &sweep.Flags
	sweepCmd.Flags().StringVarP(&sweep.ConfigFile, "config", "c", "", "TOML or YAML config file, flags given on the command line win")

	sweepCmd.Flags().IntVarP(&f.Trials, "trials", "t", f.Trials, "the number of trials per rate")
	sweepCmd.Flags().IntVarP(&f.Blocks, "blocks", "b", f.Blocks, "the number of blocks to read from BLOCKS_XML")
	sweepCmd.Flags().IntVar(&f.From, "from", f.From, "first rate index, in thousandths")
	sweepCmd.Flags().IntVar(&f.To, "to", f.To, "last rate index, in thousandths")
	sweepCmd.Flags().Int64Var(&f.Seed, "seed", f.Seed, "seed for the channel parameters (0 means to pick one from the clock)")
	sweepCmd.Flags().IntVar(&f.Threads, "threads", f.Threads, "number of trials to run at once (0 means to use the # of threads equal to the # of CPUs)")
	sweepCmd.Flags().IntVar(&f.Degree, "degree", f.Degree, "degree of the fitted trend line")
	sweepCmd.Flags().BoolVar(&f.Progress, "progress", f.Progress, "show a progress bar")

	sweepCmd.Flags().StringVar(&f.TransmitPath, "transmit", f.TransmitPath, "the channel simulator executable")
	sweepCmd.Flags().StringVar(&f.DecodePath, "decode", f.DecodePath, "the decoder executable")
	sweepCmd.Flags().StringVar(&f.ParityCheck, "parity-check", f.ParityCheck, "the parity check file handed to the decoder")
	sweepCmd.Flags().StringVar(&f.Model, "model", f.Model, "the channel model")
	sweepCmd.Flags().StringVar(&f.Algorithm, "algorithm", f.Algorithm, "the decoding algorithm")
	sweepCmd.Flags().IntVar(&f.MaxIterations, "max-iterations", f.MaxIterations, "the decoder iteration limit")

	sweepCmd.Flags().StringVar(&f.PayloadFile, "payload", f.PayloadFile, "the transmission input file")
	sweepCmd.Flags().StringVar(&f.ReceivedFile, "received", f.ReceivedFile, "the received data file")
	sweepCmd.Flags().StringVar(&f.DecodedFile, "decoded", f.DecodedFile, "the decoded output file")
	sweepCmd.Flags().StringVarP(&f.ChartFile, "chart", "o", f.ChartFile, "the PNG chart")
	sweepCmd.Flags().StringVarP(&f.ResultsFile, "results", "r", f.ResultsFile, "the JSON results file, resumed when it exists (empty to disable)")
	sweepCmd.Flags().StringVar(&f.DBFile, "db", f.DBFile, "SQLite file logging every trial (empty to disable)")
	sweepCmd.Flags().StringVar(&f.Workdir, "workdir", f.Workdir, "directory of the per thread received and decoded files")
}
