package sweep

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/nathanhack/eccsweep/benchmarking"
	"github.com/nathanhack/eccsweep/blocks"
	"github.com/nathanhack/eccsweep/chansim"
	"github.com/nathanhack/eccsweep/cmd/internal/config"
	"github.com/nathanhack/eccsweep/cmd/internal/tools"
	"github.com/nathanhack/eccsweep/plot"
	"github.com/nathanhack/eccsweep/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	DefaultTrials      = 20
	DefaultBlocks      = 5
	DefaultPayloadFile = "temp.enc"
	DefaultReceived    = "temp.rec"
	DefaultDecoded     = "temp.dec"
	DefaultChartFile   = "results.png"
	DefaultResultsFile = "results.json"
	DefaultWorkdir     = "workers"
)

//Options is everything a sweep needs besides the block data file.
type Options struct {
	Trials   int
	Blocks   int
	From     int
	To       int
	Seed     int64 // 0 picks one from the clock
	Threads  int   // 0 means one per CPU
	Degree   int
	Progress bool

	TransmitPath  string
	DecodePath    string
	ParityCheck   string
	Model         string
	Algorithm     string
	MaxIterations int
	Env           []string // extra environment for both tools

	PayloadFile  string
	ReceivedFile string
	DecodedFile  string
	ChartFile    string
	ResultsFile  string // "" disables the results file and resuming
	DBFile       string // "" disables the trial log
	Workdir      string
}

func DefaultOptions() Options {
	return Options{
		Trials:        DefaultTrials,
		Blocks:        DefaultBlocks,
		From:          benchmarking.DefaultFirstRate,
		To:            benchmarking.DefaultLastRate,
		Threads:       1,
		Degree:        plot.DefaultDegree,
		Progress:      true,
		TransmitPath:  chansim.DefaultTransmitPath,
		DecodePath:    chansim.DefaultDecodePath,
		ParityCheck:   chansim.DefaultParityCheck,
		Model:         chansim.DefaultModel,
		Algorithm:     chansim.DefaultAlgorithm,
		MaxIterations: chansim.DefaultMaxIterations,
		PayloadFile:   DefaultPayloadFile,
		ReceivedFile:  DefaultReceived,
		DecodedFile:   DefaultDecoded,
		ChartFile:     DefaultChartFile,
		ResultsFile:   DefaultResultsFile,
		Workdir:       DefaultWorkdir,
	}
}

var (
	ConfigFile string
	Flags      = DefaultOptions()
)

var SweepRun = func(cmd *cobra.Command, args []string) {
	opts := Flags
	if ConfigFile != "" {
		cfg, err := config.LoadConfig(ConfigFile)
		if err != nil {
			fmt.Println(err)
			return
		}
		applyConfig(cmd, &opts, cfg)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sig := <-sigs
		fmt.Println()
		fmt.Println(sig)
		cancel()
	}()

	if _, err := Run(ctx, args[0], opts); err != nil {
		logrus.Fatal(err)
	}
}

func applyConfig(cmd *cobra.Command, opts *Options, cfg config.FileConfig) {
	config.Apply(cmd, "trials", &opts.Trials, cfg.Sweep.Trials)
	config.Apply(cmd, "blocks", &opts.Blocks, cfg.Sweep.Blocks)
	config.Apply(cmd, "from", &opts.From, cfg.Sweep.From)
	config.Apply(cmd, "to", &opts.To, cfg.Sweep.To)
	config.Apply(cmd, "seed", &opts.Seed, cfg.Sweep.Seed)
	config.Apply(cmd, "threads", &opts.Threads, cfg.Sweep.Threads)
	config.Apply(cmd, "degree", &opts.Degree, cfg.Sweep.Degree)
	config.Apply(cmd, "progress", &opts.Progress, cfg.Sweep.Progress)

	config.Apply(cmd, "transmit", &opts.TransmitPath, cfg.Tools.Transmit)
	config.Apply(cmd, "decode", &opts.DecodePath, cfg.Tools.Decode)
	config.Apply(cmd, "parity-check", &opts.ParityCheck, cfg.Tools.ParityCheck)
	config.Apply(cmd, "model", &opts.Model, cfg.Tools.Model)
	config.Apply(cmd, "algorithm", &opts.Algorithm, cfg.Tools.Algorithm)
	config.Apply(cmd, "max-iterations", &opts.MaxIterations, cfg.Tools.MaxIterations)

	config.Apply(cmd, "payload", &opts.PayloadFile, cfg.Output.Payload)
	config.Apply(cmd, "received", &opts.ReceivedFile, cfg.Output.Received)
	config.Apply(cmd, "decoded", &opts.DecodedFile, cfg.Output.Decoded)
	config.Apply(cmd, "chart", &opts.ChartFile, cfg.Output.Chart)
	config.Apply(cmd, "results", &opts.ResultsFile, cfg.Output.Results)
	config.Apply(cmd, "db", &opts.DBFile, cfg.Output.DB)
	config.Apply(cmd, "workdir", &opts.Workdir, cfg.Output.Workdir)
}

//TypeInfo identifies the decoder settings a results file was made with.
func TypeInfo(opts Options) string {
	return fmt.Sprintf("BSC:%v/%v", opts.Algorithm, opts.MaxIterations)
}

//eccInfo fingerprints the parity check file. The file is only read by the
// decoder, so when it is not reachable from here its name stands in for it.
func eccInfo(parityCheck string) string {
	sum, err := tools.FileMd5Sum(parityCheck)
	if err != nil {
		logrus.Warnf("unable to fingerprint %v, using its name instead: %v", parityCheck, err)
		return tools.Md5Sum([]byte(parityCheck))
	}
	return sum
}

func workspaces(opts Options) ([]benchmarking.Workspace, error) {
	threads := opts.Threads
	if threads == 0 {
		threads = runtime.NumCPU()
	}
	if threads < 0 {
		return nil, fmt.Errorf("threads must be >=0 but found %v", opts.Threads)
	}
	if threads == 1 {
		return []benchmarking.Workspace{{Received: opts.ReceivedFile, Decoded: opts.DecodedFile}}, nil
	}

	result := make([]benchmarking.Workspace, threads)
	for k := range result {
		dir := filepath.Join(opts.Workdir, fmt.Sprintf("worker-%d", k))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		result[k] = benchmarking.Workspace{
			Received: filepath.Join(dir, filepath.Base(opts.ReceivedFile)),
			Decoded:  filepath.Join(dir, filepath.Base(opts.DecodedFile)),
		}
	}
	return result, nil
}

//Run sweeps the block data in source and writes the chart. The results file
// is saved after every rate, so on error it holds every completed rate.
func Run(ctx context.Context, source string, opts Options) ([]benchmarking.RateStats, error) {
	//observed flips are counted from the received file, which only a binary channel writes as bits
	if opts.Model != "" && opts.Model != chansim.DefaultModel {
		return nil, fmt.Errorf("unsupported channel model %q, only %q is supported", opts.Model, chansim.DefaultModel)
	}

	grid, err := benchmarking.NewRateGrid(opts.From, opts.To)
	if err != nil {
		return nil, err
	}

	records, err := blocks.ExtractFile(source, opts.Blocks)
	if err != nil {
		return nil, err
	}
	payload, err := blocks.NewPayload(records)
	if err != nil {
		return nil, err
	}
	if err := payload.WriteFile(opts.PayloadFile); err != nil {
		return nil, err
	}
	logrus.Infof("payload of %v blocks (%v bits) written to %v", len(payload), payload.Bits(), opts.PayloadFile)

	data := &tools.SweepResults{
		TypeInfo:    TypeInfo(opts),
		ECCInfo:     eccInfo(opts.ParityCheck),
		PayloadInfo: payload.Md5Sum(),
		Stats:       make(map[float64]benchmarking.RateStats),
	}

	completed := map[benchmarking.Rate]benchmarking.RateStats{}
	if opts.ResultsFile != "" {
		loaded, err := tools.LoadResults(opts.ResultsFile)
		if err != nil {
			return nil, err
		}
		if loaded != nil {
			if !loaded.SameExperiment(data) {
				return nil, fmt.Errorf("results file %v was made by a different experiment: expected %v/%v/%v but found %v/%v/%v",
					opts.ResultsFile, data.TypeInfo, data.ECCInfo, data.PayloadInfo, loaded.TypeInfo, loaded.ECCInfo, loaded.PayloadInfo)
			}
			data = loaded
			completed = data.Completed(grid, opts.Trials)
			logrus.Infof("resuming from %v: %v of %v rates already complete", opts.ResultsFile, len(completed), len(grid))
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logrus.Infof("seed %v", seed)

	ws, err := workspaces(opts)
	if err != nil {
		return nil, err
	}

	sweep := &benchmarking.Sweep{
		Grid:       grid,
		Trials:     opts.Trials,
		Payload:    payload,
		Input:      opts.PayloadFile,
		Workspaces: ws,
		Channel: &chansim.Transmitter{
			Path:  opts.TransmitPath,
			Model: opts.Model,
			Env:   opts.Env,
		},
		Decoder: &chansim.Decoder{
			Path:          opts.DecodePath,
			ParityCheck:   opts.ParityCheck,
			Model:         opts.Model,
			Algorithm:     opts.Algorithm,
			MaxIterations: opts.MaxIterations,
			Env:           opts.Env,
		},
		Random:       rand.New(rand.NewSource(seed)),
		Completed:    completed,
		ShowProgress: opts.Progress,
	}

	if opts.ResultsFile != "" {
		sweep.Checkpoints = func(stats benchmarking.RateStats) error {
			data.Stats[stats.Rate] = stats
			return tools.SaveResults(opts.ResultsFile, data)
		}
	}

	if opts.DBFile != "" {
		db, err := store.Open(opts.DBFile)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		runID, err := db.StartRun(ctx, store.RunInfo{
			Source:      source,
			TypeInfo:    data.TypeInfo,
			ECCInfo:     data.ECCInfo,
			PayloadInfo: data.PayloadInfo,
			Seed:        seed,
			First:       opts.From,
			Last:        opts.To,
			Trials:      opts.Trials,
		})
		if err != nil {
			return nil, err
		}
		// logged without ctx so an interrupt does not lose the trial that just finished
		sweep.Recorder = func(result benchmarking.TrialResult) error {
			return db.InsertTrial(context.Background(), runID, result)
		}
		logrus.Infof("logging trials to %v as run %v", opts.DBFile, runID)
	}

	logrus.Infof("sweeping %v rates (%v to %v) with %v trials each", len(grid), grid[0], grid[len(grid)-1], opts.Trials)
	stats, err := sweep.Run(ctx)
	if err != nil {
		return stats, err
	}

	chartData, err := plot.NewChartData(stats, opts.Degree)
	if err != nil {
		return stats, err
	}
	if err := plot.SaveFile(opts.ChartFile, chartData); err != nil {
		return stats, err
	}
	logrus.Infof("chart written to %v", opts.ChartFile)
	return stats, nil
}
