package benchmarking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/nathanhack/eccsweep/blocks"
	mat "github.com/nathanhack/sparsemat"
	"github.com/nathanhack/threadpool"
	"github.com/sirupsen/logrus"
)

var ErrExternalProcess = errors.New("external process failed")

//TrialResult is the outcome of a single transmit and decode at one rate.
type TrialResult struct {
	Rate        Rate
	Position    int // index of Rate in the grid
	Repetition  int
	Parameter   int // random channel parameter handed to the simulator
	Decoded     int
	Valid       int
	Percentage  float64
	FlippedBits int
	TotalBits   int
}

//ChannelErrorRate is the fraction of bits the channel flipped.
func (t TrialResult) ChannelErrorRate() float64 {
	if t.TotalBits == 0 {
		return 0
	}
	return float64(t.FlippedBits) / float64(t.TotalBits)
}

//BinarySymmetricChannel runs the channel simulator: it reads the input file and
// writes the received file using the given parameter and crossover rate.
type BinarySymmetricChannel interface {
	Transmit(ctx context.Context, input, received string, parameter int, rate string) error
}

//BinarySymmetricChannelDecoder runs the decoder on the received file and returns its diagnostic text.
type BinarySymmetricChannelDecoder interface {
	Decode(ctx context.Context, received, decoded, rate string) (diagnostic string, err error)
}

//Workspace holds the per trial artifacts. Concurrent trials must not share one.
type Workspace struct {
	Received string
	Decoded  string
}

type Checkpoints func(updatedStats RateStats) error

type TrialRecorder func(result TrialResult) error

//Sweep runs Trials repetitions for every rate of Grid. With one workspace the
// trials run strictly one after another; with more, that many run at once.
type Sweep struct {
	Grid       RateGrid
	Trials     int
	Payload    blocks.Payload
	Input      string // the transmission input file, already containing Payload
	Workspaces []Workspace
	Channel    BinarySymmetricChannel
	Decoder    BinarySymmetricChannelDecoder
	Random     *rand.Rand

	// Completed rates are not run again but their channel parameters are still
	// drawn so the remaining trials see the same parameters as an uninterrupted run.
	Completed    map[Rate]RateStats
	Checkpoints  Checkpoints
	Recorder     TrialRecorder
	ShowProgress bool
}

func (s *Sweep) validate() error {
	switch {
	case len(s.Grid) == 0:
		return fmt.Errorf("the rate grid is empty")
	case s.Trials < 1:
		return fmt.Errorf("trials must be >=1 but found %v", s.Trials)
	case len(s.Payload) == 0:
		return fmt.Errorf("the payload is empty")
	case len(s.Workspaces) == 0:
		return fmt.Errorf("at least one workspace is required")
	case s.Channel == nil || s.Decoder == nil:
		return fmt.Errorf("both the channel and the decoder are required")
	case s.Random == nil:
		return fmt.Errorf("a random source is required")
	}
	for i := 1; i < len(s.Grid); i++ {
		if s.Grid[i-1] >= s.Grid[i] {
			return fmt.Errorf("the rate grid must be strictly increasing: %v >= %v", s.Grid[i-1], s.Grid[i])
		}
	}
	return nil
}

//Run sweeps the grid and returns the statistics of every rate, in grid order.
// The first error stops the sweep; the statistics of the rates completed
// before it are returned with the error.
func (s *Sweep) Run(ctx context.Context) ([]RateStats, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	run := &sweepRun{
		Sweep:   s,
		vectors: s.Payload.Vectors(),
		bits:    s.Payload.Bits(),
		agg:     NewAggregator(s.Grid, s.Trials),
		stats:   make([]*RateStats, len(s.Grid)),
	}
	for i, r := range s.Grid {
		if st, has := s.Completed[r]; has {
			st := st
			run.stats[i] = &st
		}
	}

	if s.ShowProgress {
		run.bar = pb.StartNew(len(s.Grid) * s.Trials)
		defer run.bar.Finish()
	}

	var err error
	if len(s.Workspaces) == 1 {
		err = run.sequential(ctx)
	} else {
		err = run.parallel(ctx)
	}
	return run.collect(), err
}

type sweepRun struct {
	*Sweep
	vectors  []mat.SparseVector
	bits     int
	agg      *Aggregator
	stats    []*RateStats
	statsMux sync.Mutex
	bar      *pb.ProgressBar
}

func (r *sweepRun) sequential(ctx context.Context) error {
	ws := r.Workspaces[0]
	for pos := range r.Grid {
		skip := r.stats[pos] != nil
		for rep := 0; rep < r.Trials; rep++ {
			parameter := ChannelParameter(r.Random)
			if skip {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := r.trial(ctx, ws, pos, rep, parameter)
			if err != nil {
				return err
			}
			if err := r.record(result); err != nil {
				return err
			}
		}
		if skip && r.bar != nil {
			r.bar.Add(r.Trials)
		}
	}
	return nil
}

func (r *sweepRun) parallel(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var errOnce sync.Once
	var firstErr error
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	slots := make(chan Workspace, len(r.Workspaces))
	for _, ws := range r.Workspaces {
		slots <- ws
	}

	// the pool is never cancelled directly; queued trials see runCtx and return
	pool := threadpool.NewFixedSize(context.Background(), len(r.Workspaces), len(r.Grid)*r.Trials)
	for pos := range r.Grid {
		skip := r.stats[pos] != nil
		for rep := 0; rep < r.Trials; rep++ {
			parameter := ChannelParameter(r.Random)
			if skip {
				continue
			}
			pos, rep := pos, rep
			pool.Add(func() {
				if runCtx.Err() != nil {
					return
				}
				ws := <-slots
				defer func() { slots <- ws }()

				result, err := r.trial(runCtx, ws, pos, rep, parameter)
				if err != nil {
					fail(err)
					return
				}
				if err := r.record(result); err != nil {
					fail(err)
				}
			})
		}
		if skip && r.bar != nil {
			r.bar.Add(r.Trials)
		}
	}
	pool.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (r *sweepRun) trial(ctx context.Context, ws Workspace, pos, rep, parameter int) (TrialResult, error) {
	rate := r.Grid[pos]

	err := r.Channel.Transmit(ctx, r.Input, ws.Received, parameter, rate.String())
	if err != nil {
		return TrialResult{}, fmt.Errorf("error rate %v, trial %v: %w", rate, rep, err)
	}

	flipped, err := CountFlips(r.vectors, ws.Received)
	if err != nil {
		return TrialResult{}, fmt.Errorf("error rate %v, trial %v: %w", rate, rep, err)
	}

	diagnostic, err := r.Decoder.Decode(ctx, ws.Received, ws.Decoded, rate.String())
	if err != nil {
		return TrialResult{}, fmt.Errorf("error rate %v, trial %v: %w", rate, rep, err)
	}
	logrus.Debugf("error rate %v, trial %v: result: %v", rate, rep, strings.TrimSpace(diagnostic))

	decoded, valid, err := ParseDiagnostic(diagnostic)
	if err != nil {
		return TrialResult{}, fmt.Errorf("error rate %v, trial %v: %w", rate, rep, err)
	}

	return TrialResult{
		Rate:        rate,
		Position:    pos,
		Repetition:  rep,
		Parameter:   parameter,
		Decoded:     decoded,
		Valid:       valid,
		Percentage:  SuccessPercentage(decoded, valid),
		FlippedBits: flipped,
		TotalBits:   r.bits,
	}, nil
}

func (r *sweepRun) record(result TrialResult) error {
	r.statsMux.Lock()
	defer r.statsMux.Unlock()

	if r.bar != nil {
		r.bar.Increment()
	}
	if r.Recorder != nil {
		if err := r.Recorder(result); err != nil {
			return fmt.Errorf("error while recording trial: %w", err)
		}
	}

	stats, complete := r.agg.Add(result)
	if !complete {
		return nil
	}
	r.stats[result.Position] = &stats
	logrus.Debugf("error rate %v: %v", result.Rate, stats)

	if r.Checkpoints != nil {
		if err := r.Checkpoints(stats); err != nil {
			return fmt.Errorf("error while saving checkpoint: %w", err)
		}
	}
	return nil
}

func (r *sweepRun) collect() []RateStats {
	r.statsMux.Lock()
	defer r.statsMux.Unlock()

	results := make([]RateStats, 0, len(r.stats))
	for _, s := range r.stats {
		if s != nil {
			results = append(results, *s)
		}
	}
	return results
}
