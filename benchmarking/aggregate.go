package benchmarking

import (
	"fmt"
	"math"

	"github.com/nathanhack/avgstd"
	"gonum.org/v1/gonum/stat"
)

//RateStats summarizes every trial of a single rate.
type RateStats struct {
	Rate             float64
	Trials           int
	Mean             float64 // mean success percentage
	StdDev           float64 // standard deviation of the success percentage
	ChannelErrorRate float64 // mean fraction of payload bits flipped by the channel
}

func (s RateStats) String() string {
	return fmt.Sprintf("{Rate:%0.03f, Trials:%v, Success:%0.02f(+/-%0.02f), Channel:%0.04f}",
		s.Rate, s.Trials, s.Mean, s.StdDev, s.ChannelErrorRate)
}

//Summarize computes the mean and the (population) standard deviation of the percentages.
func Summarize(rate float64, percentages []float64) RateStats {
	if len(percentages) == 0 {
		return RateStats{Rate: rate}
	}
	mean := stat.Mean(percentages, nil)
	return RateStats{
		Rate:   rate,
		Trials: len(percentages),
		Mean:   mean,
		StdDev: math.Sqrt(stat.MomentAbout(2, percentages, mean, nil)),
	}
}

//Aggregator collects trial percentages by grid position. Storage is sized
// up front to len(grid) x trials.
type Aggregator struct {
	grid        RateGrid
	trials      int
	percentages [][]float64
	filled      []int
	channel     []avgstd.AvgStd
}

func NewAggregator(grid RateGrid, trials int) *Aggregator {
	if trials < 1 {
		panic(fmt.Sprintf("trials must be >=1 but found %v", trials))
	}
	percentages := make([][]float64, len(grid))
	backing := make([]float64, len(grid)*trials)
	for i := range percentages {
		percentages[i] = backing[i*trials : (i+1)*trials : (i+1)*trials]
	}
	return &Aggregator{
		grid:        grid,
		trials:      trials,
		percentages: percentages,
		filled:      make([]int, len(grid)),
		channel:     make([]avgstd.AvgStd, len(grid)),
	}
}

//Add records the result. Once every repetition of the result's rate has been
// added the rate's statistics are returned with complete == true.
func (a *Aggregator) Add(result TrialResult) (stats RateStats, complete bool) {
	pos := result.Position
	if pos < 0 || pos >= len(a.grid) {
		panic(fmt.Sprintf("grid position %v out of range [0,%v)", pos, len(a.grid)))
	}
	if result.Repetition < 0 || result.Repetition >= a.trials {
		panic(fmt.Sprintf("repetition %v out of range [0,%v)", result.Repetition, a.trials))
	}
	if a.filled[pos] >= a.trials {
		panic(fmt.Sprintf("rate %v already has %v trials", a.grid[pos], a.trials))
	}

	a.percentages[pos][result.Repetition] = result.Percentage
	a.channel[pos].Update(result.ChannelErrorRate())
	a.filled[pos]++

	if a.filled[pos] < a.trials {
		return RateStats{}, false
	}
	stats = Summarize(a.grid[pos].Value(), a.percentages[pos])
	stats.ChannelErrorRate = a.channel[pos].Mean
	return stats, true
}

//Percentages returns the recorded percentages for the grid position.
func (a *Aggregator) Percentages(pos int) []float64 {
	return a.percentages[pos][:a.trials]
}
