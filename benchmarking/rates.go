package benchmarking

import (
	"fmt"
	"math"
	"strconv"
)

//RateScale is the number of grid steps per unit of crossover probability.
const RateScale = 1000

const (
	DefaultFirstRate = 1
	DefaultLastRate  = 199
)

//Rate is a crossover probability expressed as a number of 1/RateScale steps.
type Rate int

//Value is the crossover probability as a float.
func (r Rate) Value() float64 {
	return float64(r) / RateScale
}

//String formats the rate the way the channel tools expect it, e.g. 7 -> "0.007".
func (r Rate) String() string {
	return fmt.Sprintf("%d.%03d", int(r)/RateScale, int(r)%RateScale)
}

//ParseRate is the inverse of Rate.String.
func ParseRate(s string) (Rate, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad rate %q: %w", s, err)
	}
	if f < 0 || f >= 1 {
		return 0, fmt.Errorf("rate must be in [0,1) but found %v", s)
	}
	return Rate(math.Round(f * RateScale)), nil
}

//RateGrid is a strictly increasing sequence of rates.
type RateGrid []Rate

//NewRateGrid makes the grid of every rate index in [first, last].
func NewRateGrid(first, last int) (RateGrid, error) {
	if first < 0 {
		return nil, fmt.Errorf("first rate index must be >=0 but found %v", first)
	}
	if last >= RateScale {
		return nil, fmt.Errorf("last rate index must be <%v but found %v", RateScale, last)
	}
	if first > last {
		return nil, fmt.Errorf("first rate index (%v) must be <= last rate index (%v)", first, last)
	}

	grid := make(RateGrid, 0, last-first+1)
	for i := first; i <= last; i++ {
		grid = append(grid, Rate(i))
	}
	return grid, nil
}

//DefaultRateGrid is 0.001 through 0.199 in steps of 0.001. Index 0 is not part of the sweep.
func DefaultRateGrid() RateGrid {
	grid, _ := NewRateGrid(DefaultFirstRate, DefaultLastRate)
	return grid
}

func (g RateGrid) Values() []float64 {
	values := make([]float64, len(g))
	for i, r := range g {
		values[i] = r.Value()
	}
	return values
}

func (g RateGrid) Strings() []string {
	names := make([]string, len(g))
	for i, r := range g {
		names[i] = r.String()
	}
	return names
}
