package benchmarking

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/nathanhack/eccsweep/blocks"
	mat "github.com/nathanhack/sparsemat"
)

const (
	MinChannelParameter = 1
	MaxChannelParameter = 100
)

//ChannelParameter draws the random channel parameter in [MinChannelParameter, MaxChannelParameter].
func ChannelParameter(r *rand.Rand) int {
	return MinChannelParameter + r.Intn(MaxChannelParameter-MinChannelParameter+1)
}

//CountFlips compares the received data file at path with the sent bit vectors
// and returns the number of bits the channel flipped.
func CountFlips(sent []mat.SparseVector, path string) (int, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: reading received data: %v", ErrExternalProcess, err)
	}

	lines := strings.Split(strings.TrimRight(string(bs), "\r\n"), "\n")
	if len(bs) == 0 {
		lines = nil
	}
	if len(lines) != len(sent) {
		return 0, fmt.Errorf("%w: %v: expected %v blocks but found %v", ErrExternalProcess, path, len(sent), len(lines))
	}

	flipped := 0
	for i, line := range lines {
		received, err := blocks.BitVector(strings.TrimRight(line, "\r"))
		if err != nil {
			return 0, fmt.Errorf("%w: %v: block %v: %v", ErrExternalProcess, path, i, err)
		}
		if received.Len() != sent[i].Len() {
			return 0, fmt.Errorf("%w: %v: block %v: expected %v bits but found %v", ErrExternalProcess, path, i, sent[i].Len(), received.Len())
		}
		flipped += sent[i].HammingDistance(received)
	}
	return flipped, nil
}
