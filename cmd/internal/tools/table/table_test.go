package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nathanhack/eccsweep/benchmarking"
	"github.com/nathanhack/eccsweep/cmd/internal/tools"
)

func TestWrite(t *testing.T) {
	stats := &tools.SweepResults{
		TypeInfo: "BSC:prprp/-100",
		Stats: map[float64]benchmarking.RateStats{
			0.15:  {Rate: 0.15, Trials: 20, Mean: 12.5, StdDev: 4},
			0.007: {Rate: 0.007, Trials: 20, Mean: 80, StdDev: 0, ChannelErrorRate: 0.0075},
		},
	}
	buf := bytes.Buffer{}
	Write(&buf, "results.json", stats)
	out := buf.String()

	if !strings.HasPrefix(out, "results.json (BSC:prprp/-100)\n") {
		t.Fatalf("expected a title line but found %q", out)
	}
	for _, expected := range []string{"0.007", "80.00", "0.750", "0.150", "12.50", "4.00"} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected %q in %q", expected, out)
		}
	}
	if strings.Index(out, "0.007") > strings.Index(out, "0.150") {
		t.Fatalf("expected rates in increasing order")
	}
}
