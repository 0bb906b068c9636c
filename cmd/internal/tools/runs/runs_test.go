package runs

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nathanhack/eccsweep/store"
)

func TestWrite(t *testing.T) {
	runs := []store.RunInfo{
		{ID: 1, StartedAt: time.Now(), Source: "blocks.xml", TypeInfo: "BSC:prprp/-100", Seed: 42, First: 1, Last: 199, Trials: 20, TrialCount: 140},
	}
	buf := bytes.Buffer{}
	Write(&buf, runs)
	out := buf.String()
	for _, expected := range []string{"blocks.xml", "BSC:prprp/-100", "42", "1-199", "140/3980"} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected %q in %q", expected, out)
		}
	}
}
