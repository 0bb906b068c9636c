package chansim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/nathanhack/eccsweep/benchmarking"
	"github.com/nathanhack/eccsweep/blocks"
)

const (
	helperEnv = "CHANSIM_HELPER"
	argsEnv   = "CHANSIM_ARGS"
)

// TestMain lets the test binary stand in for the transmit and decode executables.
func TestMain(m *testing.M) {
	switch os.Getenv(helperEnv) {
	case "":
		os.Exit(m.Run())
	case "transmit":
		os.Exit(helperTransmit(os.Args[1:]))
	case "decode":
		os.Exit(helperDecode(os.Args[1:]))
	default:
		fmt.Fprintln(os.Stderr, "simulated failure")
		os.Exit(3)
	}
}

func saveArgs(args []string) {
	if path := os.Getenv(argsEnv); path != "" {
		os.WriteFile(path, []byte(strings.Join(args, "\n")), 0644)
	}
}

func helperTransmit(args []string) int {
	saveArgs(args)
	if len(args) != 5 {
		fmt.Fprintf(os.Stderr, "expected 5 arguments but found %v\n", len(args))
		return 1
	}
	bs, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := os.WriteFile(args[1], bs, 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func helperDecode(args []string) int {
	saveArgs(args)
	if len(args) != 7 {
		fmt.Fprintf(os.Stderr, "expected 7 arguments but found %v\n", len(args))
		return 1
	}
	bs, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	lines := strings.Count(string(bs), "\n")
	fmt.Fprintf(os.Stderr, "Decoded %v blocks, %v valid.  Average 1.0 iterations, 0%% bit changes\n", lines, lines-1)
	return 0
}

func helperEnvironment(role, argsFile string) []string {
	env := []string{helperEnv + "=" + role}
	if argsFile != "" {
		env = append(env, argsEnv+"="+argsFile)
	}
	return env
}

func readArgs(t *testing.T, path string) []string {
	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return strings.Split(string(bs), "\n")
}

func TestTransmitter_Transmit(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "temp.enc")
	received := filepath.Join(dir, "temp.rec")
	argsFile := filepath.Join(dir, "args")
	if err := os.WriteFile(input, []byte("00011011\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tx := &Transmitter{Path: os.Args[0], Env: helperEnvironment("transmit", argsFile)}
	rate := "0.007; rm -rf /"
	if err := tx.Transmit(context.Background(), input, received, 42, rate); err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}

	expected := []string{input, received, "42", "bsc", rate}
	if actual := readArgs(t, argsFile); !reflect.DeepEqual(actual, expected) {
		t.Fatalf("expected %v but found %v", expected, actual)
	}
	bs, err := os.ReadFile(received)
	if err != nil || string(bs) != "00011011\n" {
		t.Fatalf("expected the received file to be written: %q %v", string(bs), err)
	}
}

func TestDecoder_Decode(t *testing.T) {
	dir := t.TempDir()
	received := filepath.Join(dir, "temp.rec")
	decoded := filepath.Join(dir, "temp.dec")
	argsFile := filepath.Join(dir, "args")
	if err := os.WriteFile(received, []byte("0001\n1011\n0000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dec := &Decoder{
		Path:          os.Args[0],
		ParityCheck:   "ECC.pchk",
		Model:         "bsc",
		Algorithm:     "prprp",
		MaxIterations: -100,
		Env:           helperEnvironment("decode", argsFile),
	}
	diagnostic, err := dec.Decode(context.Background(), received, decoded, "0.150")
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}

	expected := []string{"ECC.pchk", received, decoded, "bsc", "0.150", "prprp", "-100"}
	if actual := readArgs(t, argsFile); !reflect.DeepEqual(actual, expected) {
		t.Fatalf("expected %v but found %v", expected, actual)
	}

	total, valid, err := benchmarking.ParseDiagnostic(diagnostic)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	if total != 3 || valid != 2 {
		t.Fatalf("expected (3,2) but found (%v,%v)", total, valid)
	}
}

func TestProcessError(t *testing.T) {
	tests := []struct {
		run func() error
	}{
		{func() error {
			tx := &Transmitter{Path: os.Args[0], Env: helperEnvironment("fail", "")}
			return tx.Transmit(context.Background(), "in", "out", 1, "0.001")
		}},
		{func() error {
			dec := &Decoder{Path: os.Args[0], Env: helperEnvironment("fail", "")}
			_, err := dec.Decode(context.Background(), "in", "out", "0.001")
			return err
		}},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			err := test.run()
			if !errors.Is(err, benchmarking.ErrExternalProcess) {
				t.Fatalf("expected %v but found %v", benchmarking.ErrExternalProcess, err)
			}
			var processErr *ProcessError
			if !errors.As(err, &processErr) {
				t.Fatalf("expected a ProcessError but found %T", err)
			}
			if processErr.ExitCode != 3 {
				t.Fatalf("expected exit code %v but found %v", 3, processErr.ExitCode)
			}
			if !strings.Contains(processErr.Stderr, "simulated failure") {
				t.Fatalf("expected the stderr to be kept but found %q", processErr.Stderr)
			}
		})
	}
}

func TestProcessError_MissingExecutable(t *testing.T) {
	tx := &Transmitter{Path: filepath.Join(t.TempDir(), "transmit")}
	err := tx.Transmit(context.Background(), "in", "out", 1, "0.001")
	if !errors.Is(err, benchmarking.ErrExternalProcess) {
		t.Fatalf("expected %v but found %v", benchmarking.ErrExternalProcess, err)
	}
}

func TestSweep_ExternalTools(t *testing.T) {
	dir := t.TempDir()
	records := make([]blocks.Record, 5)
	for i := range records {
		records[i] = blocks.Record{Position: strconv.Itoa(i), Data: "ATCG"}
	}
	payload, err := blocks.NewPayload(records)
	if err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "temp.enc")
	if err := payload.WriteFile(input); err != nil {
		t.Fatal(err)
	}

	grid, _ := benchmarking.NewRateGrid(1, 2)
	sweep := &benchmarking.Sweep{
		Grid:    grid,
		Trials:  2,
		Payload: payload,
		Input:   input,
		Workspaces: []benchmarking.Workspace{{
			Received: filepath.Join(dir, "temp.rec"),
			Decoded:  filepath.Join(dir, "temp.dec"),
		}},
		Channel: &Transmitter{Path: os.Args[0], Env: helperEnvironment("transmit", "")},
		Decoder: &Decoder{Path: os.Args[0], Env: helperEnvironment("decode", "")},
		Random:  rand.New(rand.NewSource(1)),
	}

	stats, err := sweep.Run(context.Background())
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected %v rates but found %v", 2, len(stats))
	}
	for _, s := range stats {
		if s.Mean != 80 || s.StdDev != 0 || s.Trials != 2 {
			t.Fatalf("unexpected statistics %v", s)
		}
	}
}
