package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nathanhack/eccsweep/benchmarking"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "trials.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	defer s.Close()

	info := RunInfo{
		Source:      "blocks.xml",
		TypeInfo:    "BSC:prprp/-100",
		ECCInfo:     "abc",
		PayloadInfo: "def",
		Seed:        42,
		First:       1,
		Last:        199,
		Trials:      20,
	}
	first, err := s.StartRun(ctx, info)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	second, err := s.StartRun(ctx, info)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	if second <= first {
		t.Fatalf("expected run ids to increase but found %v then %v", first, second)
	}

	trials := []benchmarking.TrialResult{
		{Rate: 7, Repetition: 0, Parameter: 13, Decoded: 5, Valid: 4, Percentage: 80, FlippedBits: 2, TotalBits: 40},
		{Rate: 7, Repetition: 1, Parameter: 99, Decoded: 5, Valid: 5, Percentage: 100, FlippedBits: 0, TotalBits: 40},
		{Rate: 150, Repetition: 0, Parameter: 1, Decoded: 5, Valid: 0, Percentage: 0, FlippedBits: 7, TotalBits: 40},
	}
	for _, tr := range trials {
		if err := s.InsertTrial(ctx, first, tr); err != nil {
			t.Fatalf("expected no error but found: %v", err)
		}
	}
	if err := s.InsertTrial(ctx, first, trials[0]); err == nil {
		t.Fatalf("expected a duplicate trial to be rejected")
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected %v runs but found %v", 2, len(runs))
	}
	if runs[0].ID != first || runs[0].TrialCount != 3 || runs[1].TrialCount != 0 {
		t.Fatalf("unexpected runs %+v", runs)
	}
	if runs[0].TypeInfo != info.TypeInfo || runs[0].Seed != 42 || runs[0].Last != 199 {
		t.Fatalf("expected %+v but found %+v", info, runs[0])
	}
	if runs[0].StartedAt.IsZero() {
		t.Fatalf("expected a start time")
	}

	actual, err := s.Trials(ctx, first)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	if !reflect.DeepEqual(actual, trials) {
		t.Fatalf("expected %v but found %v", trials, actual)
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trials.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.StartRun(ctx, RunInfo{Trials: 1}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	defer s.Close()
	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected %v runs but found %v", 1, len(runs))
	}
}
