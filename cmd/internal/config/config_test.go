package config

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
)

const tomlConfig = `
[sweep]
trials = 3
from = 5
to = 9
seed = 42
progress = false

[tools]
transmit = "/opt/ldpc/transmit"
max_iterations = -50

[output]
chart = "bsc.png"
`

const yamlConfig = `
sweep:
  trials: 3
  from: 5
  to: 9
  seed: 42
  progress: false
tools:
  transmit: /opt/ldpc/transmit
  max_iterations: -50
output:
  chart: bsc.png
`

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"sweep.toml", tomlConfig},
		{"sweep.yaml", yamlConfig},
		{"sweep.yml", yamlConfig},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), test.name)
			if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error but found: %v", err)
			}
			if cfg.Sweep.Trials == nil || *cfg.Sweep.Trials != 3 {
				t.Fatalf("expected trials %v but found %v", 3, cfg.Sweep.Trials)
			}
			if cfg.Sweep.From == nil || *cfg.Sweep.From != 5 || cfg.Sweep.To == nil || *cfg.Sweep.To != 9 {
				t.Fatalf("expected rates [5,9] but found [%v,%v]", cfg.Sweep.From, cfg.Sweep.To)
			}
			if cfg.Sweep.Seed == nil || *cfg.Sweep.Seed != 42 {
				t.Fatalf("expected seed %v but found %v", 42, cfg.Sweep.Seed)
			}
			if cfg.Sweep.Progress == nil || *cfg.Sweep.Progress {
				t.Fatalf("expected progress to be false")
			}
			if cfg.Sweep.Blocks != nil || cfg.Sweep.Threads != nil {
				t.Fatalf("expected unset values to stay nil")
			}
			if cfg.Tools.Transmit == nil || *cfg.Tools.Transmit != "/opt/ldpc/transmit" {
				t.Fatalf("expected transmit %v but found %v", "/opt/ldpc/transmit", cfg.Tools.Transmit)
			}
			if cfg.Tools.MaxIterations == nil || *cfg.Tools.MaxIterations != -50 {
				t.Fatalf("expected max iterations %v but found %v", -50, cfg.Tools.MaxIterations)
			}
			if cfg.Output.Chart == nil || *cfg.Output.Chart != "bsc.png" {
				t.Fatalf("expected chart %v but found %v", "bsc.png", cfg.Output.Chart)
			}
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error but found: %v", err)
	}
	if cfg.Sweep.Trials != nil {
		t.Fatalf("expected an empty config")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"sweep.json", `{}`},
		{"sweep.toml", `[sweep`},
		{"sweep.yaml", "sweep: [1"},
		{"sweep.toml", "[sweep]\ntrials = \"many\""},
	}
	for i, test := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), test.name)
			if err := os.WriteFile(path, []byte(test.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestApply(t *testing.T) {
	var trials, from int
	cmd := &cobra.Command{Use: "sweep"}
	cmd.Flags().IntVar(&trials, "trials", 20, "")
	cmd.Flags().IntVar(&from, "from", 1, "")
	if err := cmd.Flags().Parse([]string{"--trials", "7"}); err != nil {
		t.Fatal(err)
	}

	three, five := 3, 5
	Apply(cmd, "trials", &trials, &three)
	Apply(cmd, "from", &from, &five)
	if trials != 7 {
		t.Fatalf("expected the command line to win: expected %v but found %v", 7, trials)
	}
	if from != 5 {
		t.Fatalf("expected %v but found %v", 5, from)
	}

	Apply(cmd, "from", &from, nil)
	if from != 5 {
		t.Fatalf("expected %v but found %v", 5, from)
	}
}
