//Package config reads the optional sweep configuration file. TOML and YAML are both accepted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type FileConfig struct {
	Sweep  SweepConfig  `toml:"sweep" yaml:"sweep"`
	Tools  ToolsConfig  `toml:"tools" yaml:"tools"`
	Output OutputConfig `toml:"output" yaml:"output"`
}

type SweepConfig struct {
	Trials   *int   `toml:"trials" yaml:"trials"`
	Blocks   *int   `toml:"blocks" yaml:"blocks"`
	From     *int   `toml:"from" yaml:"from"`
	To       *int   `toml:"to" yaml:"to"`
	Seed     *int64 `toml:"seed" yaml:"seed"`
	Threads  *int   `toml:"threads" yaml:"threads"`
	Degree   *int   `toml:"degree" yaml:"degree"`
	Progress *bool  `toml:"progress" yaml:"progress"`
}

//ToolsConfig names the external channel simulator and decoder and their arguments.
type ToolsConfig struct {
	Transmit      *string `toml:"transmit" yaml:"transmit"`
	Decode        *string `toml:"decode" yaml:"decode"`
	ParityCheck   *string `toml:"parity_check" yaml:"parity_check"`
	Model         *string `toml:"model" yaml:"model"`
	Algorithm     *string `toml:"algorithm" yaml:"algorithm"`
	MaxIterations *int    `toml:"max_iterations" yaml:"max_iterations"`
}

type OutputConfig struct {
	Payload  *string `toml:"payload" yaml:"payload"`
	Received *string `toml:"received" yaml:"received"`
	Decoded  *string `toml:"decoded" yaml:"decoded"`
	Chart    *string `toml:"chart" yaml:"chart"`
	Results  *string `toml:"results" yaml:"results"`
	DB       *string `toml:"db" yaml:"db"`
	Workdir  *string `toml:"workdir" yaml:"workdir"`
}

//LoadConfig reads the config at path, picking the format from the extension.
// A missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}

	var cfg FileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
		for _, key := range md.Undecoded() {
			logrus.Warnf("unknown config key %v in %v", key.String(), path)
		}
	case ".yaml", ".yml":
		bs, err := os.ReadFile(path)
		if err != nil {
			return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(bs, &cfg); err != nil {
			return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		return FileConfig{}, fmt.Errorf("config %v must be .toml, .yaml or .yml but found %q", path, ext)
	}
	return cfg, nil
}

//Apply copies value into target unless value is unset or the flag was given on the command line.
func Apply[T any](cmd *cobra.Command, name string, target, value *T) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
