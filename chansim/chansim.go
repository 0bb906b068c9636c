//Package chansim runs the external channel simulator and decoder executables.
// Commands are started with an explicit argument vector, never through a shell.
package chansim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/nathanhack/eccsweep/benchmarking"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTransmitPath  = "./transmit"
	DefaultDecodePath    = "./decode"
	DefaultParityCheck   = "ECC.pchk"
	DefaultModel         = "bsc"
	DefaultAlgorithm     = "prprp"
	DefaultMaxIterations = -100
)

//ProcessError is returned when an external tool can not be started or exits with a nonzero status.
type ProcessError struct {
	Path     string
	Args     []string
	ExitCode int // -1 when the process never exited normally
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%v %v: %v", e.Path, strings.Join(e.Args, " "), e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ProcessError) Unwrap() []error {
	return []error{benchmarking.ErrExternalProcess, e.Err}
}

//Transmitter runs `transmit INPUT RECEIVED PARAMETER MODEL RATE`.
type Transmitter struct {
	Path  string
	Model string
	Env   []string // added to the current environment
}

func (t *Transmitter) Transmit(ctx context.Context, input, received string, parameter int, rate string) error {
	args := []string{input, received, strconv.Itoa(parameter), model(t.Model), rate}
	_, err := run(ctx, path(t.Path, DefaultTransmitPath), args, t.Env)
	return err
}

//Decoder runs `decode PARITY_CHECK RECEIVED DECODED MODEL RATE ALGORITHM MAX_ITERATIONS`
// and returns what the decoder wrote to stderr.
type Decoder struct {
	Path          string
	ParityCheck   string
	Model         string
	Algorithm     string
	MaxIterations int
	Env           []string
}

func (d *Decoder) Decode(ctx context.Context, received, decoded, rate string) (string, error) {
	parityCheck := d.ParityCheck
	if parityCheck == "" {
		parityCheck = DefaultParityCheck
	}
	algorithm := d.Algorithm
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	args := []string{parityCheck, received, decoded, model(d.Model), rate, algorithm, strconv.Itoa(d.MaxIterations)}
	return run(ctx, path(d.Path, DefaultDecodePath), args, d.Env)
}

func path(p, def string) string {
	if p == "" {
		return def
	}
	return p
}

func model(m string) string {
	if m == "" {
		return DefaultModel
	}
	return m
}

//run waits for the command to finish and returns its stderr.
func run(ctx context.Context, name string, args []string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	stderr := bytes.Buffer{}
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard

	logrus.Tracef("running %v %v", name, strings.Join(args, " "))
	err := cmd.Run()
	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return stderr.String(), &ProcessError{
			Path:     name,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}
	return stderr.String(), nil
}
