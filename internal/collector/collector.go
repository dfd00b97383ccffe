// Package collector runs the GPU diagnostics tool, or reads a saved copy of
// its output, and returns the captured bytes untouched.
package collector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
	"github.com/rileyhilliard/prettysmi/internal/logger"
	"github.com/rileyhilliard/prettysmi/internal/util"
)

// Defaults for the diagnostics tool invocation.
const (
	DefaultPath    = "rocm-smi"
	DefaultTimeout = 10 * time.Second

	// StdinInput as Options.Input reads the report from standard input.
	StdinInput = "-"
)

// DefaultArgs asks rocm-smi for every metric the report shows.
var DefaultArgs = []string{
	"--showtemp",
	"--showuse",
	"--showpower",
	"--showmaxpower",
	"--showfan",
	"--showmeminfo", "vram",
	"--showclocks",
	"--showproductname",
	"--showdriver",
}

// waitDelay bounds how long Wait may block on pipes held open by
// grandchildren after the tool itself was killed.
const waitDelay = 2 * time.Second

// Options controls one collection.
type Options struct {
	Path    string        // executable name or path; defaults to DefaultPath
	Args    []string      // defaults to DefaultArgs when nil
	Timeout time.Duration // defaults to DefaultTimeout; the process is killed after it

	// Input, when set, names a file (or StdinInput) holding saved tool
	// output. No process is started and empty content is not an error.
	Input string
	Fs    afero.Fs  // filesystem for Input; defaults to the OS filesystem
	Stdin io.Reader // reader for StdinInput; defaults to os.Stdin

	Logger logger.Logger
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.Args == nil {
		o.Args = DefaultArgs
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	return o
}

// Collect captures one report. It runs the tool once, with no retries.
func Collect(ctx context.Context, opts Options) (*gpu.RawReport, error) {
	opts = opts.withDefaults()

	if opts.Input != "" {
		return readInput(opts)
	}
	return run(ctx, opts)
}

func run(ctx context.Context, opts Options) (*gpu.RawReport, error) {
	log := opts.Logger
	source := commandLine(opts.Path, opts.Args)

	path, err := exec.LookPath(opts.Path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect,
			fmt.Sprintf("Couldn't find %s", opts.Path),
			"Install ROCm (or your vendor's SMI tool) or point --path at the executable.")
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, opts.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	log.Debug("running %s (timeout %s)", source, opts.Timeout)
	start := time.Now()
	runErr := cmd.Run()
	log.Debug("%s finished in %s", opts.Path, time.Since(start).Round(time.Millisecond))

	report := &gpu.RawReport{
		Source: source,
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		return nil, errors.WrapWithCode(ctx.Err(), errors.ErrTimeout,
			fmt.Sprintf("%s didn't finish within %s", opts.Path, opts.Timeout),
			"Raise --timeout or check that the GPU driver is responsive.")
	}
	if ctx.Err() != nil {
		return nil, errors.WrapWithCode(ctx.Err(), errors.ErrCollect,
			fmt.Sprintf("%s was interrupted", opts.Path), "")
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, errors.WrapWithCode(runErr, errors.ErrCollect,
				fmt.Sprintf("Couldn't run %s", opts.Path),
				"Check that the file is executable.")
		}
		report.ExitCode = exitErr.ExitCode()

		msg := fmt.Sprintf("%s exited with status %d", opts.Path, report.ExitCode)
		if line := firstLine(stderr.String()); line != "" {
			return nil, errors.WrapWithCode(fmt.Errorf("%s", line), errors.ErrCollect, msg,
				"Run the tool directly to see its full output.")
		}
		return nil, errors.New(errors.ErrCollect, msg, "Run the tool directly to see its full output.")
	}

	if len(bytes.TrimSpace(report.Stdout)) == 0 {
		return nil, errors.New(errors.ErrCollect,
			fmt.Sprintf("%s printed nothing", opts.Path),
			"Check that a GPU and its driver are present.")
	}

	if len(report.Stderr) > 0 {
		log.Debug("%s stderr: %s", opts.Path, firstLine(string(report.Stderr)))
	}

	return report, nil
}

func readInput(opts Options) (*gpu.RawReport, error) {
	var (
		data []byte
		err  error
	)

	if opts.Input == StdinInput {
		data, err = io.ReadAll(opts.Stdin)
	} else {
		data, err = afero.ReadFile(opts.Fs, opts.Input)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect,
			fmt.Sprintf("Couldn't read %s", inputName(opts.Input)),
			"Check the --input path.")
	}

	// Empty saved output is passed on; the parser reports it as having no
	// device data.
	opts.Logger.Debug("read %d bytes from %s", len(data), inputName(opts.Input))

	return &gpu.RawReport{Source: inputName(opts.Input), Stdout: data}, nil
}

func inputName(input string) string {
	if input == StdinInput {
		return "stdin"
	}
	return input
}

// commandLine renders path and args for messages and the report header.
func commandLine(path string, args []string) string {
	return util.ShellJoin(append([]string{path}, args...))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
