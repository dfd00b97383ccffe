package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/ui"
)

// Env is what a command run sees of the process. Tests swap every field.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Fs     afero.Fs

	// IsTerminal reports whether a stream is an interactive terminal.
	IsTerminal func(any) bool
	Now        func() time.Time

	// HTTPClient and ReleaseAPI are used by the update command.
	HTTPClient *http.Client
	ReleaseAPI string

	// Confirm asks the user a yes/no question. Defaults to a huh prompt on
	// Stdin and Stderr.
	Confirm func(title, description string) (bool, error)
}

// DefaultEnv is the real process environment.
func DefaultEnv() Env {
	return Env{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Stdin:      os.Stdin,
		Fs:         afero.NewOsFs(),
		IsTerminal: isTerminal,
		Now:        time.Now,
	}
}

func (e Env) withDefaults() Env {
	d := DefaultEnv()
	if e.Stdout == nil {
		e.Stdout = d.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = d.Stderr
	}
	if e.Stdin == nil {
		e.Stdin = d.Stdin
	}
	if e.Fs == nil {
		e.Fs = d.Fs
	}
	if e.IsTerminal == nil {
		e.IsTerminal = d.IsTerminal
	}
	if e.Now == nil {
		e.Now = d.Now
	}
	if e.Confirm == nil {
		in, out := e.Stdin, e.Stderr
		e.Confirm = func(title, description string) (bool, error) {
			return confirmPrompt(in, out, title, description)
		}
	}
	return e
}

func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Execute runs prettysmi with the process arguments and returns the exit
// code. SIGINT and SIGTERM cancel a running collection.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Run(ctx, os.Args[1:], DefaultEnv())
}

// Run executes one invocation against env. Errors are printed to env.Stderr
// as a single line and mapped to an exit code.
func Run(ctx context.Context, args []string, env Env) int {
	env = env.withDefaults()

	cmd := newRootCmd(env)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return errors.ExitOK
	}

	var smiErr *errors.Error
	if !errors.As(err, &smiErr) {
		// Anything cobra rejects on its own is a usage problem.
		err = errors.WrapWithCode(err, errors.ErrConfig, "Invalid usage", "See prettysmi --help.")
	}

	ui.FprintError(env.Stderr, errors.Line(err))
	return errors.ExitCode(err)
}

func newRootCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prettysmi",
		Short: "Color-coded GPU status from rocm-smi",
		Long: `Run the GPU diagnostics tool, classify each reading against warning and
critical thresholds, and print a color-coded table.

Every flag can also be set with a PRETTYSMI_* environment variable, for
example PRETTYSMI_TEMP_WARN=80. Flags win over the environment.

Exit codes:
  0  report printed
  1  tool missing, failed or timed out
  2  no GPU data in the tool's output
  3  invalid flags or settings

Examples:
  prettysmi
  prettysmi --temp-warn 70 --temp-crit 85
  prettysmi -o json | jq '.devices[].metrics'
  rocm-smi > snapshot.txt && prettysmi -i snapshot.txt`,
		Version:       formatVersion(version),
		Args:          noArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), env, cfg)
		},
	}

	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)
	cmd.SetIn(env.Stdin)
	cmd.SetVersionTemplate("prettysmi {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.WrapWithCode(err, errors.ErrConfig, "Invalid flag", "See prettysmi --help.")
	})

	registerFlags(cmd)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newUpdateCmd(env))
	cmd.AddCommand(newCompletionCmd())

	return cmd
}

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unexpected argument %q", args[0]),
		"prettysmi only takes flags. See prettysmi --help.")
}
