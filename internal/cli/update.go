package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/logger"
	"github.com/rileyhilliard/prettysmi/internal/release"
	"github.com/rileyhilliard/prettysmi/internal/ui"
)

// installDirEnv overrides the default install directory of update.
const installDirEnv = "PRETTYSMI_INSTALL_DIR"

type updateOptions struct {
	dir   string
	yes   bool
	force bool
	check bool
	debug bool
}

func newUpdateCmd(env Env) *cobra.Command {
	opts := &updateOptions{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Install the latest prettysmi release",
		Long: `Download the latest prettysmi release for this platform from GitHub,
verify it against the published checksums, and replace the binary in the
install directory.

Examples:
  prettysmi update --check
  prettysmi update --yes
  sudo prettysmi update --dir /usr/local/bin`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, env, opts)
		},
	}

	defaultDir := os.Getenv(installDirEnv)
	if defaultDir == "" {
		defaultDir = release.DefaultInstallDir
	}

	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", defaultDir, "install directory (env "+installDirEnv+")")
	f.BoolVarP(&opts.yes, "yes", "y", false, "install without asking")
	f.BoolVar(&opts.force, "force", false, "reinstall even when already up to date")
	f.BoolVar(&opts.check, "check", false, "only report whether an update is available")
	f.BoolVar(&opts.debug, "debug", false, "log release details to stderr")

	return cmd
}

// confirmPrompt asks a yes/no question with a huh confirm form.
func confirmPrompt(in io.Reader, out io.Writer, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Value(&ok),
		),
	).WithInput(in).WithOutput(out).Run()
	return ok, err
}

func runUpdate(cmd *cobra.Command, env Env, opts *updateOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := logger.NewWithWriter(env.Stderr, "update", opts.debug)

	fetcher := release.New(release.Config{
		InstallDir: opts.dir,
		APIBase:    env.ReleaseAPI,
		HTTPClient: env.HTTPClient,
		Fs:         env.Fs,
		Logger:     log,
	})

	rel, err := fetcher.Latest(ctx)
	if err != nil {
		return err
	}

	newer := release.IsNewer(version, rel.Version)
	if !newer && !opts.force {
		ui.FprintSuccess(out, fmt.Sprintf("prettysmi %s is up to date (latest is %s)", formatVersion(version), rel.Tag))
		return nil
	}
	if opts.check {
		fmt.Fprintf(out, "%s prettysmi %s is available (running %s)\n  %s\n",
			ui.SymbolPending, rel.Tag, formatVersion(version), rel.PageURL)
		return nil
	}

	if !newer {
		ui.FprintWarning(env.Stderr, fmt.Sprintf("prettysmi %s is already the latest release, reinstalling", formatVersion(version)))
	}

	if !opts.yes {
		if !env.IsTerminal(env.Stdin) {
			return errors.New(errors.ErrConfig,
				"Refusing to install without confirmation",
				"Re-run with --yes when not attached to a terminal.")
		}

		confirm, err := env.Confirm(fmt.Sprintf("Install prettysmi %s to %s?", rel.Tag, fetcher.Target()), rel.PageURL)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrRelease,
				"Couldn't ask for confirmation",
				"Re-run with --yes to install without asking.")
		}
		if !confirm {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	spinner := ui.NewSpinner(env.Stderr, "Installing prettysmi "+rel.Tag, env.IsTerminal(env.Stderr))
	spinner.Start()
	target, err := fetcher.Install(ctx, rel)
	if err != nil {
		spinner.Fail()
		return err
	}
	spinner.Success()

	ui.FprintSuccess(out, fmt.Sprintf("Installed prettysmi %s to %s", rel.Tag, target))
	return nil
}
