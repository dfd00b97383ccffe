package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/collector"
	"github.com/rileyhilliard/prettysmi/internal/config"
	"github.com/rileyhilliard/prettysmi/internal/gpu"
	"github.com/rileyhilliard/prettysmi/internal/logger"
	"github.com/rileyhilliard/prettysmi/internal/parser"
	"github.com/rileyhilliard/prettysmi/internal/render"
	"github.com/rileyhilliard/prettysmi/internal/sysinfo"
)

const title = "prettysmi"

// runReport is one collect, parse, classify and render pass. Nothing
// reaches stdout unless every step succeeds.
func runReport(ctx context.Context, env Env, cfg *config.Config) error {
	log := logger.NewWithWriter(env.Stderr, title, cfg.Debug)

	format, lr, err := selectFormat(env, cfg)
	if err != nil {
		return err
	}
	log.Debug("output format %s", format)

	raw, err := collector.Collect(ctx, collector.Options{
		Path:    cfg.ToolPath,
		Args:    cfg.ToolArgs,
		Timeout: cfg.Timeout,
		Input:   cfg.Input,
		Fs:      env.Fs,
		Stdin:   env.Stdin,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	parsed, err := parser.New(log).ParseReport(*raw)
	if err != nil {
		return err
	}
	devices := parsed.Devices
	log.Debug("parsed %d device(s) from %s", len(devices), raw.Source)

	header := render.Header{
		Title:     title,
		Product:   product(devices),
		Driver:    parsed.Driver,
		Source:    raw.Source,
		Timestamp: env.Now(),
	}
	// Saved output may come from another machine, so local facts would lie.
	if cfg.Input == "" {
		info := sysinfo.Gather(ctx, sysinfo.Options{
			Fs:       env.Fs,
			RocmRoot: os.Getenv("ROCM_PATH"),
			Logger:   log,
		})
		header.Host = info.Hostname
		header.Kernel = info.Kernel
		header.Stack = info.Stack()
	}

	report := render.Report{
		Header:  header,
		Devices: classify.ClassifyAll(devices, cfg.Thresholds),
		Summary: classify.Summarize(devices, cfg.Thresholds),
	}

	return render.Render(env.Stdout, report, render.Options{Format: format, Renderer: lr})
}

// product names the first GPU for the header: "Radeon RX 7900 XTX (gfx1100)".
func product(devices []gpu.DeviceMetrics) string {
	if len(devices) == 0 {
		return ""
	}
	d := devices[0]
	switch {
	case d.Name != "" && d.Target != "":
		return d.Name + " (" + d.Target + ")"
	case d.Name != "":
		return d.Name
	default:
		return d.Target
	}
}

// selectFormat picks the output format. Without -o, a terminal gets the
// styled table and anything else gets plain text. --no-color and NO_COLOR
// turn terminal output into plain; structured formats ignore both. An
// explicit -o terminal keeps colors even when stdout is not a terminal.
func selectFormat(env Env, cfg *config.Config) (render.Format, *lipgloss.Renderer, error) {
	noColor := cfg.NoColor || os.Getenv("NO_COLOR") != ""
	tty := env.IsTerminal(env.Stdout)

	format := render.FormatTerminal
	if !tty {
		format = render.FormatPlain
	}
	if cfg.Output != "" {
		f, err := render.ParseFormat(cfg.Output)
		if err != nil {
			return "", nil, err
		}
		format = f
	}

	if format != render.FormatTerminal {
		return format, nil, nil
	}
	if noColor {
		return render.FormatPlain, nil, nil
	}

	lr := lipgloss.NewRenderer(env.Stdout)
	if !tty {
		lr.SetColorProfile(termenv.ANSI)
	}
	return render.FormatTerminal, lr, nil
}
