package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/collector"
	"github.com/rileyhilliard/prettysmi/internal/config"
	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/render"
)

// registerFlags adds every setting flag to cmd. Flag defaults are for help
// text only; unset flags fall through to the environment.
func registerFlags(cmd *cobra.Command) {
	def := classify.DefaultConfig()
	f := cmd.Flags()

	f.String(config.FlagName(config.KeyPath), collector.DefaultPath, "diagnostics tool to run")
	f.String(config.FlagName(config.KeyArgs), strings.Join(collector.DefaultArgs, " "), "arguments passed to the tool")
	f.StringP(config.FlagName(config.KeyInput), "i", "", "read saved tool output from a file, or - for stdin")
	f.StringP(config.FlagName(config.KeyOutput), "o", "", "output format: "+render.FormatList()+" (default terminal, or plain when piped)")
	f.Duration(config.FlagName(config.KeyTimeout), collector.DefaultTimeout, "kill the tool after this long")
	f.Bool(config.FlagName(config.KeyNoColor), false, "disable colors (also honors NO_COLOR)")
	f.Bool(config.FlagName(config.KeyDebug), false, "log skipped lines and tool details to stderr")

	thresholds := []struct {
		key   string
		value float64
		usage string
	}{
		{config.KeyUtilizationWarn, def.Utilization.Warn, "utilization warning threshold (%)"},
		{config.KeyUtilizationCrit, def.Utilization.Crit, "utilization critical threshold (%)"},
		{config.KeyTempWarn, def.Temperature.Warn, "temperature warning threshold (°C)"},
		{config.KeyTempCrit, def.Temperature.Crit, "temperature critical threshold (°C)"},
		{config.KeyMemWarn, def.Memory.Warn, "VRAM warning threshold (% of total)"},
		{config.KeyMemCrit, def.Memory.Crit, "VRAM critical threshold (% of total)"},
		{config.KeyPowerWarn, def.Power.Warn, "power warning threshold (% of cap)"},
		{config.KeyPowerCrit, def.Power.Crit, "power critical threshold (% of cap)"},
	}
	for _, t := range thresholds {
		f.Float64(config.FlagName(t.key), t.value, t.usage)
	}
}

// loadConfig resolves the run's settings: flags, then PRETTYSMI_* variables.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.NewViper()

	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Name == "help" || flag.Name == "version" {
			return
		}
		key := strings.ReplaceAll(flag.Name, "-", "_")
		if err := v.BindPFlag(key, flag); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, errors.WrapWithCode(bindErr, errors.ErrConfig, "Couldn't bind flags", "")
	}

	return config.Load(v)
}
