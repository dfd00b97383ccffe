// Package config resolves prettysmi's settings from flags and environment
// variables. A flag beats the environment, which beats the default.
//
// Every setting has one key. Flags use the key with '-' in place of '_'
// (--temp-warn) and the environment prefixes it with PRETTYSMI_
// (PRETTYSMI_TEMP_WARN). Nothing is read from or written to disk.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/rileyhilliard/prettysmi/internal/classify"
	"github.com/rileyhilliard/prettysmi/internal/collector"
	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/render"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "PRETTYSMI"

// Setting keys.
const (
	KeyPath    = "path"
	KeyArgs    = "args"
	KeyInput   = "input"
	KeyTimeout = "timeout"
	KeyOutput  = "output"
	KeyNoColor = "no_color"
	KeyDebug   = "debug"

	KeyUtilizationWarn = "utilization_warn"
	KeyUtilizationCrit = "utilization_crit"
	KeyTempWarn        = "temp_warn"
	KeyTempCrit        = "temp_crit"
	KeyMemWarn         = "mem_warn_pct"
	KeyMemCrit         = "mem_crit_pct"
	KeyPowerWarn       = "power_warn"
	KeyPowerCrit       = "power_crit"
)

// ThresholdKeys lists the threshold settings in help-text order.
var ThresholdKeys = []string{
	KeyUtilizationWarn, KeyUtilizationCrit,
	KeyTempWarn, KeyTempCrit,
	KeyMemWarn, KeyMemCrit,
	KeyPowerWarn, KeyPowerCrit,
}

// Config is the resolved settings of one run.
type Config struct {
	ToolPath   string
	ToolArgs   []string
	Input      string
	Timeout    time.Duration
	Output     string // empty picks terminal or plain from the environment
	NoColor    bool
	Debug      bool
	Thresholds classify.Config
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		ToolPath:   collector.DefaultPath,
		ToolArgs:   append([]string(nil), collector.DefaultArgs...),
		Timeout:    collector.DefaultTimeout,
		Thresholds: classify.DefaultConfig(),
	}
}

// FlagName converts a setting key to its flag name.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// EnvName converts a setting key to its environment variable.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

// NewViper returns a viper instance reading PRETTYSMI_* overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load resolves a Config from v. Unset keys keep their defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	var err error

	if v.IsSet(KeyPath) {
		if cfg.ToolPath, err = getString(v, KeyPath); err != nil {
			return nil, err
		}
	}
	if v.IsSet(KeyArgs) {
		if cfg.ToolArgs, err = getStrings(v, KeyArgs); err != nil {
			return nil, err
		}
	}
	if cfg.Input, err = getString(v, KeyInput); err != nil {
		return nil, err
	}
	if cfg.Output, err = getString(v, KeyOutput); err != nil {
		return nil, err
	}
	if v.IsSet(KeyTimeout) {
		if cfg.Timeout, err = getDuration(v, KeyTimeout); err != nil {
			return nil, err
		}
	}
	if cfg.NoColor, err = getBool(v, KeyNoColor); err != nil {
		return nil, err
	}
	if cfg.Debug, err = getBool(v, KeyDebug); err != nil {
		return nil, err
	}

	thresholds := map[string]*float64{
		KeyUtilizationWarn: &cfg.Thresholds.Utilization.Warn,
		KeyUtilizationCrit: &cfg.Thresholds.Utilization.Crit,
		KeyTempWarn:        &cfg.Thresholds.Temperature.Warn,
		KeyTempCrit:        &cfg.Thresholds.Temperature.Crit,
		KeyMemWarn:         &cfg.Thresholds.Memory.Warn,
		KeyMemCrit:         &cfg.Thresholds.Memory.Crit,
		KeyPowerWarn:       &cfg.Thresholds.Power.Warn,
		KeyPowerCrit:       &cfg.Thresholds.Power.Crit,
	}
	for _, key := range ThresholdKeys {
		if !v.IsSet(key) {
			continue
		}
		f, err := cast.ToFloat64E(v.Get(key))
		if err != nil {
			return nil, invalid(key, v.Get(key), "a number")
		}
		*thresholds[key] = f
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that can't be checked one key at a time.
func (c Config) Validate() error {
	if c.ToolPath == "" && c.Input == "" {
		return errors.New(errors.ErrConfig, "The tool path is empty", "Pass --path or --input.")
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Timeout must be positive, got %s", c.Timeout),
			"Pass a duration such as --timeout 10s.")
	}
	if c.Output != "" {
		if _, err := render.ParseFormat(c.Output); err != nil {
			return err
		}
	}
	return c.Thresholds.Validate()
}

func getString(v *viper.Viper, key string) (string, error) {
	s, err := cast.ToStringE(v.Get(key))
	if err != nil {
		return "", invalid(key, v.Get(key), "a string")
	}
	return strings.TrimSpace(s), nil
}

// getStrings accepts a list from a flag or file, or a space separated
// string from the environment.
func getStrings(v *viper.Viper, key string) ([]string, error) {
	ss, err := cast.ToStringSliceE(v.Get(key))
	if err != nil {
		return nil, invalid(key, v.Get(key), "a list of arguments")
	}
	return ss, nil
}

func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := cast.ToDurationE(v.Get(key))
	if err != nil {
		return 0, invalid(key, v.Get(key), "a duration such as 10s")
	}
	return d, nil
}

func getBool(v *viper.Viper, key string) (bool, error) {
	b, err := cast.ToBoolE(v.Get(key))
	if err != nil {
		return false, invalid(key, v.Get(key), "true or false")
	}
	return b, nil
}

func invalid(key string, value interface{}, want string) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Invalid value %q for %s", cast.ToString(value), key),
		fmt.Sprintf("Use %s (flag --%s or %s).", want, FlagName(key), EnvName(key)))
}
