// Package sysinfo gathers the best-effort facts shown in the report header:
// hostname, kernel release and the installed ROCm version.
//
// Nothing here is required for a report. Every lookup that fails leaves its
// field empty and is logged at debug level.
package sysinfo

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/afero"

	"github.com/rileyhilliard/prettysmi/internal/logger"
)

// DefaultRocmRoot is where ROCm installs unless ROCM_PATH says otherwise.
const DefaultRocmRoot = "/opt/rocm"

// Info is the header facts for one report.
type Info struct {
	Hostname    string
	Kernel      string
	RocmVersion string
}

// Stack returns the ROCm label shown in the header, or "".
func (i Info) Stack() string {
	if i.RocmVersion == "" {
		return ""
	}
	return "ROCm " + i.RocmVersion
}

// Options controls where Gather looks.
type Options struct {
	Fs       afero.Fs // defaults to the OS filesystem
	RocmRoot string   // defaults to DefaultRocmRoot
	Logger   logger.Logger
}

// hostInfo is swapped out in tests.
var hostInfo = host.InfoWithContext

// Gather collects Info. It never fails.
func Gather(ctx context.Context, opts Options) Info {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}

	var info Info

	if h, err := hostInfo(ctx); err != nil {
		log.Debug("host info unavailable: %v", err)
	} else if h != nil {
		info.Hostname = h.Hostname
		info.Kernel = h.KernelVersion
	}

	info.RocmVersion = RocmVersion(opts.Fs, opts.RocmRoot, log)
	return info
}

// RocmVersion reads <root>/.info/version, falling back to
// <root>/.info/version-dev. Build suffixes after '-' are dropped.
func RocmVersion(fs afero.Fs, root string, log logger.Logger) string {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if root == "" {
		root = DefaultRocmRoot
	}
	if log == nil {
		log = logger.Noop()
	}

	for _, name := range []string{"version", "version-dev"} {
		path := filepath.Join(root, ".info", name)
		b, err := afero.ReadFile(fs, path)
		if err != nil {
			log.Debug("rocm version: %v", err)
			continue
		}
		v := strings.TrimSpace(string(b))
		if i := strings.IndexByte(v, '-'); i > 0 {
			v = v[:i]
		}
		if v != "" {
			return v
		}
	}
	return ""
}
