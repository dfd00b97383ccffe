package render

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/prettysmi/internal/errors"
	"github.com/rileyhilliard/prettysmi/internal/util"
)

// Format selects the output encoding.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatPlain    Format = "plain"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatProm     Format = "prom"
)

// Formats lists every supported format, in help-text order.
var Formats = []Format{FormatTerminal, FormatPlain, FormatJSON, FormatYAML, FormatProm}

// ParseFormat resolves a --output value. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	want := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range Formats {
		if f == want {
			return f, nil
		}
	}
	suggestion := "Use one of: " + FormatList() + "."
	if similar := util.SuggestSimilar(string(want), formatNames(), 1); len(similar) > 0 {
		suggestion = fmt.Sprintf("Did you mean %q? ", similar[0]) + suggestion
	}
	return "", errors.New(errors.ErrConfig, fmt.Sprintf("Unknown output format %q", s), suggestion)
}

// FormatList joins the format names for help text.
func FormatList() string {
	return strings.Join(formatNames(), ", ")
}

func formatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// Structured reports whether f is machine-readable and ignores color.
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML || f == FormatProm
}
