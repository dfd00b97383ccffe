package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input    string
		wantOK   bool
		wantVal  float64
		wantUnit string
	}{
		{"45", true, 45, ""},
		{"45.0", true, 45, ""},
		{"92C", true, 92, "c"},
		{"65 C", true, 65, "c"},
		{"71°C", true, 71, "°c"},
		{"97%", true, 97, "%"},
		{"45 %", true, 45, "%"},
		{"220.45 W", true, 220.45, "w"},
		{"2048 MiB", true, 2048, "mib"},
		{"16GiB", true, 16, "gib"},
		{"1710 MHz", true, 1710, "mhz"},
		{"0: (500Mhz)", true, 500, "mhz"},
		{"46 (18%)", true, 18, "%"},
		{"17163091968", true, 17163091968, ""},
		{"N/A", false, 0, ""},
		{"[N/A]", false, 0, ""},
		{"Not Supported", false, 0, ""},
		{"", false, 0, ""},
		{"hot", false, 0, ""},
		{"P2", false, 0, ""},
		{"0x73bf", false, 0, ""},
		{"1200 RPM", false, 0, ""},
		{"1 2", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, ok := parseQuantity(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.wantVal, q.value, 0.0001)
				assert.Equal(t, tt.wantUnit, q.unit)
			}
		})
	}
}

func TestSplitLabelUnit(t *testing.T) {
	tests := []struct {
		input     string
		wantLabel string
		wantUnit  string
	}{
		{"vram total memory (b)", "vram total memory", "b"},
		{"temperature (sensor edge) (c)", "temperature (sensor edge)", "c"},
		{"gpu use (%)", "gpu use", "%"},
		{"memory.used [mib]", "memory.used", "mib"},
		{"temperature (sensor edge)", "temperature (sensor edge)", ""},
		{"fan speed", "fan speed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			label, unit := splitLabelUnit(tt.input)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.wantUnit, unit)
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "gpu use (%)", normalizeLabel("  GPU   use (%) "))
	assert.Equal(t, "sclk clock speed", normalizeLabel("sclk clock speed:"))
	assert.Equal(t, "gpu current temp", normalizeLabel("GPU\tCurrent Temp"))
}

func TestClassifyLabel(t *testing.T) {
	tests := []struct {
		label string
		unit  string
		want  field
	}{
		{"index", "", fieldIndex},
		{"product name", "", fieldName},
		{"card series", "", fieldName},
		{"temperature (sensor edge)", "c", fieldTemperature},
		{"gpu current temp", "c", fieldTemperature},
		{"temperature.gpu", "", fieldTemperature},
		{"gpu shutdown temp", "c", fieldNone},
		{"gpu t.limit temp", "c", fieldNone},
		{"memory current temp", "c", fieldNone},
		{"gpu use", "%", fieldUtilization},
		{"gpu", "%", fieldUtilization},
		{"utilization.gpu", "%", fieldUtilization},
		{"utilization.memory", "%", fieldNone},
		{"gpu memory use", "%", fieldNone},
		{"vram total used memory", "b", fieldMemoryUsed},
		{"used", "mib", fieldMemoryUsed},
		{"memory.used", "mib", fieldMemoryUsed},
		{"vram total memory", "b", fieldMemoryTotal},
		{"total", "mib", fieldMemoryTotal},
		{"average graphics package power", "w", fieldPowerDraw},
		{"power draw", "w", fieldPowerDraw},
		{"max graphics package power", "w", fieldPowerCap},
		{"current power limit", "w", fieldPowerCap},
		{"min power limit", "w", fieldNone},
		{"power management", "", fieldNone},
		{"fan speed", "%", fieldFan},
		{"fan rpm", "", fieldNone},
		{"sclk clock level", "mhz", fieldGraphicsClock},
		{"graphics", "mhz", fieldGraphicsClock},
		{"mclk clock level", "mhz", fieldMemoryClock},
		{"memory", "mhz", fieldMemoryClock},
		{"memory", "%", fieldNone},
		{"sm", "mhz", fieldNone},
		{"gfx activity", "", fieldNone},
		{"serial", "", fieldNone},
	}

	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.unit, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyLabel(tt.label, tt.unit), "got %s", classifyLabel(tt.label, tt.unit))
		})
	}
}
