package classify

import "fmt"

// Tier is the severity assigned to one metric reading.
type Tier int

// Tiers in increasing severity. Unknown sorts first but is never treated as
// a reading: it means there was nothing to compare.
const (
	TierUnknown Tier = iota
	TierNormal
	TierWarning
	TierCritical
)

var tierNames = map[Tier]string{
	TierUnknown:  "unknown",
	TierNormal:   "normal",
	TierWarning:  "warning",
	TierCritical: "critical",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier resolves a tier name produced by String.
func ParseTier(s string) (Tier, error) {
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return TierUnknown, fmt.Errorf("unknown severity tier %q", s)
}

// MarshalText lets tiers encode as their names in JSON and YAML.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
