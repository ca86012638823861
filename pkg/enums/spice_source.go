package enums

import "fmt"

// SpiceSource names where raw spice stock originates.
type SpiceSource string

const (
	SpiceSourceSupplier   SpiceSource = "supplier"
	SpiceSourcePlantation SpiceSource = "plantation"
)

var validSpiceSources = []SpiceSource{
	SpiceSourceSupplier,
	SpiceSourcePlantation,
}

// String implements fmt.Stringer.
func (s SpiceSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SpiceSource.
func (s SpiceSource) IsValid() bool {
	for _, candidate := range validSpiceSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSpiceSource converts raw input into a SpiceSource.
func ParseSpiceSource(value string) (SpiceSource, error) {
	for _, candidate := range validSpiceSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid spice source %q", value)
}
