package camera

import (
	"fmt"
	"strings"
)

// Property is a logical camera control, independent of the platform's
// control identifiers.
type Property int

// Supported properties.
const (
	Zoom Property = iota
	Exposure
	Gain
	WhiteBalance
	Brightness
	Contrast
	Saturation
	Sharpness
	Pan
	Tilt
)

var propertyIDs = [...]string{
	Zoom:         "zoom",
	Exposure:     "exposure",
	Gain:         "gain",
	WhiteBalance: "white_balance",
	Brightness:   "brightness",
	Contrast:     "contrast",
	Saturation:   "saturation",
	Sharpness:    "sharpness",
	Pan:          "pan",
	Tilt:         "tilt",
}

// Properties lists every Property in declaration order.
func Properties() []Property {
	out := make([]Property, len(propertyIDs))
	for i := range propertyIDs {
		out[i] = Property(i)
	}
	return out
}

// String returns the control id used by the API and the layout.
func (p Property) String() string {
	if p < 0 || int(p) >= len(propertyIDs) {
		return fmt.Sprintf("Property(%d)", int(p))
	}
	return propertyIDs[p]
}

// ParseProperty accepts ids case-insensitively, with or without
// underscores ("white_balance", "WhiteBalance").
func ParseProperty(name string) (Property, error) {
	key := normalize(name)
	if key == "" {
		return 0, fmt.Errorf("%w: empty name", ErrUnknownProperty)
	}
	for i, id := range propertyIDs {
		if normalize(id) == key {
			return Property(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
}

func normalize(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
}
