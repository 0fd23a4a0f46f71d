package models

import (
	"fmt"
	"strings"
)

// FallLocation is where the patient's falls happened.
type FallLocation int

const (
	LocationIndoor FallLocation = iota + 1
	LocationOutdoor
	LocationBoth
)

func (l FallLocation) String() string {
	switch l {
	case LocationIndoor:
		return "Indoor"
	case LocationOutdoor:
		return "Outdoor"
	case LocationBoth:
		return "Both"
	default:
		return fmt.Sprintf("FallLocation(%d)", int(l))
	}
}

// ParseFallLocation accepts the location names case-insensitively.
func ParseFallLocation(s string) (FallLocation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "indoor":
		return LocationIndoor, nil
	case "outdoor":
		return LocationOutdoor, nil
	case "both":
		return LocationBoth, nil
	}
	return 0, fmt.Errorf("unknown fall location %q", s)
}

// AllowedLocations lists the locations selectable for a fall count. A single
// fall cannot have happened in both places.
func AllowedLocations(falls int) []FallLocation {
	if falls <= 1 {
		return []FallLocation{LocationIndoor, LocationOutdoor}
	}
	return []FallLocation{LocationIndoor, LocationOutdoor, LocationBoth}
}

// LocationAllowed reports whether l may be selected for falls incidents.
func LocationAllowed(l FallLocation, falls int) bool {
	for _, a := range AllowedLocations(falls) {
		if a == l {
			return true
		}
	}
	return false
}

func (l FallLocation) MarshalText() ([]byte, error) {
	if l < LocationIndoor || l > LocationBoth {
		return nil, fmt.Errorf("invalid fall location %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *FallLocation) UnmarshalText(text []byte) error {
	parsed, err := ParseFallLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
