package models

import "fmt"

// Platform identifies which client surface an account belongs to. The integer
// values are the stored representation.
type Platform int

const (
	PlatformUnknown     Platform = 0
	PlatformConsumerApp Platform = 1
	PlatformAdminPortal Platform = 2
)

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	return p == PlatformConsumerApp || p == PlatformAdminPortal
}

func (p Platform) String() string {
	switch p {
	case PlatformConsumerApp:
		return "consumer_app"
	case PlatformAdminPortal:
		return "admin_portal"
	default:
		return fmt.Sprintf("platform(%d)", int(p))
	}
}

// ParsePlatform converts the stored or transported integer form.
func ParsePlatform(v int) (Platform, error) {
	p := Platform(v)
	if !p.Valid() {
		return PlatformUnknown, fmt.Errorf("unknown platform %d", v)
	}
	return p, nil
}
