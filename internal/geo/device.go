package geo

import (
	"context"
	"errors"
)

var (
	// ErrDeviceLocationUnsupported means the host has no position to offer.
	ErrDeviceLocationUnsupported = errors.New("device location is not supported")
	// ErrDeviceLocationDenied means the operator has refused position access.
	ErrDeviceLocationDenied = errors.New("device location access denied")
)

// Position is a bare coordinate pair.
type Position struct {
	Latitude  float64
	Longitude float64
}

// DevicePositioner is the on-device fallback source. Supported is checked
// before Position is called.
type DevicePositioner interface {
	Supported() bool
	Position(ctx context.Context) (Position, error)
}

// StaticPositioner serves the position configured for this host. A host
// without configured coordinates has no device position; Allowed=false
// models a refused permission.
type StaticPositioner struct {
	Latitude  *float64
	Longitude *float64
	Allowed   bool
}

// Supported reports whether coordinates were configured.
func (p StaticPositioner) Supported() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Position returns the configured coordinates.
func (p StaticPositioner) Position(ctx context.Context) (Position, error) {
	if !p.Supported() {
		return Position{}, ErrDeviceLocationUnsupported
	}
	if !p.Allowed {
		return Position{}, ErrDeviceLocationDenied
	}
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position{Latitude: *p.Latitude, Longitude: *p.Longitude}, nil
}
