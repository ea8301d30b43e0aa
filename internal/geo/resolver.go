// Package geo resolves the user's coordinates, trying an IP lookup first
// and falling back to the device position.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/prayer-clock/internal/metrics"
)

// Location sources.
const (
	SourceIP     = "ip"
	SourceDevice = "device"
	SourceManual = "manual"
)

// DeviceCity labels a location that came from the device position, which
// carries no place name.
const DeviceCity = "Current Location"

// ErrLocationUnavailable is returned when every source has failed. It is
// terminal for the attempt: the caller should ask for coordinates or retry.
var ErrLocationUnavailable = errors.New("could not determine your location, please enter it manually")

// Location holds geographic coordinates and where they came from.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	Source    string  `json:"source"`
}

// Manual builds a location from coordinates the user supplied directly.
func Manual(lat, lon float64, city, country string) *Location {
	return &Location{Latitude: lat, Longitude: lon, City: city, Country: country, Source: SourceManual}
}

// IPLookup is the primary location source.
type IPLookup interface {
	Lookup(ctx context.Context) (*Location, error)
}

// Resolver chains the IP source and the device source.
type Resolver struct {
	ip     IPLookup
	device DevicePositioner
}

// NewResolver creates a resolver. Either source may be nil, in which case
// it counts as failed.
func NewResolver(ip IPLookup, device DevicePositioner) *Resolver {
	return &Resolver{ip: ip, device: device}
}

// Resolve returns the IP location when it has coordinates, otherwise the
// device position. When both fail the returned error wraps
// ErrLocationUnavailable together with both causes.
func (r *Resolver) Resolve(ctx context.Context) (*Location, error) {
	loc, ipErr := r.lookupIP(ctx)
	metrics.ObserveLocation(SourceIP, ipErr)
	if ipErr == nil {
		return loc, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	log.Warn().Err(ipErr).Msg("[geo] ip lookup failed, trying device position")

	loc, devErr := r.lookupDevice(ctx)
	metrics.ObserveLocation(SourceDevice, devErr)
	if devErr == nil {
		return loc, nil
	}
	log.Warn().Err(devErr).Msg("[geo] device position unavailable")

	return nil, fmt.Errorf("%w: %w; %w", ErrLocationUnavailable, ipErr, devErr)
}

func (r *Resolver) lookupIP(ctx context.Context) (*Location, error) {
	if r.ip == nil {
		return nil, fmt.Errorf("%w: no ip source configured", ErrIPLookupFailed)
	}
	loc, err := r.ip.Lookup(ctx)
	if err != nil {
		if !errors.Is(err, ErrIPLookupFailed) {
			err = fmt.Errorf("%w: %w", ErrIPLookupFailed, err)
		}
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: response has no coordinates", ErrIPLookupFailed)
	}
	return loc, nil
}

func (r *Resolver) lookupDevice(ctx context.Context) (*Location, error) {
	if r.device == nil || !r.device.Supported() {
		return nil, ErrDeviceLocationUnsupported
	}
	pos, err := r.device.Position(ctx)
	if err != nil {
		return nil, err
	}
	return &Location{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		City:      DeviceCity,
		Source:    SourceDevice,
	}, nil
}
