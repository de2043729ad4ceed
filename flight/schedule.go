// flight/schedule.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/skyarc/flightglobe/globe"
	"github.com/skyarc/flightglobe/rand"
)

// DefaultSpeed is used when a schedule entry is missing a speed or carries
// a non-positive one, in globe length units per second.
const DefaultSpeed = 500

// Schedule is one fixture record: a departure/arrival pair plus a cruise
// speed. Schedules are static data; they are loaded once at startup and
// never refreshed.
type Schedule struct {
	Departure globe.GeoCoordinate `json:"departure"`
	Arrival   globe.GeoCoordinate `json:"arrival"`
	Speed     float32             `json:"speed,omitempty"`
}

func (s Schedule) SpeedOrDefault() float32 {
	if s.Speed <= 0 {
		return DefaultSpeed
	}
	return s.Speed
}

func (s Schedule) validate() error {
	for _, c := range []globe.GeoCoordinate{s.Departure, s.Arrival} {
		if c.Lat < -90 || c.Lat > 90 {
			return fmt.Errorf("latitude %v out of range [-90,90]", c.Lat)
		}
		if c.Lng < -180 || c.Lng > 180 {
			return fmt.Errorf("longitude %v out of range [-180,180]", c.Lng)
		}
	}
	return nil
}

// LoadSchedules reads a JSON array of schedule records.
func LoadSchedules(r io.Reader) ([]Schedule, error) {
	var scheds []Schedule
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&scheds); err != nil {
		return nil, fmt.Errorf("decoding schedules: %w", err)
	}

	for i, s := range scheds {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("schedule %d: %w", i, err)
		}
	}
	return scheds, nil
}

// RandomSchedule synthesizes a schedule between two uniformly distributed
// surface points; it pads out the fleet when the fixture file has fewer
// records than the configured aircraft count.
func RandomSchedule(radius float32, rng *rand.Rand) Schedule {
	randCoord := func() globe.GeoCoordinate {
		return globe.ToGeoCoordinate(globe.RandomSurfacePoint(radius, rng), radius)
	}
	return Schedule{Departure: randCoord(), Arrival: randCoord()}
}
