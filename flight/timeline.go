// flight/timeline.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flight

import (
	"github.com/skyarc/flightglobe/math"
)

type Phase int

const (
	Flying Phase = iota
	Dwelling
)

func (p Phase) String() string {
	switch p {
	case Flying:
		return "flying"
	case Dwelling:
		return "dwelling"
	default:
		return "unknown"
	}
}

// Timeline is one aircraft's animation clock: progress along the current
// leg plus the dwell pause at the destination. It is advanced by elapsed
// wall-clock seconds; it knows nothing about paths or rendering.
type Timeline struct {
	Progress     float32 // in [0,1] along the current leg
	Duration     float32 // seconds to fly the leg
	DwellElapsed float32
	DwellTarget  float32
	Phase        Phase
}

// Advance moves the clock forward by dt seconds and reports whether the
// dwell completed on this call, i.e. the aircraft should swap endpoints and
// begin its return leg. Progress never leaves [0,1]; a zero or negative
// duration (degenerate path) is treated as an instantly completed leg
// rather than dividing by zero.
func (tl *Timeline) Advance(dt float32) bool {
	switch tl.Phase {
	case Flying:
		if tl.Duration <= 0 {
			tl.Progress = 1
		} else {
			tl.Progress += dt / tl.Duration
		}
		if tl.Progress >= 1 {
			tl.Progress = 1
			tl.Phase = Dwelling
			tl.DwellElapsed = 0
		}
		return false

	case Dwelling:
		tl.DwellElapsed += dt
		if tl.DwellElapsed >= tl.DwellTarget {
			tl.Phase = Flying
			tl.Progress = 0
			tl.DwellElapsed = 0
			return true
		}
		return false

	default:
		return false
	}
}

// SetLeg resets the timeline for a new leg with the given flight duration
// and dwell target, keeping the current phase and progress. It is called
// when a path regenerates so that duration stays in sync with arc length.
func (tl *Timeline) SetLeg(duration, dwellTarget float32) {
	tl.Duration = math.Abs(duration)
	tl.DwellTarget = math.Abs(dwellTarget)
}
