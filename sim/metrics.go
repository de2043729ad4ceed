// sim/metrics.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame-budget observability: the whole point of the instancing design is
// staying under 16 ms with tens of thousands of aircraft, so tick timing
// is exported rather than just logged.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightglobe_tick_duration_seconds",
		Help:    "Duration of simulation ticks.",
		Buckets: []float64{.001, .002, .004, .008, .016, .033, .066, .1, .25},
	})

	legSwaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightglobe_leg_swaps_total",
		Help: "Aircraft arrivals that swapped to the return leg.",
	})

	activeAircraft = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flightglobe_active_aircraft",
		Help: "Number of currently active aircraft.",
	})
)

func recordTick(dt float32, swaps, active int) {
	tickDuration.Observe(float64(dt))
	legSwaps.Add(float64(swaps))
	activeAircraft.Set(float64(active))
}
