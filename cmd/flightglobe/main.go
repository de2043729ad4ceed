// cmd/flightglobe/main.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// flightglobe animates tens of thousands of aircraft flying great-circle
// arcs over a globe, batched into a handful of draw calls per frame.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"

	_ "embed"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyarc/flightglobe/flight"
	"github.com/skyarc/flightglobe/log"
	"github.com/skyarc/flightglobe/renderer"
	"github.com/skyarc/flightglobe/sim"
)

//go:embed flights.json
var defaultFlights []byte

func init() {
	// OpenGL and GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flightsPath := flag.String("flights", "", "path to JSON flight schedules (default: built-in)")
	strategy := flag.String("strategy", "", "animation strategy: cpu or gpu (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "flightglobe: %v\n", err)
		os.Exit(1)
	}
	if *strategy != "" {
		cfg.Sim.Strategy = sim.Strategy(strings.ToLower(*strategy))
		if err := cfg.Sim.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "flightglobe: %v\n", err)
			os.Exit(1)
		}
	}

	lg := log.New(cfg.LogLevel, cfg.LogDir)
	defer lg.CatchAndReportCrash()

	schedules, err := loadSchedules(*flightsPath)
	if err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
				lg.Errorf("metrics server: %v", err)
			}
		}()
		lg.Infof("serving metrics on %s/metrics", cfg.MetricsAddr)
	}

	if err := run(cfg, schedules, lg); err != nil {
		lg.Errorf("%v", err)
		os.Exit(1)
	}
}

func loadSchedules(path string) ([]flight.Schedule, error) {
	if path == "" {
		return flight.LoadSchedules(bytes.NewReader(defaultFlights))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return flight.LoadSchedules(f)
}

func run(cfg AppConfig, schedules []flight.Schedule, lg *log.Logger) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, "flightglobe", nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	rend, err := renderer.NewOpenGL3Renderer(lg)
	if err != nil {
		return err
	}
	defer rend.Dispose()

	vsrc := renderer.CPUPlanesVertexShader
	if cfg.Sim.Strategy == sim.StrategyGPU {
		vsrc = renderer.GPUPlanesVertexShader
	}
	program, err := rend.CreateProgram(vsrc, renderer.PlanesFragmentShader)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg.Sim, program, schedules, lg)
	if err != nil {
		return err
	}

	trailsEnabled := cfg.Sim.TrailsEnabled
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyT:
			trailsEnabled = !trailsEnabled
			s.SetTrailsEnabled(trailsEnabled)
		case glfw.KeyLeftBracket:
			s.SetActiveCount(s.ActiveCount() - s.Capacity()/10)
		case glfw.KeyRightBracket:
			s.SetActiveCount(s.ActiveCount() + s.Capacity()/10)
		}
	})

	var spin float32
	var stats renderer.RendererStats
	frame := 0
	last := glfw.GetTime()

	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := float32(now - last)
		last = now
		spin += cfg.SpinRate * dt

		s.Advance(dt)

		w, h := window.GetFramebufferSize()
		cb := renderer.GetCommandBuffer()
		s.GenerateCommands(cb, w, h, spin)
		stats.Merge(rend.RenderCommandBuffer(cb))
		renderer.ReturnCommandBuffer(cb)

		window.SwapBuffers()
		glfw.PollEvents()

		frame++
		if frame%600 == 0 {
			lg.Infof("rendered %d frames: %s", frame, stats.String())
			stats = renderer.RendererStats{}
		}
	}
	return nil
}
