// renderer/trails_test.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyarc/flightglobe/curve"
	"github.com/skyarc/flightglobe/globe"
)

func testPath(t *testing.T) *curve.FlightPath {
	t.Helper()
	origin := globe.ToPoint3(globe.GeoCoordinate{Lat: 40, Lng: -74}, 600)
	dest := globe.ToPoint3(globe.GeoCoordinate{Lat: 35, Lng: 139}, 600)
	fp := curve.GeneratePath(origin, dest, 600, curve.DefaultPathConfig)
	return &fp
}

func TestTrailBlockLayout(t *testing.T) {
	const ppp = 8
	tr := NewMergedTrails(3, ppp)
	fp := testPath(t)

	tr.AddPath(1, fp, globe.GeoCoordinate{Lat: 40, Lng: -74})

	block := tr.Block(1)
	require.Len(t, block, ppp+1)

	// The samples are the path at i/(ppp-1), and the sentinel duplicates
	// the last one.
	for i := 0; i < ppp; i++ {
		want := fp.Evaluate(float32(i) / float32(ppp-1))
		assert.Equal(t, want, block[i])
	}
	assert.Equal(t, block[ppp-1], block[ppp])

	// Writes stay inside the agent's block.
	for _, p := range tr.Block(0) {
		assert.Equal(t, [3]float32{}, p)
	}
	for _, p := range tr.Block(2) {
		assert.Equal(t, [3]float32{}, p)
	}
}

func TestTrailIndicesSkipSentinels(t *testing.T) {
	const ppp = 4
	tr := NewMergedTrails(2, ppp)

	// Two segments' endpoints must never straddle a block boundary and no
	// index may reference a sentinel slot.
	require.Len(t, tr.indices, 2*(ppp-1)*2)
	for i := 0; i < len(tr.indices); i += 2 {
		a, b := tr.indices[i], tr.indices[i+1]
		assert.Equal(t, a+1, b)
		assert.Equal(t, a/int32(ppp+1), b/int32(ppp+1), "segment crosses a block boundary")
		assert.NotEqual(t, int32(ppp), b%int32(ppp+1), "segment endpoint references a sentinel")
	}
}

func TestTrailColorsEncodeDirection(t *testing.T) {
	tr := NewMergedTrails(1, 8)
	tr.AddPath(0, testPath(t), globe.GeoCoordinate{Lat: 40, Lng: -74})

	luma := func(c RGB) float32 { return c.R + c.G + c.B }
	first, last := tr.colors[0], tr.colors[7]
	assert.Less(t, luma(first), luma(last), "trail must run dark to light toward the destination")
}

func TestTrailHidePath(t *testing.T) {
	tr := NewMergedTrails(2, 8)
	fp := testPath(t)
	tr.AddPath(0, fp, globe.GeoCoordinate{Lat: 40, Lng: -74})
	tr.AddPath(1, fp, globe.GeoCoordinate{Lat: 35, Lng: 139})

	tr.HidePath(0)
	for _, p := range tr.Block(0) {
		assert.Equal(t, [3]float32{}, p)
	}
	// Agent 1's trail is untouched.
	assert.NotEqual(t, [3]float32{}, tr.Block(1)[0])

	// Out of range is a no-op.
	tr.HidePath(-1)
	tr.HidePath(5)
}

func TestTrailAddPathWhileDisabled(t *testing.T) {
	tr := NewMergedTrails(1, 8)
	tr.SetEnabled(false)
	tr.AddPath(0, testPath(t), globe.GeoCoordinate{})

	// Dropped, not deferred.
	tr.SetEnabled(true)
	for _, p := range tr.Block(0) {
		assert.Equal(t, [3]float32{}, p)
	}
}

func TestTrailVisibleCount(t *testing.T) {
	tr := NewMergedTrails(4, 8)
	tr.SetVisibleCount(2)
	assert.Equal(t, 2, tr.VisibleCount())
	tr.SetVisibleCount(100)
	assert.Equal(t, 4, tr.VisibleCount())
	tr.SetVisibleCount(-3)
	assert.Equal(t, 0, tr.VisibleCount())
}

func TestTrailUploadCoalescing(t *testing.T) {
	tr := NewMergedTrails(8, 8)
	fp := testPath(t)
	for i := 0; i < 8; i++ {
		tr.AddPath(i, fp, globe.GeoCoordinate{Lat: 10, Lng: float32(i) * 10})
	}
	assert.Equal(t, 0, tr.Uploads())
	tr.Flush()
	assert.Equal(t, 1, tr.Uploads(), "a batch of AddPath calls flushes as one upload")
	tr.Flush()
	assert.Equal(t, 1, tr.Uploads())
}

func TestTrailGenerateCommands(t *testing.T) {
	tr := NewMergedTrails(2, 8)
	tr.AddPath(0, testPath(t), globe.GeoCoordinate{Lat: 40, Lng: -74})
	tr.Flush()

	var cb CommandBuffer
	tr.GenerateCommands(&cb)
	assert.Empty(t, cb.Buf, "no visible trails should generate no commands")

	tr.SetVisibleCount(1)
	tr.GenerateCommands(&cb)
	assert.NotEmpty(t, cb.Buf)

	// Toggled off entirely, nothing is drawn regardless of the count.
	cb.Reset()
	tr.SetEnabled(false)
	tr.GenerateCommands(&cb)
	assert.Empty(t, cb.Buf)
}
