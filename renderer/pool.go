// renderer/pool.go
// Copyright(c) 2025 flightglobe contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"sync"
)

// Command buffers are transiently assembled every frame and can grow to
// many megabytes with tens of thousands of instances, so they are pooled
// rather than reallocated.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

// GetCommandBuffer returns a CommandBuffer from the pool, ready for use.
func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

// ReturnCommandBuffer resets the CommandBuffer and returns it to the pool,
// keeping its backing storage for the next frame.
func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}
