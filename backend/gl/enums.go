// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/compositor"
)

func bufferTarget(t compositor.BufferTarget) uint32 {
	if t == compositor.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u compositor.BufferUsage) uint32 {
	if u == compositor.DynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func primitive(compositor.Primitive) uint32 {
	return gl.TRIANGLES
}

func indexType(compositor.IndexType) uint32 {
	return gl.UNSIGNED_INT
}
