// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package compositor provides the GPU geometry used by a video compositor
// to place one textured rectangle per input video.
//
// # Overview
//
// A [RectGeometry] owns three GPU objects for one quad: a vertex array, a
// vertex buffer and an index buffer. The vertex and index data are uploaded
// once at construction; afterwards the compositor loop binds its own shader
// program, textures and uniforms and calls [RectGeometry.Draw] once per frame.
//
//	dev, err := backend.Open("gl") // context must be current on this thread
//	if err != nil {
//	    return err
//	}
//	quad, err := compositor.NewRectGeometry(dev,
//	    compositor.FlattenVertices(compositor.UnitQuad()),
//	    compositor.QuadIndices)
//	if err != nil {
//	    return err
//	}
//	defer quad.Destroy()
//
//	for frame := range frames {
//	    program.Use()
//	    frame.Texture.Bind()
//	    quad.Draw()
//	}
//
// # Vertex Layout
//
// Vertices are stored interleaved, five float32 values per vertex:
//
//	location 0: position  (x, y, z)  offset 0,  clip space [-1, 1]
//	location 1: tex_coord (u, v)     offset 12, texture space [0, 1]
//
// The stride is 20 bytes. Indices are uint32 and form a triangle list.
//
// # Ownership
//
// A RectGeometry is move-only. [RectGeometry.Move] and [RectGeometry.MoveFrom]
// transfer the GPU objects and leave the source empty; an empty geometry
// ignores Bind, Draw and Destroy. Geometry values must never be copied.
//
// # Threading
//
// Graphics contexts are bound to one OS thread. No method synchronizes;
// every call goes straight to the [Device] on the caller's goroutine, which
// must be the context's thread (see runtime.LockOSThread). Release is explicit
// because a finalizer would run on the wrong thread.
//
// # Backends
//
// Devices live in the backend sub-packages:
//   - backend/gl: OpenGL 4.1 core profile via go-gl
//   - backend/wgpu: WebGPU HAL via gogpu/wgpu, vertex arrays emulated
//   - backend/record: command recorder for tests and dry runs
package compositor

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
