// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects a compositor.Device by name.
//
// Device implementations live in sub-packages and register themselves in
// init(), following the database/sql driver pattern. Importing a backend
// for its side effect makes it available:
//
//	import (
//		"github.com/gogpu/compositor/backend"
//		_ "github.com/gogpu/compositor/backend/gl"
//	)
//
//	dev, err := backend.Open("gl")
//
// # Available Backends
//
//   - "gl": OpenGL 4.1 core profile. The context must already be current
//     on the calling thread when Open is called.
//   - "record": in-memory command recorder, no GPU required.
//
// The WebGPU HAL backend (backend/wgpu) is not registered: it needs a
// device and queue from the host and is constructed with wgpu.New or
// wgpu.FromProvider instead.
//
// # Backend Selection
//
// Default opens the first registered backend in priority order
// (gl, then record):
//
//	dev, err := backend.Default()
package backend
