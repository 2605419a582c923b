// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import "errors"

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNilFactory is returned by Register for a nil factory.
	ErrNilFactory = errors.New("backend: factory is nil")
)

// Backend names.
const (
	// BackendGL is the OpenGL 4.1 core backend.
	BackendGL = "gl"

	// BackendRecord is the command-recording backend.
	BackendRecord = "record"
)
