// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import "errors"

// Construction errors.
var (
	// ErrNilDevice is returned when a geometry is created without a device.
	ErrNilDevice = errors.New("compositor: device is nil")

	// ErrVertexStride is returned when the vertex slice length is not a
	// multiple of FloatsPerVertex.
	ErrVertexStride = errors.New("compositor: vertex data is not a multiple of 5 floats")

	// ErrNoIndices is returned when the index slice is empty.
	ErrNoIndices = errors.New("compositor: index list is empty")

	// ErrIndexOutOfRange is returned when an index references a vertex
	// past the end of the vertex data.
	ErrIndexOutOfRange = errors.New("compositor: index out of range")

	// ErrDriverFault is returned when the device reports an error after
	// the geometry was uploaded (invalid context, out of memory).
	ErrDriverFault = errors.New("compositor: driver fault")

	// ErrInvalidPlacement is returned for placements with a non-positive
	// size or output resolution.
	ErrInvalidPlacement = errors.New("compositor: invalid placement")
)
