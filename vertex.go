// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"encoding/binary"
	"math"
)

// Interleaved vertex layout. Per vertex:
//
//	position  (vec3<f32>) = 12 bytes  (location 0)
//	tex_coord (vec2<f32>) =  8 bytes  (location 1)
//
// Total = 20 bytes per vertex.
const (
	// FloatsPerVertex is the number of float32 values per vertex.
	FloatsPerVertex = 5

	// VertexStride is the byte stride between consecutive vertices.
	VertexStride = FloatsPerVertex * 4

	// PositionLocation is the shader location of the position attribute.
	PositionLocation = 0

	// TexCoordLocation is the shader location of the texture coordinate.
	TexCoordLocation = 1

	positionComponents = 3
	texCoordComponents = 2
	texCoordOffset     = positionComponents * 4
)

// Vertex is one corner of a rectangle: a clip-space position and the
// matching point in texture space.
type Vertex struct {
	// Position in clip space, each component in [-1, 1].
	X, Y, Z float32

	// Texture coordinates, each in [0, 1].
	U, V float32
}

// FlattenVertices packs vertices into the interleaved float layout
// accepted by NewRectGeometry.
func FlattenVertices(vertices []Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*FloatsPerVertex)
	for _, v := range vertices {
		out = append(out, v.X, v.Y, v.Z, v.U, v.V)
	}
	return out
}

// VertexLayout returns the attribute descriptors for the interleaved
// layout, in location order.
func VertexLayout() []VertexAttrib {
	return []VertexAttrib{
		{Location: PositionLocation, Components: positionComponents, Stride: VertexStride, Offset: 0},
		{Location: TexCoordLocation, Components: texCoordComponents, Stride: VertexStride, Offset: texCoordOffset},
	}
}

// float32Bytes encodes floats as little-endian bytes for upload.
func float32Bytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	buf := make([]byte, len(data)*4)
	for i, f := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// uint32Bytes encodes indices as little-endian bytes for upload.
func uint32Bytes(data []uint32) []byte {
	if len(data) == 0 {
		return nil
	}
	buf := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}
