// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// QuadIndices splits a four-corner quad into two counter-clockwise
// triangles.
var QuadIndices = []uint32{
	0, 1, 2,
	2, 3, 0,
}

// UnitQuad returns a quad covering all of clip space with the full texture
// mapped onto it. Corner order is top-right, top-left, bottom-left,
// bottom-right; texture row 0 is at the top.
func UnitQuad() []Vertex {
	return []Vertex{
		{X: 1, Y: 1, Z: 0, U: 1, V: 0},
		{X: -1, Y: 1, Z: 0, U: 0, V: 0},
		{X: -1, Y: -1, Z: 0, U: 0, V: 1},
		{X: 1, Y: -1, Z: 0, U: 1, V: 1},
	}
}

// Placement positions a video inside the output frame. X, Y, Width and
// Height are pixels with the origin at the top-left corner of the output;
// Z orders overlapping videos and should be in [0, 1].
type Placement struct {
	X, Y          int
	Width, Height int
	Z             float32
}

// String returns a compact representation of the placement.
func (p Placement) String() string {
	return fmt.Sprintf("%dx%d+%d+%d z=%g", p.Width, p.Height, p.X, p.Y, p.Z)
}

// Vertices projects the placement into clip space for an output frame of
// outWidth x outHeight pixels. The corner order matches UnitQuad, so the
// result is drawn with QuadIndices. Parts outside the output are kept and
// clipped by the GPU.
func (p Placement) Vertices(outWidth, outHeight int) ([]Vertex, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidPlacement, p.Width, p.Height)
	}
	if outWidth <= 0 || outHeight <= 0 {
		return nil, fmt.Errorf("%w: output %dx%d", ErrInvalidPlacement, outWidth, outHeight)
	}

	// Pixel space has y pointing down; clip space has y pointing up.
	proj := mgl32.Ortho2D(0, float32(outWidth), float32(outHeight), 0)
	corner := func(x, y int) mgl32.Vec4 {
		return proj.Mul4x1(mgl32.Vec4{float32(x), float32(y), 0, 1})
	}

	left, right := p.X, p.X+p.Width
	top, bottom := p.Y, p.Y+p.Height

	tr := corner(right, top)
	tl := corner(left, top)
	bl := corner(left, bottom)
	br := corner(right, bottom)

	return []Vertex{
		{X: tr.X(), Y: tr.Y(), Z: p.Z, U: 1, V: 0},
		{X: tl.X(), Y: tl.Y(), Z: p.Z, U: 0, V: 0},
		{X: bl.X(), Y: bl.Y(), Z: p.Z, U: 0, V: 1},
		{X: br.X(), Y: br.Y(), Z: p.Z, U: 1, V: 1},
	}, nil
}
