// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"fmt"
	"log/slog"
	"slices"
)

// noCopy may be embedded into structs which must not be copied after
// first use. go vet's copylocks check reports copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// RectGeometry owns the GPU objects describing one textured rectangle:
// a vertex array, a vertex buffer and an index buffer.
//
// Either all three objects are live, or the geometry is empty (moved-from
// or destroyed) and every method except the accessors is a no-op. A nil
// *RectGeometry behaves like an empty one.
//
// Thread Safety:
// RectGeometry is NOT safe for concurrent use and performs no locking.
// All calls must happen on the thread owning the device's context.
//
// Lifecycle:
//  1. Create via NewRectGeometry (data is uploaded immediately)
//  2. Bind / Draw any number of times, moving it with SetPlacement or
//     UpdateVertices between frames if needed
//  3. Transfer with Move or MoveFrom if ownership changes hands
//  4. Call Destroy when the rectangle is no longer needed
//
// State Machine:
//
//	Usable -> Destroy() / Move() -> Empty
type RectGeometry struct {
	noCopy noCopy

	dev Device

	vao Handle
	vbo Handle
	ibo Handle

	// indexCount is the number of indices consumed by Draw.
	indexCount int32

	// maxIndex is the largest index uploaded; vertex updates must keep
	// it in range.
	maxIndex uint32

	validate bool
	usage    BufferUsage
	label    string
}

// NewRectGeometry uploads vertices and indices to dev and returns the
// geometry owning the resulting GPU objects.
//
// vertices holds FloatsPerVertex values per vertex (x, y, z, u, v); indices
// is a triangle list referencing those vertices. Both slices are copied
// and may be reused by the caller.
//
// Returns an error if:
//   - dev is nil
//   - validation is enabled and the vertex length is not a multiple of
//     FloatsPerVertex, indices is empty, or an index is out of range
//   - dev fails to allocate an object or reports an error via ErrorReporter
//     while uploading (errors pending before the call are discarded)
func NewRectGeometry(dev Device, vertices []float32, indices []uint32, opts ...Option) (*RectGeometry, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.validate {
		if err := validateGeometry(vertices, indices); err != nil {
			return nil, err
		}
	}

	r := &RectGeometry{
		dev:      dev,
		maxIndex: slices.Max(append([]uint32{0}, indices...)),
		validate: o.validate,
		usage:    o.usage,
		label:    o.label,
	}
	labeler, _ := dev.(Labeler)
	reporter, _ := dev.(ErrorReporter)
	drainErrors(reporter)

	r.vao = dev.GenVertexArray()
	if !r.vao.IsValid() {
		return nil, fmt.Errorf("%w: vertex array allocation failed", ErrDriverFault)
	}
	dev.BindVertexArray(r.vao)

	r.vbo = dev.GenBuffer()
	if !r.vbo.IsValid() {
		r.Destroy()
		return nil, fmt.Errorf("%w: vertex buffer allocation failed", ErrDriverFault)
	}
	if labeler != nil && o.label != "" {
		labeler.Label(r.vbo, o.label+" vertices")
	}
	dev.BindBuffer(ArrayBuffer, r.vbo)
	dev.BufferData(ArrayBuffer, float32Bytes(vertices), o.usage)

	for _, attr := range VertexLayout() {
		dev.VertexAttribPointer(attr)
	}

	r.ibo = dev.GenBuffer()
	if !r.ibo.IsValid() {
		r.Destroy()
		return nil, fmt.Errorf("%w: index buffer allocation failed", ErrDriverFault)
	}
	if labeler != nil && o.label != "" {
		labeler.Label(r.ibo, o.label+" indices")
	}
	dev.BindBuffer(ElementArrayBuffer, r.ibo)
	dev.BufferData(ElementArrayBuffer, uint32Bytes(indices), o.usage)

	r.indexCount = int32(len(indices))

	if reporter != nil {
		if err := reporter.Err(); err != nil {
			Logger().Warn("compositor: geometry upload failed",
				slog.String("label", r.label),
				slog.Any("err", err))
			r.Destroy()
			return nil, fmt.Errorf("%w: upload: %w", ErrDriverFault, err)
		}
	}

	Logger().Debug("compositor: geometry created",
		slog.String("label", r.label),
		slog.Uint64("vao", uint64(r.vao)),
		slog.Uint64("vbo", uint64(r.vbo)),
		slog.Uint64("ibo", uint64(r.ibo)),
		slog.Int("vertices", len(vertices)/FloatsPerVertex),
		slog.Int("indices", len(indices)))

	return r, nil
}

// NewPlacedRect creates the geometry for a video placed inside an output
// frame of outWidth x outHeight pixels, drawn with QuadIndices.
func NewPlacedRect(dev Device, p Placement, outWidth, outHeight int, opts ...Option) (*RectGeometry, error) {
	vertices, err := p.Vertices(outWidth, outHeight)
	if err != nil {
		return nil, err
	}
	return NewRectGeometry(dev, FlattenVertices(vertices), QuadIndices, opts...)
}

// drainErrors discards errors left on the device by earlier calls, so a
// later Err reports only what happened in between.
func drainErrors(reporter ErrorReporter) {
	if reporter == nil {
		return
	}
	if err := reporter.Err(); err != nil {
		Logger().Debug("compositor: discarded pending device error", slog.Any("err", err))
	}
}

// validateGeometry checks the caller contract on vertex and index data.
func validateGeometry(vertices []float32, indices []uint32) error {
	if len(vertices)%FloatsPerVertex != 0 {
		return fmt.Errorf("%w: got %d floats", ErrVertexStride, len(vertices))
	}
	if len(indices) == 0 {
		return ErrNoIndices
	}
	vertexCount := uint32(len(vertices) / FloatsPerVertex)
	for i, idx := range indices {
		if idx >= vertexCount {
			return fmt.Errorf("%w: indices[%d] = %d, vertex count %d",
				ErrIndexOutOfRange, i, idx, vertexCount)
		}
	}
	return nil
}

// Bind makes the geometry's vertex array current for subsequent draw
// calls. This changes context-wide binding state shared by every geometry
// on the device.
func (r *RectGeometry) Bind() {
	if !r.Valid() {
		return
	}
	r.dev.BindVertexArray(r.vao)
}

// Draw binds the geometry and draws all of its indices as a triangle list.
// Shader program, textures and uniforms must already be bound by the
// caller.
func (r *RectGeometry) Draw() {
	if !r.Valid() {
		return
	}
	r.Bind()
	r.dev.DrawElements(Triangles, r.indexCount, UnsignedInt)
}

// UpdateVertices replaces the vertex data, keeping every handle and the
// index buffer. Use it with WithUsage(DynamicDraw) when a rectangle moves
// between frames. It is a no-op on an empty geometry.
//
// With validation enabled, vertices must hold a multiple of FloatsPerVertex
// values and cover every uploaded index.
func (r *RectGeometry) UpdateVertices(vertices []float32) error {
	if !r.Valid() {
		return nil
	}
	if r.validate {
		if len(vertices)%FloatsPerVertex != 0 {
			return fmt.Errorf("%w: got %d floats", ErrVertexStride, len(vertices))
		}
		if vertexCount := uint32(len(vertices) / FloatsPerVertex); r.maxIndex >= vertexCount {
			return fmt.Errorf("%w: index %d, vertex count %d",
				ErrIndexOutOfRange, r.maxIndex, vertexCount)
		}
	}

	reporter, _ := r.dev.(ErrorReporter)
	drainErrors(reporter)

	r.dev.BindVertexArray(r.vao)
	r.dev.BindBuffer(ArrayBuffer, r.vbo)
	r.dev.BufferData(ArrayBuffer, float32Bytes(vertices), r.usage)

	if reporter != nil {
		if err := reporter.Err(); err != nil {
			Logger().Warn("compositor: vertex update failed",
				slog.String("label", r.label),
				slog.Any("err", err))
			return fmt.Errorf("%w: update: %w", ErrDriverFault, err)
		}
	}
	return nil
}

// SetPlacement moves the rectangle to p inside an output frame of
// outWidth x outHeight pixels. The geometry must have been built with
// QuadIndices, as NewPlacedRect does.
func (r *RectGeometry) SetPlacement(p Placement, outWidth, outHeight int) error {
	vertices, err := p.Vertices(outWidth, outHeight)
	if err != nil {
		return err
	}
	return r.UpdateVertices(FlattenVertices(vertices))
}

// Move transfers ownership of the GPU objects to a new geometry and
// leaves r empty. Moving from nil returns an empty geometry.
func (r *RectGeometry) Move() *RectGeometry {
	m := &RectGeometry{}
	if r != nil {
		m.take(r)
	}
	return m
}

// MoveFrom releases the objects r currently owns and takes ownership of
// src's objects, leaving src empty. r.MoveFrom(r) is a no-op.
func (r *RectGeometry) MoveFrom(src *RectGeometry) {
	if r == nil || r == src || src == nil {
		return
	}
	r.Destroy()
	r.take(src)
}

// take moves every field from src into r and clears src.
func (r *RectGeometry) take(src *RectGeometry) {
	r.dev = src.dev
	r.vao, r.vbo, r.ibo = src.vao, src.vbo, src.ibo
	r.indexCount = src.indexCount
	r.maxIndex = src.maxIndex
	r.validate, r.usage = src.validate, src.usage
	r.label = src.label

	src.vao, src.vbo, src.ibo = 0, 0, 0
	src.indexCount = 0
	src.maxIndex = 0
}

// Destroy releases the index buffer, the vertex buffer and the vertex
// array, in that order. Objects that are already released are skipped.
//
// This method is idempotent - calling it multiple times is safe.
func (r *RectGeometry) Destroy() {
	if r == nil || r.dev == nil {
		return
	}
	released := r.vao.IsValid() || r.vbo.IsValid() || r.ibo.IsValid()

	if r.ibo.IsValid() {
		r.dev.DeleteBuffer(r.ibo)
		r.ibo = 0
	}
	if r.vbo.IsValid() {
		r.dev.DeleteBuffer(r.vbo)
		r.vbo = 0
	}
	if r.vao.IsValid() {
		r.dev.DeleteVertexArray(r.vao)
		r.vao = 0
	}
	r.indexCount = 0

	if released {
		Logger().Debug("compositor: geometry destroyed", slog.String("label", r.label))
	}
}

// Valid reports whether r owns live GPU objects.
func (r *RectGeometry) Valid() bool {
	return r != nil && r.dev != nil &&
		r.vao.IsValid() && r.vbo.IsValid() && r.ibo.IsValid()
}

// IndexCount returns the number of indices consumed by Draw, or zero for
// an empty geometry.
func (r *RectGeometry) IndexCount() int {
	if r == nil {
		return 0
	}
	return int(r.indexCount)
}

// VertexArray returns the vertex array handle, or zero when empty.
// Callers issuing their own draw calls may bind it directly.
func (r *RectGeometry) VertexArray() Handle {
	if r == nil {
		return 0
	}
	return r.vao
}

// VertexBuffer returns the vertex buffer handle, or zero when empty.
func (r *RectGeometry) VertexBuffer() Handle {
	if r == nil {
		return 0
	}
	return r.vbo
}

// IndexBuffer returns the index buffer handle, or zero when empty.
func (r *RectGeometry) IndexBuffer() Handle {
	if r == nil {
		return 0
	}
	return r.ibo
}

// Label returns the debug label set with WithLabel.
func (r *RectGeometry) Label() string {
	if r == nil {
		return ""
	}
	return r.label
}

// String returns a short description for logs.
func (r *RectGeometry) String() string {
	if !r.Valid() {
		return fmt.Sprintf("RectGeometry(%q, empty)", r.Label())
	}
	return fmt.Sprintf("RectGeometry(%q, vao=%d vbo=%d ibo=%d indices=%d)",
		r.label, r.vao, r.vbo, r.ibo, r.indexCount)
}
