// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import "fmt"

// Handle is an opaque GPU object name. Zero is never a valid object.
type Handle uint32

// IsValid reports whether h names a GPU object.
func (h Handle) IsValid() bool { return h != 0 }

// BufferTarget selects the binding point a buffer is attached to.
type BufferTarget int

const (
	// ArrayBuffer holds per-vertex attribute data.
	ArrayBuffer BufferTarget = iota
	// ElementArrayBuffer holds vertex indices. Binding one while a vertex
	// array is bound records it in that vertex array.
	ElementArrayBuffer
)

// String returns the string representation of BufferTarget.
func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "ArrayBuffer"
	case ElementArrayBuffer:
		return "ElementArrayBuffer"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// BufferUsage hints how often buffer contents change.
type BufferUsage int

const (
	// StaticDraw data is uploaded once and drawn many times.
	StaticDraw BufferUsage = iota
	// DynamicDraw data is rewritten often and drawn many times.
	DynamicDraw
)

// String returns the string representation of BufferUsage.
func (u BufferUsage) String() string {
	switch u {
	case StaticDraw:
		return "StaticDraw"
	case DynamicDraw:
		return "DynamicDraw"
	default:
		return fmt.Sprintf("Unknown(%d)", int(u))
	}
}

// Primitive is the topology used by a draw call.
type Primitive int

const (
	// Triangles interprets every three indices as one triangle.
	Triangles Primitive = iota
)

// String returns the string representation of Primitive.
func (p Primitive) String() string {
	if p == Triangles {
		return "Triangles"
	}
	return fmt.Sprintf("Unknown(%d)", int(p))
}

// IndexType is the element type of an index buffer.
type IndexType int

const (
	// UnsignedInt indices are 32-bit unsigned integers.
	UnsignedInt IndexType = iota
)

// String returns the string representation of IndexType.
func (t IndexType) String() string {
	if t == UnsignedInt {
		return "UnsignedInt"
	}
	return fmt.Sprintf("Unknown(%d)", int(t))
}

// VertexAttrib describes one float attribute inside the currently bound
// array buffer.
type VertexAttrib struct {
	// Location is the shader input location.
	Location uint32

	// Components is the number of float32 components (1-4).
	Components int32

	// Stride is the byte distance between consecutive vertices.
	Stride int32

	// Offset is the byte offset of the attribute inside a vertex.
	Offset int32
}

// Device is the GPU command stream a geometry issues calls against.
//
// The method set mirrors the OpenGL vertex-array model: attribute pointers
// and the element buffer binding are captured by the vertex array bound at
// the time of the call. Implementations need not be safe for concurrent
// use; the context must be current on the calling thread.
type Device interface {
	// GenVertexArray allocates a vertex array object.
	GenVertexArray() Handle

	// GenBuffer allocates a buffer object with no storage.
	GenBuffer() Handle

	// BindVertexArray makes vao current. Zero unbinds.
	BindVertexArray(vao Handle)

	// BindBuffer binds buf to target. Zero unbinds.
	BindBuffer(target BufferTarget, buf Handle)

	// BufferData copies data into the buffer bound to target, replacing
	// any previous storage. The slice is not retained.
	BufferData(target BufferTarget, data []byte, usage BufferUsage)

	// VertexAttribPointer points attr at the bound array buffer and
	// enables it on the bound vertex array.
	VertexAttribPointer(attr VertexAttrib)

	// DrawElements draws count indices from the bound vertex array's
	// element buffer, starting at offset zero.
	DrawElements(mode Primitive, count int32, typ IndexType)

	// DeleteBuffer releases a buffer object.
	DeleteBuffer(buf Handle)

	// DeleteVertexArray releases a vertex array object.
	DeleteVertexArray(vao Handle)
}

// ErrorReporter is implemented by devices with a queryable error state.
// Err returns and clears the first error recorded since the last call.
type ErrorReporter interface {
	Err() error
}

// Labeler is implemented by devices that attach debug labels to objects.
// Labels must be set before the object's storage is allocated.
type Labeler interface {
	Label(h Handle, label string)
}
