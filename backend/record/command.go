// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package record

import (
	"fmt"

	"github.com/gogpu/compositor"
)

// Op identifies a recorded device call.
type Op int

// Recorded operations, one per Device method.
const (
	OpGenVertexArray Op = iota
	OpGenBuffer
	OpBindVertexArray
	OpBindBuffer
	OpBufferData
	OpVertexAttribPointer
	OpDrawElements
	OpDeleteBuffer
	OpDeleteVertexArray
	OpLabel
)

var opNames = [...]string{
	OpGenVertexArray:      "GenVertexArray",
	OpGenBuffer:           "GenBuffer",
	OpBindVertexArray:     "BindVertexArray",
	OpBindBuffer:          "BindBuffer",
	OpBufferData:          "BufferData",
	OpVertexAttribPointer: "VertexAttribPointer",
	OpDrawElements:        "DrawElements",
	OpDeleteBuffer:        "DeleteBuffer",
	OpDeleteVertexArray:   "DeleteVertexArray",
	OpLabel:               "Label",
}

// String returns the string representation of Op.
func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Unknown(%d)", int(op))
}

// Command is one recorded device call. Only the fields relevant to Op
// are set.
type Command struct {
	Op Op

	// Handle is the object created, bound or deleted. For DrawElements it
	// is the vertex array bound at the time of the draw.
	Handle compositor.Handle

	Target compositor.BufferTarget
	Usage  compositor.BufferUsage

	// Data is a private copy of the uploaded bytes.
	Data []byte

	Attrib compositor.VertexAttrib

	Mode  compositor.Primitive
	Count int32
	Type  compositor.IndexType

	Label string
}

// String formats the command the way it would appear in an API trace.
func (c Command) String() string {
	switch c.Op {
	case OpGenVertexArray, OpGenBuffer:
		return fmt.Sprintf("%v() = %d", c.Op, c.Handle)
	case OpBindVertexArray, OpDeleteBuffer, OpDeleteVertexArray:
		return fmt.Sprintf("%v(%d)", c.Op, c.Handle)
	case OpBindBuffer:
		return fmt.Sprintf("%v(%v, %d)", c.Op, c.Target, c.Handle)
	case OpBufferData:
		return fmt.Sprintf("%v(%v, %d bytes, %v)", c.Op, c.Target, len(c.Data), c.Usage)
	case OpVertexAttribPointer:
		a := c.Attrib
		return fmt.Sprintf("%v(location=%d, size=%d, stride=%d, offset=%d)",
			c.Op, a.Location, a.Components, a.Stride, a.Offset)
	case OpDrawElements:
		return fmt.Sprintf("%v(%v, %d, %v) vao=%d", c.Op, c.Mode, c.Count, c.Type, c.Handle)
	case OpLabel:
		return fmt.Sprintf("%v(%d, %q)", c.Op, c.Handle, c.Label)
	default:
		return c.Op.String()
	}
}
