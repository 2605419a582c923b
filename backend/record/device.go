// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package record provides a compositor.Device that records every command
// instead of talking to a GPU.
//
// The recorder keeps just enough OpenGL state (live objects, bindings,
// vertex-array contents) to report misuse the way a driver would: deleting
// an object twice, drawing without an element buffer, or drawing past the
// end of the index data all set the error returned by Err.
//
// It registers itself as the "record" backend.
package record

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend"
)

func init() {
	backend.Register(backend.BackendRecord, func() (compositor.Device, error) {
		return New(), nil
	})
}

// Recorder errors reported through Err.
var (
	// ErrUnknownObject is recorded when a command names an object that
	// was never created or has been deleted.
	ErrUnknownObject = errors.New("record: unknown object")

	// ErrNoBinding is recorded when a command needs a binding that is not set.
	ErrNoBinding = errors.New("record: nothing bound")

	// ErrDrawOutOfRange is recorded when a draw reads past the index data.
	ErrDrawOutOfRange = errors.New("record: draw exceeds index buffer")
)

// vertexArray is the state captured by one vertex array object.
type vertexArray struct {
	attribs  []compositor.VertexAttrib
	sources  []compositor.Handle
	elements compositor.Handle
}

// Device records commands and tracks object state. The zero value is not
// usable; create devices with New.
//
// Device is NOT safe for concurrent use, like the contexts it stands in for.
type Device struct {
	commands []Command

	next         compositor.Handle
	buffers      map[compositor.Handle][]byte
	vertexArrays map[compositor.Handle]*vertexArray
	labels       map[compositor.Handle]string

	boundVAO   compositor.Handle
	boundArray compositor.Handle

	// elements is the element buffer binding used while no vertex array
	// is bound.
	elements compositor.Handle

	failAlloc bool
	failOn    map[Op]error
	err       error
}

var (
	_ compositor.Device        = (*Device)(nil)
	_ compositor.ErrorReporter = (*Device)(nil)
	_ compositor.Labeler       = (*Device)(nil)
)

// New creates an empty recorder.
func New() *Device {
	return &Device{
		buffers:      make(map[compositor.Handle][]byte),
		vertexArrays: make(map[compositor.Handle]*vertexArray),
		labels:       make(map[compositor.Handle]string),
	}
}

// GenVertexArray allocates a vertex array object.
func (d *Device) GenVertexArray() compositor.Handle {
	h := d.alloc()
	if h.IsValid() {
		d.vertexArrays[h] = &vertexArray{}
	}
	d.record(Command{Op: OpGenVertexArray, Handle: h})
	return h
}

// GenBuffer allocates a buffer object with no storage.
func (d *Device) GenBuffer() compositor.Handle {
	h := d.alloc()
	if h.IsValid() {
		d.buffers[h] = nil
	}
	d.record(Command{Op: OpGenBuffer, Handle: h})
	return h
}

// alloc returns the next object name, or zero when allocation failure is
// being simulated.
func (d *Device) alloc() compositor.Handle {
	if d.failAlloc {
		d.setErr(errors.New("record: out of memory"))
		return 0
	}
	d.next++
	return d.next
}

// BindVertexArray makes vao current.
func (d *Device) BindVertexArray(vao compositor.Handle) {
	d.record(Command{Op: OpBindVertexArray, Handle: vao})
	if vao.IsValid() {
		if _, ok := d.vertexArrays[vao]; !ok {
			d.setErr(fmt.Errorf("%w: bind vertex array %d", ErrUnknownObject, vao))
			return
		}
	}
	d.boundVAO = vao
}

// BindBuffer binds buf to target. Element buffer bindings are stored in
// the bound vertex array.
func (d *Device) BindBuffer(target compositor.BufferTarget, buf compositor.Handle) {
	d.record(Command{Op: OpBindBuffer, Target: target, Handle: buf})
	if buf.IsValid() {
		if _, ok := d.buffers[buf]; !ok {
			d.setErr(fmt.Errorf("%w: bind buffer %d", ErrUnknownObject, buf))
			return
		}
	}
	switch target {
	case compositor.ArrayBuffer:
		d.boundArray = buf
	case compositor.ElementArrayBuffer:
		if va := d.vertexArrays[d.boundVAO]; va != nil {
			va.elements = buf
		} else {
			d.elements = buf
		}
	}
}

// BufferData copies data into the buffer bound to target.
func (d *Device) BufferData(target compositor.BufferTarget, data []byte, usage compositor.BufferUsage) {
	stored := append([]byte(nil), data...)
	d.record(Command{Op: OpBufferData, Target: target, Usage: usage, Data: stored})

	buf := d.binding(target)
	if !buf.IsValid() {
		d.setErr(fmt.Errorf("%w: buffer data on %v", ErrNoBinding, target))
		return
	}
	d.buffers[buf] = stored
}

// binding returns the buffer currently bound to target.
func (d *Device) binding(target compositor.BufferTarget) compositor.Handle {
	switch target {
	case compositor.ArrayBuffer:
		return d.boundArray
	case compositor.ElementArrayBuffer:
		if va := d.vertexArrays[d.boundVAO]; va != nil {
			return va.elements
		}
		return d.elements
	}
	return 0
}

// VertexAttribPointer records attr on the bound vertex array, sourcing
// the bound array buffer.
func (d *Device) VertexAttribPointer(attr compositor.VertexAttrib) {
	d.record(Command{Op: OpVertexAttribPointer, Attrib: attr})

	va := d.vertexArrays[d.boundVAO]
	if va == nil {
		d.setErr(fmt.Errorf("%w: vertex attribute %d without vertex array", ErrNoBinding, attr.Location))
		return
	}
	if !d.boundArray.IsValid() {
		d.setErr(fmt.Errorf("%w: vertex attribute %d without array buffer", ErrNoBinding, attr.Location))
		return
	}
	for i, a := range va.attribs {
		if a.Location == attr.Location {
			va.attribs[i] = attr
			va.sources[i] = d.boundArray
			return
		}
	}
	va.attribs = append(va.attribs, attr)
	va.sources = append(va.sources, d.boundArray)
}

// DrawElements records a draw and checks that it stays inside the bound
// element buffer.
func (d *Device) DrawElements(mode compositor.Primitive, count int32, typ compositor.IndexType) {
	d.record(Command{Op: OpDrawElements, Handle: d.boundVAO, Mode: mode, Count: count, Type: typ})

	va := d.vertexArrays[d.boundVAO]
	if va == nil {
		d.setErr(fmt.Errorf("%w: draw without vertex array", ErrNoBinding))
		return
	}
	if !va.elements.IsValid() {
		d.setErr(fmt.Errorf("%w: draw without element buffer", ErrNoBinding))
		return
	}
	if need := int(count) * 4; need > len(d.buffers[va.elements]) {
		d.setErr(fmt.Errorf("%w: %d indices, buffer holds %d bytes",
			ErrDrawOutOfRange, count, len(d.buffers[va.elements])))
	}
}

// DeleteBuffer releases a buffer object and clears any binding to it.
func (d *Device) DeleteBuffer(buf compositor.Handle) {
	d.record(Command{Op: OpDeleteBuffer, Handle: buf})
	if _, ok := d.buffers[buf]; !ok {
		d.setErr(fmt.Errorf("%w: delete buffer %d", ErrUnknownObject, buf))
		return
	}
	delete(d.buffers, buf)
	delete(d.labels, buf)
	if d.boundArray == buf {
		d.boundArray = 0
	}
	if d.elements == buf {
		d.elements = 0
	}
	if va := d.vertexArrays[d.boundVAO]; va != nil && va.elements == buf {
		va.elements = 0
	}
}

// DeleteVertexArray releases a vertex array object, unbinding it if current.
func (d *Device) DeleteVertexArray(vao compositor.Handle) {
	d.record(Command{Op: OpDeleteVertexArray, Handle: vao})
	if _, ok := d.vertexArrays[vao]; !ok {
		d.setErr(fmt.Errorf("%w: delete vertex array %d", ErrUnknownObject, vao))
		return
	}
	delete(d.vertexArrays, vao)
	delete(d.labels, vao)
	if d.boundVAO == vao {
		d.boundVAO = 0
	}
}

// Label attaches a debug label to an object.
func (d *Device) Label(h compositor.Handle, label string) {
	d.record(Command{Op: OpLabel, Handle: h, Label: label})
	d.labels[h] = label
}

// Err returns and clears the first error recorded since the last call.
func (d *Device) Err() error {
	err := d.err
	d.err = nil
	return err
}

// setErr keeps the first error, like glGetError's sticky flag.
func (d *Device) setErr(err error) {
	compositor.Logger().Debug("record: device error", slog.Any("err", err))
	if d.err == nil {
		d.err = err
	}
}

// record appends a command to the log and raises any error armed for its
// op with FailOn.
func (d *Device) record(c Command) {
	d.commands = append(d.commands, c)
	if err, ok := d.failOn[c.Op]; ok {
		delete(d.failOn, c.Op)
		d.setErr(err)
	}
}

// FailAllocations makes GenVertexArray and GenBuffer return zero and
// record an out-of-memory error while enabled.
func (d *Device) FailAllocations(fail bool) {
	d.failAlloc = fail
}

// InjectError sets the error returned by the next Err call, simulating a
// driver fault such as a lost context.
func (d *Device) InjectError(err error) {
	d.setErr(err)
}

// FailOn records err the next time a command with op is issued, simulating
// a driver fault in the middle of a command sequence.
func (d *Device) FailOn(op Op, err error) {
	if d.failOn == nil {
		d.failOn = make(map[Op]error)
	}
	d.failOn[op] = err
}

// Commands returns a copy of the recorded command log.
func (d *Device) Commands() []Command {
	return append([]Command(nil), d.commands...)
}

// Ops returns the operation of every recorded command, in order.
func (d *Device) Ops() []Op {
	ops := make([]Op, len(d.commands))
	for i, c := range d.commands {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many commands with the given op were recorded.
func (d *Device) Count(op Op) int {
	n := 0
	for _, c := range d.commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the command log. Object state is kept.
func (d *Device) Reset() {
	d.commands = d.commands[:0]
}

// LiveBuffers returns the number of buffers not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// LiveVertexArrays returns the number of vertex arrays not yet deleted.
func (d *Device) LiveVertexArrays() int { return len(d.vertexArrays) }

// BufferContents returns a copy of a buffer's storage.
func (d *Device) BufferContents(buf compositor.Handle) ([]byte, bool) {
	data, ok := d.buffers[buf]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// VertexArrayState returns the attributes and element buffer captured by
// a vertex array.
func (d *Device) VertexArrayState(vao compositor.Handle) (attribs []compositor.VertexAttrib, elements compositor.Handle, ok bool) {
	va, ok := d.vertexArrays[vao]
	if !ok {
		return nil, 0, false
	}
	return append([]compositor.VertexAttrib(nil), va.attribs...), va.elements, true
}

// AttribSource returns the array buffer an attribute of vao reads from.
func (d *Device) AttribSource(vao compositor.Handle, location uint32) (compositor.Handle, bool) {
	va, ok := d.vertexArrays[vao]
	if !ok {
		return 0, false
	}
	for i, a := range va.attribs {
		if a.Location == location {
			return va.sources[i], true
		}
	}
	return 0, false
}

// ObjectLabel returns the debug label of an object.
func (d *Device) ObjectLabel(h compositor.Handle) string {
	return d.labels[h]
}

// BoundVertexArray returns the current vertex array binding.
func (d *Device) BoundVertexArray() compositor.Handle { return d.boundVAO }

// String returns the command log, one command per line.
func (d *Device) String() string {
	var b strings.Builder
	for i, c := range d.commands {
		fmt.Fprintf(&b, "%3d  %s\n", i, c)
	}
	return b.String()
}
