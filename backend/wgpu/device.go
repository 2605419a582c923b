// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/compositor"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device errors.
var (
	// ErrNilHALDevice is returned when creating a device without a HAL device.
	ErrNilHALDevice = errors.New("wgpu: hal device is nil")

	// ErrNilHALQueue is returned when creating a device without a HAL queue.
	ErrNilHALQueue = errors.New("wgpu: hal queue is nil")

	// ErrProviderNotHAL is returned when a provider does not expose HAL types.
	ErrProviderNotHAL = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrUnknownObject is reported when a command names an object that does
	// not exist.
	ErrUnknownObject = errors.New("wgpu: unknown object")

	// ErrNoBinding is reported when a command needs a binding that is not set.
	ErrNoBinding = errors.New("wgpu: nothing bound")

	// ErrNoRenderPass is reported when DrawElements runs with no current pass.
	ErrNoRenderPass = errors.New("wgpu: no render pass set")

	// ErrUnsupported is reported for attribute formats, topologies or index
	// types the HAL translation does not cover.
	ErrUnsupported = errors.New("wgpu: unsupported")
)

// copyBufferAlignment is the WebGPU size alignment for buffer writes.
const copyBufferAlignment uint64 = 4

// PassEncoder is the part of hal.RenderPassEncoder used to replay draws.
type PassEncoder interface {
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

// buffer is one emulated buffer object.
type buffer struct {
	raw   hal.Buffer
	size  uint64
	label string
}

// vertexArray is the state captured by one emulated vertex array object.
type vertexArray struct {
	// slots lists source buffers in first-use order; slot i is bound to
	// vertex buffer index i at draw time.
	slots   []compositor.Handle
	strides []uint64
	attribs [][]gputypes.VertexAttribute

	elements compositor.Handle
}

// Device implements compositor.Device on a HAL device and queue.
//
// Thread Safety:
// Device is NOT safe for concurrent use. All calls must come from the
// goroutine recording the current render pass.
type Device struct {
	device hal.Device
	queue  hal.Queue
	pass   PassEncoder

	next         compositor.Handle
	buffers      map[compositor.Handle]*buffer
	vertexArrays map[compositor.Handle]*vertexArray

	boundVAO   compositor.Handle
	boundArray compositor.Handle
	elements   compositor.Handle

	err error
}

var (
	_ compositor.Device        = (*Device)(nil)
	_ compositor.ErrorReporter = (*Device)(nil)
	_ compositor.Labeler       = (*Device)(nil)
)

// New creates a Device on an existing HAL device and queue. The device
// and queue stay owned by the caller.
func New(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil {
		return nil, ErrNilHALDevice
	}
	if queue == nil {
		return nil, ErrNilHALQueue
	}
	return &Device{
		device:       device,
		queue:        queue,
		buffers:      make(map[compositor.Handle]*buffer),
		vertexArrays: make(map[compositor.Handle]*vertexArray),
	}, nil
}

// FromProvider creates a Device sharing the host application's GPU device.
// The provider must also expose HalDevice() and HalQueue() returning
// hal.Device and hal.Queue.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}
	return New(device, queue)
}

// SetRenderPass sets the pass DrawElements records into. Pass nil once the
// pass has ended.
func (d *Device) SetRenderPass(pass PassEncoder) {
	d.pass = pass
}

// GenVertexArray allocates an emulated vertex array.
func (d *Device) GenVertexArray() compositor.Handle {
	d.next++
	d.vertexArrays[d.next] = &vertexArray{}
	return d.next
}

// GenBuffer allocates a buffer name. The HAL buffer is created by BufferData.
func (d *Device) GenBuffer() compositor.Handle {
	d.next++
	d.buffers[d.next] = &buffer{}
	return d.next
}

// BindVertexArray makes vao current.
func (d *Device) BindVertexArray(vao compositor.Handle) {
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
	default:
		d.setErr(fmt.Errorf("%w: buffer target %v", ErrUnsupported, target))
	}
}

// BufferData creates the HAL buffer for the buffer bound to target and
// uploads data into it, replacing any previous HAL buffer.
func (d *Device) BufferData(target compositor.BufferTarget, data []byte, _ compositor.BufferUsage) {
	h := d.binding(target)
	b := d.buffers[h]
	if b == nil {
		d.setErr(fmt.Errorf("%w: buffer data on %v", ErrNoBinding, target))
		return
	}

	if b.raw != nil {
		d.device.DestroyBuffer(b.raw)
		b.raw = nil
		b.size = 0
	}
	if len(data) == 0 {
		return
	}

	usage := gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst
	if target == compositor.ElementArrayBuffer {
		usage = gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst
	}

	// Writes must cover a multiple of 4 bytes.
	size := uint64(len(data))
	aligned := (size + copyBufferAlignment - 1) &^ (copyBufferAlignment - 1)
	if aligned != size {
		padded := make([]byte, aligned)
		copy(padded, data)
		data = padded
	}

	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  aligned,
		Usage: usage,
	})
	if err != nil {
		d.setErr(fmt.Errorf("wgpu: create buffer %d: %w", h, err))
		return
	}
	d.queue.WriteBuffer(raw, 0, data)

	b.raw = raw
	b.size = size
	compositor.Logger().Debug("wgpu: buffer uploaded",
		slog.Uint64("handle", uint64(h)),
		slog.String("target", target.String()),
		slog.Uint64("size", size))
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

// VertexAttribPointer records attr in the bound vertex array under the
// slot of the bound array buffer.
func (d *Device) VertexAttribPointer(attr compositor.VertexAttrib) {
	va := d.vertexArrays[d.boundVAO]
	if va == nil {
		d.setErr(fmt.Errorf("%w: vertex attribute %d without vertex array", ErrNoBinding, attr.Location))
		return
	}
	if !d.boundArray.IsValid() {
		d.setErr(fmt.Errorf("%w: vertex attribute %d without array buffer", ErrNoBinding, attr.Location))
		return
	}
	format, ok := floatFormat(attr.Components)
	if !ok {
		d.setErr(fmt.Errorf("%w: %d float components", ErrUnsupported, attr.Components))
		return
	}

	slot := -1
	for i, src := range va.slots {
		if src == d.boundArray {
			slot = i
			break
		}
	}
	if slot < 0 {
		va.slots = append(va.slots, d.boundArray)
		va.strides = append(va.strides, uint64(attr.Stride))
		va.attribs = append(va.attribs, nil)
		slot = len(va.slots) - 1
	}
	va.strides[slot] = uint64(attr.Stride)

	// Re-pointing a location replaces it, whichever slot held it.
	for i := range va.attribs {
		va.attribs[i] = removeLocation(va.attribs[i], attr.Location)
	}
	va.attribs[slot] = append(va.attribs[slot], gputypes.VertexAttribute{
		Format:         format,
		Offset:         uint64(attr.Offset),
		ShaderLocation: attr.Location,
	})
}

// floatFormat maps a float component count to a vertex format.
func floatFormat(components int32) (gputypes.VertexFormat, bool) {
	switch components {
	case 1:
		return gputypes.VertexFormatFloat32, true
	case 2:
		return gputypes.VertexFormatFloat32x2, true
	case 3:
		return gputypes.VertexFormatFloat32x3, true
	case 4:
		return gputypes.VertexFormatFloat32x4, true
	}
	return gputypes.VertexFormatFloat32, false
}

// removeLocation drops the attribute at location from attrs.
func removeLocation(attrs []gputypes.VertexAttribute, location uint32) []gputypes.VertexAttribute {
	out := attrs[:0]
	for _, a := range attrs {
		if a.ShaderLocation != location {
			out = append(out, a)
		}
	}
	return out
}

// DrawElements replays the bound vertex array on the current render pass.
func (d *Device) DrawElements(mode compositor.Primitive, count int32, typ compositor.IndexType) {
	if mode != compositor.Triangles {
		d.setErr(fmt.Errorf("%w: primitive %v", ErrUnsupported, mode))
		return
	}
	if typ != compositor.UnsignedInt {
		d.setErr(fmt.Errorf("%w: index type %v", ErrUnsupported, typ))
		return
	}
	if d.pass == nil {
		d.setErr(ErrNoRenderPass)
		return
	}
	va := d.vertexArrays[d.boundVAO]
	if va == nil {
		d.setErr(fmt.Errorf("%w: draw without vertex array", ErrNoBinding))
		return
	}
	ib := d.buffers[va.elements]
	if ib == nil || ib.raw == nil {
		d.setErr(fmt.Errorf("%w: draw without element buffer", ErrNoBinding))
		return
	}

	for slot, src := range va.slots {
		vb := d.buffers[src]
		if vb == nil || vb.raw == nil {
			d.setErr(fmt.Errorf("%w: vertex buffer %d has no storage", ErrNoBinding, src))
			return
		}
		d.pass.SetVertexBuffer(uint32(slot), vb.raw, 0)
	}
	d.pass.SetIndexBuffer(ib.raw, gputypes.IndexFormatUint32, 0)
	d.pass.DrawIndexed(uint32(count), 1, 0, 0, 0)
}

// DeleteBuffer destroys the HAL buffer and clears any binding to it.
func (d *Device) DeleteBuffer(buf compositor.Handle) {
	b, ok := d.buffers[buf]
	if !ok {
		d.setErr(fmt.Errorf("%w: delete buffer %d", ErrUnknownObject, buf))
		return
	}
	if b.raw != nil {
		d.device.DestroyBuffer(b.raw)
	}
	delete(d.buffers, buf)

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

// DeleteVertexArray drops an emulated vertex array.
func (d *Device) DeleteVertexArray(vao compositor.Handle) {
	if _, ok := d.vertexArrays[vao]; !ok {
		d.setErr(fmt.Errorf("%w: delete vertex array %d", ErrUnknownObject, vao))
		return
	}
	delete(d.vertexArrays, vao)
	if d.boundVAO == vao {
		d.boundVAO = 0
	}
}

// Label sets the label used when the HAL buffer for h is created.
// Vertex arrays have no HAL object and ignore labels.
func (d *Device) Label(h compositor.Handle, label string) {
	if b, ok := d.buffers[h]; ok {
		b.label = label
	}
}

// Err returns and clears the first error recorded since the last call.
func (d *Device) Err() error {
	err := d.err
	d.err = nil
	return err
}

// setErr keeps the first error until Err is called.
func (d *Device) setErr(err error) {
	compositor.Logger().Warn("wgpu: device error", slog.Any("err", err))
	if d.err == nil {
		d.err = err
	}
}

// VertexBufferLayout returns the pipeline vertex state for vao, one
// layout per vertex buffer slot.
func (d *Device) VertexBufferLayout(vao compositor.Handle) ([]gputypes.VertexBufferLayout, bool) {
	va, ok := d.vertexArrays[vao]
	if !ok {
		return nil, false
	}
	layouts := make([]gputypes.VertexBufferLayout, len(va.slots))
	for i := range va.slots {
		layouts[i] = gputypes.VertexBufferLayout{
			ArrayStride: va.strides[i],
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  append([]gputypes.VertexAttribute(nil), va.attribs[i]...),
		}
	}
	return layouts, true
}

// Raw returns the HAL buffer behind a buffer handle, or nil if the handle
// is unknown or has no storage yet.
func (d *Device) Raw(buf compositor.Handle) hal.Buffer {
	if b, ok := d.buffers[buf]; ok {
		return b.raw
	}
	return nil
}

// LiveBuffers returns the number of buffer names not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// LiveVertexArrays returns the number of vertex arrays not yet deleted.
func (d *Device) LiveVertexArrays() int { return len(d.vertexArrays) }

// Destroy releases every HAL buffer still owned by the device. The HAL
// device and queue are not destroyed.
//
// This method is idempotent - calling it multiple times is safe.
func (d *Device) Destroy() {
	for h, b := range d.buffers {
		if b.raw != nil {
			d.device.DestroyBuffer(b.raw)
		}
		delete(d.buffers, h)
	}
	for h := range d.vertexArrays {
		delete(d.vertexArrays, h)
	}
	d.boundVAO, d.boundArray, d.elements = 0, 0, 0
	d.pass = nil
}
