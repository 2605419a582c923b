// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gl implements compositor.Device on OpenGL 4.1 core profile.
//
// The device issues calls against whatever context is current on the
// calling OS thread; it never creates or switches contexts. Lock the
// goroutine to its thread (runtime.LockOSThread) before making a context
// current and keep every compositor call on that goroutine.
//
// Importing the package registers the "gl" backend:
//
//	import _ "github.com/gogpu/compositor/backend/gl"
//
//	glfw.MakeContextCurrent(window)
//	dev, err := backend.Open("gl")
package gl

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend"
)

func init() {
	backend.Register(backend.BackendGL, func() (compositor.Device, error) {
		return New()
	})
}

// Device issues compositor commands to the current OpenGL context.
type Device struct {
	version string
}

var (
	_ compositor.Device        = (*Device)(nil)
	_ compositor.ErrorReporter = (*Device)(nil)
)

// New loads the OpenGL entry points for the current context.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: init: %w", err)
	}
	version := gl.GoStr(gl.GetString(gl.VERSION))
	compositor.Logger().Info("gl: context ready", slog.String("version", version))
	return &Device{version: version}, nil
}

// Version returns the GL_VERSION string of the context.
func (d *Device) Version() string { return d.version }

// GenVertexArray allocates a vertex array object.
func (d *Device) GenVertexArray() compositor.Handle {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return compositor.Handle(vao)
}

// GenBuffer allocates a buffer object.
func (d *Device) GenBuffer() compositor.Handle {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return compositor.Handle(buf)
}

// BindVertexArray makes vao current.
func (d *Device) BindVertexArray(vao compositor.Handle) {
	gl.BindVertexArray(uint32(vao))
}

// BindBuffer binds buf to target.
func (d *Device) BindBuffer(target compositor.BufferTarget, buf compositor.Handle) {
	gl.BindBuffer(bufferTarget(target), uint32(buf))
}

// BufferData uploads data into the buffer bound to target.
func (d *Device) BufferData(target compositor.BufferTarget, data []byte, usage compositor.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(bufferTarget(target), len(data), gl.Ptr(data), bufferUsage(usage))
}

// VertexAttribPointer points a float attribute at the bound array buffer
// and enables it.
func (d *Device) VertexAttribPointer(attr compositor.VertexAttrib) {
	gl.VertexAttribPointer(attr.Location, attr.Components, gl.FLOAT, false, attr.Stride, gl.PtrOffset(int(attr.Offset)))
	gl.EnableVertexAttribArray(attr.Location)
}

// DrawElements draws from the bound element buffer at offset zero.
func (d *Device) DrawElements(mode compositor.Primitive, count int32, typ compositor.IndexType) {
	gl.DrawElements(primitive(mode), count, indexType(typ), nil)
}

// DeleteBuffer releases a buffer object.
func (d *Device) DeleteBuffer(buf compositor.Handle) {
	id := uint32(buf)
	gl.DeleteBuffers(1, &id)
}

// DeleteVertexArray releases a vertex array object.
func (d *Device) DeleteVertexArray(vao compositor.Handle) {
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

// Err drains the GL error queue and returns the first error, if any.
func (d *Device) Err() error {
	var first error
	// glGetError can report several flags; bound the loop in case the
	// context is lost and keeps reporting.
	for range 16 {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if first == nil {
			first = &Error{Code: code}
		}
	}
	return first
}

// Error is an OpenGL error flag returned by glGetError.
type Error struct {
	Code uint32
}

// Error returns the GL enum name of the flag.
func (e *Error) Error() string {
	return "gl: " + errorName(e.Code)
}

// errorName maps glGetError codes to their enum names.
func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("0x%04X", code)
	}
}
