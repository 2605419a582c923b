// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements compositor.Device on the gogpu/wgpu HAL.
//
// WebGPU has no vertex array objects; vertex layout is part of the render
// pipeline and buffers are bound per draw. This backend keeps the OpenGL
// model the compositor is written against and translates it:
//
//   - GenBuffer/BufferData create a hal.Buffer sized for the data and
//     upload it with hal.Queue.WriteBuffer. Re-uploading replaces the buffer.
//   - VertexAttribPointer records a gputypes.VertexAttribute in the bound
//     vertex array. Attributes reading the same buffer share one vertex
//     buffer slot; slots are numbered in first-use order.
//   - DrawElements replays the vertex array on the current render pass:
//     SetVertexBuffer for every slot, SetIndexBuffer with 32-bit indices,
//     then DrawIndexed.
//
// The render pipeline is owned by the caller. Build its vertex state from
// the layout the geometry produced:
//
//	layout, _ := dev.VertexBufferLayout(quad.VertexArray())
//	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
//	    Vertex: hal.VertexState{Module: shader, EntryPoint: "vs_main", Buffers: layout},
//	    ...
//	})
//
// Per frame, hand the open pass to the device before drawing:
//
//	rp := encoder.BeginRenderPass(desc)
//	rp.SetPipeline(pipeline)
//	rp.SetBindGroup(0, frameBindGroup, nil)
//	dev.SetRenderPass(rp)
//	quad.Draw()
//	dev.SetRenderPass(nil)
//	rp.End()
//
// The backend is not registered with package backend because it cannot
// create a device on its own; use New or FromProvider.
package wgpu
