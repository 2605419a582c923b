// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend/record"
)

// newUnitQuad creates the unit quad on a fresh recorder and clears the
// construction commands from the log.
func newUnitQuad(t *testing.T, opts ...compositor.Option) (*compositor.RectGeometry, *record.Device) {
	t.Helper()
	dev := record.New()
	quad, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()),
		compositor.QuadIndices, opts...)
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	dev.Reset()
	return quad, dev
}

func TestNewRectGeometryUnitQuad(t *testing.T) {
	quad, dev := newUnitQuad(t)

	if got := quad.IndexCount(); got != 6 {
		t.Errorf("IndexCount() = %d, want 6", got)
	}
	if !quad.Valid() {
		t.Fatal("expected valid geometry after construction")
	}
	if dev.LiveVertexArrays() != 1 || dev.LiveBuffers() != 2 {
		t.Errorf("live objects: %d vertex arrays, %d buffers; want 1, 2",
			dev.LiveVertexArrays(), dev.LiveBuffers())
	}
	if err := dev.Err(); err != nil {
		t.Errorf("device error after construction: %v", err)
	}

	quad.Draw()

	draws := 0
	for _, c := range dev.Commands() {
		if c.Op != record.OpDrawElements {
			continue
		}
		draws++
		if c.Mode != compositor.Triangles {
			t.Errorf("draw mode = %v, want Triangles", c.Mode)
		}
		if c.Count != 6 {
			t.Errorf("draw count = %d, want 6", c.Count)
		}
		if c.Type != compositor.UnsignedInt {
			t.Errorf("draw index type = %v, want UnsignedInt", c.Type)
		}
		if c.Handle != quad.VertexArray() {
			t.Errorf("draw used vertex array %d, want %d", c.Handle, quad.VertexArray())
		}
	}
	if draws != 1 {
		t.Errorf("expected 1 draw call, got %d", draws)
	}
	if err := dev.Err(); err != nil {
		t.Errorf("device error after draw: %v", err)
	}
}

func TestNewRectGeometryCommandSequence(t *testing.T) {
	dev := record.New()
	quad, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices)
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}

	want := []record.Op{
		record.OpGenVertexArray,
		record.OpBindVertexArray,
		record.OpGenBuffer,
		record.OpBindBuffer,
		record.OpBufferData,
		record.OpVertexAttribPointer,
		record.OpVertexAttribPointer,
		record.OpGenBuffer,
		record.OpBindBuffer,
		record.OpBufferData,
	}
	if got := dev.Ops(); !slices.Equal(got, want) {
		t.Errorf("construction ops:\n got  %v\n want %v", got, want)
	}

	attribs, elements, ok := dev.VertexArrayState(quad.VertexArray())
	if !ok {
		t.Fatal("vertex array not found on device")
	}
	if elements != quad.IndexBuffer() {
		t.Errorf("vertex array element buffer = %d, want %d", elements, quad.IndexBuffer())
	}
	wantAttribs := []compositor.VertexAttrib{
		{Location: 0, Components: 3, Stride: 20, Offset: 0},
		{Location: 1, Components: 2, Stride: 20, Offset: 12},
	}
	if !slices.Equal(attribs, wantAttribs) {
		t.Errorf("attributes = %+v, want %+v", attribs, wantAttribs)
	}
	for _, loc := range []uint32{0, 1} {
		src, ok := dev.AttribSource(quad.VertexArray(), loc)
		if !ok || src != quad.VertexBuffer() {
			t.Errorf("attribute %d source = %d, want %d", loc, src, quad.VertexBuffer())
		}
	}
}

func TestNewRectGeometryUploadsData(t *testing.T) {
	vertices := compositor.FlattenVertices(compositor.UnitQuad())
	dev := record.New()
	quad, err := compositor.NewRectGeometry(dev, vertices, compositor.QuadIndices)
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}

	vb, ok := dev.BufferContents(quad.VertexBuffer())
	if !ok {
		t.Fatal("vertex buffer missing")
	}
	if len(vb) != len(vertices)*4 {
		t.Fatalf("vertex buffer holds %d bytes, want %d", len(vb), len(vertices)*4)
	}
	for i, want := range vertices {
		got := math.Float32frombits(binary.LittleEndian.Uint32(vb[i*4:]))
		if got != want {
			t.Errorf("vertex float %d = %v, want %v", i, got, want)
		}
	}

	ib, ok := dev.BufferContents(quad.IndexBuffer())
	if !ok {
		t.Fatal("index buffer missing")
	}
	for i, want := range compositor.QuadIndices {
		if got := binary.LittleEndian.Uint32(ib[i*4:]); got != want {
			t.Errorf("index %d = %d, want %d", i, got, want)
		}
	}
}

func TestNewRectGeometryDoesNotRetainInput(t *testing.T) {
	vertices := compositor.FlattenVertices(compositor.UnitQuad())
	indices := slices.Clone(compositor.QuadIndices)
	dev := record.New()
	quad, err := compositor.NewRectGeometry(dev, vertices, indices)
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	before, _ := dev.BufferContents(quad.VertexBuffer())

	vertices[0] = 42
	indices[0] = 3

	after, _ := dev.BufferContents(quad.VertexBuffer())
	if !slices.Equal(before, after) {
		t.Error("vertex buffer changed after the caller modified its slice")
	}
}

func TestIndexCountMatchesInput(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
	}{
		{"single triangle", []uint32{0, 1, 2}},
		{"quad", []uint32{0, 1, 2, 2, 3, 0}},
		{"repeated", []uint32{0, 1, 2, 2, 3, 0, 0, 1, 2}},
	}
	vertices := compositor.FlattenVertices(compositor.UnitQuad())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quad, err := compositor.NewRectGeometry(record.New(), vertices, tt.indices)
			if err != nil {
				t.Fatalf("NewRectGeometry failed: %v", err)
			}
			if got := quad.IndexCount(); got != len(tt.indices) {
				t.Errorf("IndexCount() = %d, want %d", got, len(tt.indices))
			}
		})
	}
}

func TestNewRectGeometryValidation(t *testing.T) {
	quad := compositor.FlattenVertices(compositor.UnitQuad())
	tests := []struct {
		name     string
		vertices []float32
		indices  []uint32
		wantErr  error
	}{
		{"bad stride", quad[:7], []uint32{0}, compositor.ErrVertexStride},
		{"no indices", quad, nil, compositor.ErrNoIndices},
		{"index past end", quad, []uint32{0, 1, 4}, compositor.ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := record.New()
			_, err := compositor.NewRectGeometry(dev, tt.vertices, tt.indices)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if n := len(dev.Commands()); n != 0 {
				t.Errorf("rejected input issued %d device commands", n)
			}
		})
	}
}

func TestNewRectGeometryWithoutValidation(t *testing.T) {
	dev := record.New()
	quad, err := compositor.NewRectGeometry(dev,
		[]float32{0, 0, 0, 0, 0, 1, 1}, []uint32{0, 7, 9},
		compositor.WithValidation(false))
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	if quad.IndexCount() != 3 {
		t.Errorf("IndexCount() = %d, want 3", quad.IndexCount())
	}
}

func TestNewRectGeometryAcceptsOutOfRangeCoordinates(t *testing.T) {
	vertices := []float32{
		5, 5, 5, 2, 2,
		-5, 5, 5, -1, 2,
		-5, -5, 5, -1, -1,
	}
	_, err := compositor.NewRectGeometry(record.New(), vertices, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("out-of-range coordinates rejected: %v", err)
	}
}

func TestNewRectGeometryNilDevice(t *testing.T) {
	_, err := compositor.NewRectGeometry(nil, nil, nil)
	if !errors.Is(err, compositor.ErrNilDevice) {
		t.Errorf("error = %v, want ErrNilDevice", err)
	}
}

func TestNewRectGeometryDriverFault(t *testing.T) {
	dev := record.New()
	lost := errors.New("context lost")
	dev.FailOn(record.OpBufferData, lost)

	quad, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices)
	if !errors.Is(err, compositor.ErrDriverFault) {
		t.Fatalf("error = %v, want ErrDriverFault", err)
	}
	if !errors.Is(err, lost) {
		t.Errorf("error = %v, want it to wrap the device error", err)
	}
	if quad != nil {
		t.Error("expected nil geometry on driver fault")
	}
	if dev.LiveBuffers() != 0 || dev.LiveVertexArrays() != 0 {
		t.Errorf("leaked objects: %d buffers, %d vertex arrays",
			dev.LiveBuffers(), dev.LiveVertexArrays())
	}
}

func TestNewRectGeometryIgnoresPendingError(t *testing.T) {
	dev := record.New()
	// A stray call from elsewhere leaves an error on the device.
	dev.DeleteBuffer(99)

	quad, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices)
	if err != nil {
		t.Fatalf("NewRectGeometry failed on a pending device error: %v", err)
	}
	if !quad.Valid() {
		t.Error("expected valid geometry")
	}
	if err := dev.Err(); err != nil {
		t.Errorf("device error after construction: %v", err)
	}
}

func TestNewRectGeometryAllocationFailure(t *testing.T) {
	dev := record.New()
	dev.FailAllocations(true)

	_, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices)
	if !errors.Is(err, compositor.ErrDriverFault) {
		t.Fatalf("error = %v, want ErrDriverFault", err)
	}
	if n := dev.Count(record.OpDeleteBuffer) + dev.Count(record.OpDeleteVertexArray); n != 0 {
		t.Errorf("expected no release calls for unallocated objects, got %d", n)
	}
}

func TestDrawBindsFirst(t *testing.T) {
	quad, dev := newUnitQuad(t)

	// Another geometry leaves its own vertex array bound.
	other, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices)
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	defer other.Destroy()
	dev.Reset()

	quad.Draw()

	cmds := dev.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d:\n%s", len(cmds), dev)
	}
	if cmds[0].Op != record.OpBindVertexArray || cmds[0].Handle != quad.VertexArray() {
		t.Errorf("first command = %v, want BindVertexArray(%d)", cmds[0], quad.VertexArray())
	}
	if cmds[1].Op != record.OpDrawElements {
		t.Errorf("second command = %v, want DrawElements", cmds[1])
	}
	if cmds[1].Handle != quad.VertexArray() {
		t.Errorf("draw recorded with vertex array %d, want %d", cmds[1].Handle, quad.VertexArray())
	}
}

func TestBindAndDrawRepeatable(t *testing.T) {
	quad, dev := newUnitQuad(t)

	quad.Bind()
	quad.Draw()
	quad.Draw()
	quad.Bind()

	if got := dev.Count(record.OpDrawElements); got != 2 {
		t.Errorf("draw calls = %d, want 2", got)
	}
	if got := dev.Count(record.OpBindVertexArray); got != 4 {
		t.Errorf("bind calls = %d, want 4", got)
	}
	if dev.BoundVertexArray() != quad.VertexArray() {
		t.Errorf("bound vertex array = %d, want %d", dev.BoundVertexArray(), quad.VertexArray())
	}
}

func TestDestroyReleasesEachObjectOnce(t *testing.T) {
	quad, dev := newUnitQuad(t)
	ibo, vbo, vao := quad.IndexBuffer(), quad.VertexBuffer(), quad.VertexArray()

	quad.Destroy()
	quad.Destroy()

	cmds := dev.Commands()
	want := []record.Command{
		{Op: record.OpDeleteBuffer, Handle: ibo},
		{Op: record.OpDeleteBuffer, Handle: vbo},
		{Op: record.OpDeleteVertexArray, Handle: vao},
	}
	if len(cmds) != len(want) {
		t.Fatalf("expected %d release commands, got %d:\n%s", len(want), len(cmds), dev)
	}
	for i := range want {
		if cmds[i].Op != want[i].Op || cmds[i].Handle != want[i].Handle {
			t.Errorf("command %d = %v, want %v", i, cmds[i], want[i])
		}
	}
	if err := dev.Err(); err != nil {
		t.Errorf("device error after destroy: %v", err)
	}
	if quad.Valid() || quad.IndexCount() != 0 {
		t.Error("expected empty geometry after Destroy")
	}
}

func TestEmptyGeometryIsInert(t *testing.T) {
	quad, dev := newUnitQuad(t)
	quad.Destroy()
	dev.Reset()

	quad.Bind()
	quad.Draw()
	quad.Destroy()

	if n := len(dev.Commands()); n != 0 {
		t.Errorf("empty geometry issued %d commands:\n%s", n, dev)
	}

	var zero *compositor.RectGeometry
	zero.Destroy()
	if zero.Valid() {
		t.Error("nil geometry reported valid")
	}
}

func TestMove(t *testing.T) {
	a, dev := newUnitQuad(t)
	vao, vbo, ibo := a.VertexArray(), a.VertexBuffer(), a.IndexBuffer()

	b := a.Move()

	if a.Valid() {
		t.Error("source still valid after Move")
	}
	if a.VertexArray() != 0 || a.VertexBuffer() != 0 || a.IndexBuffer() != 0 {
		t.Error("source handles not cleared after Move")
	}
	if b.VertexArray() != vao || b.VertexBuffer() != vbo || b.IndexBuffer() != ibo {
		t.Error("destination does not own the moved handles")
	}
	if b.IndexCount() != 6 {
		t.Errorf("moved IndexCount() = %d, want 6", b.IndexCount())
	}

	a.Destroy()
	if n := dev.Count(record.OpDeleteBuffer) + dev.Count(record.OpDeleteVertexArray); n != 0 {
		t.Errorf("destroying moved-from geometry issued %d release calls", n)
	}

	b.Draw()
	cmds := dev.Commands()
	last := cmds[len(cmds)-1]
	if last.Op != record.OpDrawElements || last.Count != 6 || last.Handle != vao {
		t.Errorf("moved geometry draw = %v, want DrawElements(Triangles, 6, UnsignedInt) vao=%d", last, vao)
	}

	b.Destroy()
	if got := dev.Count(record.OpDeleteBuffer); got != 2 {
		t.Errorf("buffer releases = %d, want 2", got)
	}
	if got := dev.Count(record.OpDeleteVertexArray); got != 1 {
		t.Errorf("vertex array releases = %d, want 1", got)
	}
}

func TestMoveFrom(t *testing.T) {
	a, dev := newUnitQuad(t)
	b, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	oldVAO := b.VertexArray()
	aVAO := a.VertexArray()
	dev.Reset()

	b.MoveFrom(a)

	// b's previous objects are released, a's are not.
	if got := dev.Count(record.OpDeleteBuffer); got != 2 {
		t.Errorf("buffer releases = %d, want 2", got)
	}
	for _, c := range dev.Commands() {
		if c.Op == record.OpDeleteVertexArray && c.Handle != oldVAO {
			t.Errorf("released vertex array %d, want only %d", c.Handle, oldVAO)
		}
	}
	if b.VertexArray() != aVAO || b.IndexCount() != 6 {
		t.Errorf("destination = %v, want a's objects", b)
	}
	if a.Valid() {
		t.Error("source still valid after MoveFrom")
	}

	dev.Reset()
	a.Destroy()
	if n := len(dev.Commands()); n != 0 {
		t.Errorf("destroying moved-from geometry issued %d commands", n)
	}
}

func TestMoveFromSelf(t *testing.T) {
	a, dev := newUnitQuad(t)
	vao, vbo, ibo := a.VertexArray(), a.VertexBuffer(), a.IndexBuffer()

	a.MoveFrom(a)

	if n := len(dev.Commands()); n != 0 {
		t.Errorf("self move issued %d commands:\n%s", n, dev)
	}
	if !a.Valid() || a.VertexArray() != vao || a.VertexBuffer() != vbo || a.IndexBuffer() != ibo {
		t.Error("self move changed the geometry")
	}
	if a.IndexCount() != 6 {
		t.Errorf("IndexCount() = %d after self move, want 6", a.IndexCount())
	}
}

func TestMoveFromIntoEmpty(t *testing.T) {
	a, dev := newUnitQuad(t)
	b := a.Move()
	c := b.Move()

	// b is empty; moving into it releases nothing.
	b.MoveFrom(c)
	if n := dev.Count(record.OpDeleteBuffer) + dev.Count(record.OpDeleteVertexArray); n != 0 {
		t.Errorf("move into empty geometry issued %d release calls", n)
	}
	if !b.Valid() || c.Valid() {
		t.Error("ownership did not move back")
	}
}

func TestWithLabel(t *testing.T) {
	quad, err := compositor.NewRectGeometry(record.New(),
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices,
		compositor.WithLabel("camera-1"))
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	if quad.Label() != "camera-1" {
		t.Errorf("Label() = %q, want %q", quad.Label(), "camera-1")
	}
}

func TestWithLabelReachesDevice(t *testing.T) {
	dev := record.New()
	quad, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices,
		compositor.WithLabel("camera-1"))
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	if got := dev.ObjectLabel(quad.VertexBuffer()); got != "camera-1 vertices" {
		t.Errorf("vertex buffer label = %q", got)
	}
	if got := dev.ObjectLabel(quad.IndexBuffer()); got != "camera-1 indices" {
		t.Errorf("index buffer label = %q", got)
	}
}

func TestWithUsage(t *testing.T) {
	dev := record.New()
	_, err := compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices,
		compositor.WithUsage(compositor.DynamicDraw))
	if err != nil {
		t.Fatalf("NewRectGeometry failed: %v", err)
	}
	for _, c := range dev.Commands() {
		if c.Op == record.OpBufferData && c.Usage != compositor.DynamicDraw {
			t.Errorf("BufferData usage = %v, want DynamicDraw", c.Usage)
		}
	}
}

func TestNewPlacedRect(t *testing.T) {
	dev := record.New()
	quad, err := compositor.NewPlacedRect(dev,
		compositor.Placement{X: 0, Y: 0, Width: 960, Height: 540, Z: 0.5}, 1920, 1080)
	if err != nil {
		t.Fatalf("NewPlacedRect failed: %v", err)
	}
	if quad.IndexCount() != len(compositor.QuadIndices) {
		t.Errorf("IndexCount() = %d, want %d", quad.IndexCount(), len(compositor.QuadIndices))
	}

	_, err = compositor.NewPlacedRect(dev, compositor.Placement{}, 1920, 1080)
	if !errors.Is(err, compositor.ErrInvalidPlacement) {
		t.Errorf("error = %v, want ErrInvalidPlacement", err)
	}
}

func TestString(t *testing.T) {
	quad, _ := newUnitQuad(t, compositor.WithLabel("main"))
	if s := quad.String(); s == "" {
		t.Error("String() returned empty string")
	}
	quad.Destroy()
	if s := quad.String(); s != `RectGeometry("main", empty)` {
		t.Errorf("String() = %q", s)
	}
}

func TestGeometryLogging(t *testing.T) {
	orig := compositor.Logger()
	t.Cleanup(func() { compositor.SetLogger(orig) })

	var buf bytes.Buffer
	compositor.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	quad, _ := newUnitQuad(t, compositor.WithLabel("logged"))
	quad.Destroy()

	out := buf.String()
	for _, want := range []string{"geometry created", "geometry destroyed", "label=logged"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestDriverFaultLogsWarning(t *testing.T) {
	orig := compositor.Logger()
	t.Cleanup(func() { compositor.SetLogger(orig) })

	var buf bytes.Buffer
	compositor.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	dev := record.New()
	dev.FailOn(record.OpBufferData, errors.New("out of memory"))
	_, _ = compositor.NewRectGeometry(dev,
		compositor.FlattenVertices(compositor.UnitQuad()), compositor.QuadIndices)

	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected a warning, got:\n%s", buf.String())
	}
}

func TestUpdateVertices(t *testing.T) {
	quad, dev := newUnitQuad(t, compositor.WithUsage(compositor.DynamicDraw))
	vao, vbo, ibo := quad.VertexArray(), quad.VertexBuffer(), quad.IndexBuffer()

	moved := compositor.FlattenVertices(compositor.UnitQuad())
	for i := 0; i < len(moved); i += compositor.FloatsPerVertex {
		moved[i] *= 0.5
	}
	if err := quad.UpdateVertices(moved); err != nil {
		t.Fatalf("UpdateVertices failed: %v", err)
	}

	want := []record.Op{record.OpBindVertexArray, record.OpBindBuffer, record.OpBufferData}
	if got := dev.Ops(); !slices.Equal(got, want) {
		t.Errorf("update ops = %v, want %v", got, want)
	}
	cmds := dev.Commands()
	if cmds[1].Target != compositor.ArrayBuffer || cmds[1].Handle != vbo {
		t.Errorf("bound %v, want ArrayBuffer %d", cmds[1], vbo)
	}
	if cmds[2].Usage != compositor.DynamicDraw {
		t.Errorf("upload usage = %v, want DynamicDraw", cmds[2].Usage)
	}

	vb, _ := dev.BufferContents(vbo)
	for i, want := range moved {
		got := math.Float32frombits(binary.LittleEndian.Uint32(vb[i*4:]))
		if got != want {
			t.Errorf("vertex float %d = %v, want %v", i, got, want)
		}
	}
	if quad.VertexArray() != vao || quad.VertexBuffer() != vbo || quad.IndexBuffer() != ibo {
		t.Error("UpdateVertices changed the geometry's handles")
	}
	if dev.LiveBuffers() != 2 || dev.LiveVertexArrays() != 1 {
		t.Error("UpdateVertices allocated new objects")
	}

	quad.Draw()
	if err := dev.Err(); err != nil {
		t.Errorf("device error after update and draw: %v", err)
	}
}

func TestUpdateVerticesValidation(t *testing.T) {
	quad, dev := newUnitQuad(t)
	full := compositor.FlattenVertices(compositor.UnitQuad())

	if err := quad.UpdateVertices(full[:7]); !errors.Is(err, compositor.ErrVertexStride) {
		t.Errorf("error = %v, want ErrVertexStride", err)
	}
	// Three vertices no longer cover index 3.
	if err := quad.UpdateVertices(full[:15]); !errors.Is(err, compositor.ErrIndexOutOfRange) {
		t.Errorf("error = %v, want ErrIndexOutOfRange", err)
	}
	if n := len(dev.Commands()); n != 0 {
		t.Errorf("rejected update issued %d commands", n)
	}

	unchecked, _ := newUnitQuad(t, compositor.WithValidation(false))
	if err := unchecked.UpdateVertices(full[:7]); err != nil {
		t.Errorf("unvalidated update failed: %v", err)
	}
}

func TestUpdateVerticesDriverFault(t *testing.T) {
	quad, dev := newUnitQuad(t)
	// Stale errors are not blamed on the update.
	dev.DeleteBuffer(99)
	if err := quad.UpdateVertices(compositor.FlattenVertices(compositor.UnitQuad())); err != nil {
		t.Fatalf("UpdateVertices failed on a pending device error: %v", err)
	}

	lost := errors.New("context lost")
	dev.FailOn(record.OpBufferData, lost)
	err := quad.UpdateVertices(compositor.FlattenVertices(compositor.UnitQuad()))
	if !errors.Is(err, compositor.ErrDriverFault) || !errors.Is(err, lost) {
		t.Errorf("error = %v, want ErrDriverFault wrapping the device error", err)
	}
	if !quad.Valid() {
		t.Error("a failed update must not release the geometry")
	}
}

func TestUpdateVerticesOnEmptyGeometry(t *testing.T) {
	quad, dev := newUnitQuad(t)
	quad.Destroy()
	dev.Reset()

	if err := quad.UpdateVertices(compositor.FlattenVertices(compositor.UnitQuad())); err != nil {
		t.Errorf("UpdateVertices on empty geometry = %v, want nil", err)
	}
	var zero *compositor.RectGeometry
	if err := zero.SetPlacement(compositor.Placement{Width: 1, Height: 1}, 10, 10); err != nil {
		t.Errorf("SetPlacement on nil geometry = %v, want nil", err)
	}
	if n := len(dev.Commands()); n != 0 {
		t.Errorf("empty geometry issued %d commands", n)
	}
}

func TestSetPlacement(t *testing.T) {
	dev := record.New()
	quad, err := compositor.NewPlacedRect(dev,
		compositor.Placement{Width: 100, Height: 100}, 200, 200,
		compositor.WithUsage(compositor.DynamicDraw))
	if err != nil {
		t.Fatalf("NewPlacedRect failed: %v", err)
	}

	if err := quad.SetPlacement(compositor.Placement{Width: 200, Height: 200}, 200, 200); err != nil {
		t.Fatalf("SetPlacement failed: %v", err)
	}
	vb, _ := dev.BufferContents(quad.VertexBuffer())
	got := make([]float32, len(vb)/4)
	for i := range got {
		got[i] = math.Float32frombits(binary.LittleEndian.Uint32(vb[i*4:]))
	}
	want := compositor.FlattenVertices(compositor.UnitQuad())
	if len(got) != len(want) {
		t.Fatalf("vertex buffer holds %d floats, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("vertex float %d = %v, want %v", i, got[i], want[i])
		}
	}

	err = quad.SetPlacement(compositor.Placement{}, 200, 200)
	if !errors.Is(err, compositor.ErrInvalidPlacement) {
		t.Errorf("error = %v, want ErrInvalidPlacement", err)
	}
}

func TestMoveKeepsUpdateSettings(t *testing.T) {
	a, dev := newUnitQuad(t, compositor.WithUsage(compositor.DynamicDraw))
	b := a.Move()
	dev.Reset()

	if err := b.UpdateVertices(compositor.FlattenVertices(compositor.UnitQuad())[:15]); !errors.Is(err, compositor.ErrIndexOutOfRange) {
		t.Errorf("moved geometry lost its index bound: %v", err)
	}
	if err := b.UpdateVertices(compositor.FlattenVertices(compositor.UnitQuad())); err != nil {
		t.Fatalf("UpdateVertices failed: %v", err)
	}
	if c := dev.Commands(); c[len(c)-1].Usage != compositor.DynamicDraw {
		t.Errorf("moved geometry upload usage = %v, want DynamicDraw", c[len(c)-1].Usage)
	}
}

func TestNilGeometry(t *testing.T) {
	var g *compositor.RectGeometry

	m := g.Move()
	if m == nil || m.Valid() {
		t.Errorf("Move() on nil = %v, want an empty geometry", m)
	}
	if g.VertexArray() != 0 || g.VertexBuffer() != 0 || g.IndexBuffer() != 0 {
		t.Error("nil geometry reported non-zero handles")
	}
	if g.IndexCount() != 0 || g.Label() != "" {
		t.Error("nil geometry reported state")
	}
	g.Bind()
	g.Draw()
	g.Destroy()

	quad, dev := newUnitQuad(t)
	g.MoveFrom(quad)
	if !quad.Valid() {
		t.Error("MoveFrom on nil receiver took ownership")
	}
	if n := len(dev.Commands()); n != 0 {
		t.Errorf("nil receiver issued %d commands", n)
	}
}
