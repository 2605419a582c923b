// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command quaddemo draws a grid of placed video rectangles.
//
// With -backend record it prints the device commands issued for the
// frames instead of opening a window:
//
//	quaddemo -backend record -frames 1
//
// With -backend gl it opens a window and draws each rectangle with its
// texture coordinates as color.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/compositor"
	"github.com/gogpu/compositor/backend"
	"github.com/gogpu/compositor/backend/record"
)

func main() {
	var (
		backendName = flag.String("backend", backend.BackendRecord, "device backend: record or gl")
		width       = flag.Int("width", 1280, "output width in pixels")
		height      = flag.Int("height", 720, "output height in pixels")
		cols        = flag.Int("cols", 2, "videos per row")
		rows        = flag.Int("rows", 2, "videos per column")
		frames      = flag.Int("frames", 1, "frames to draw, 0 runs until the window closes")
		verbose     = flag.Bool("verbose", false, "log GPU object creation and release")
	)
	flag.Parse()

	if *verbose {
		compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	placements := grid(*width, *height, *cols, *rows)
	if err := run(*backendName, placements, *width, *height, *frames); err != nil {
		log.Fatalf("quaddemo: %v", err)
	}
}

// run draws the placements with the named backend.
func run(name string, placements []compositor.Placement, width, height, frames int) error {
	switch name {
	case backend.BackendRecord:
		return runRecord(placements, width, height, frames)
	case backend.BackendGL:
		return runWindow(placements, width, height, frames)
	default:
		return fmt.Errorf("unknown backend %q", name)
	}
}

// grid splits the output into cols x rows equal cells, front to back.
func grid(width, height, cols, rows int) []compositor.Placement {
	cellW, cellH := width/max(cols, 1), height/max(rows, 1)
	placements := make([]compositor.Placement, 0, cols*rows)
	for r := range rows {
		for c := range cols {
			i := len(placements)
			placements = append(placements, compositor.Placement{
				X:      c * cellW,
				Y:      r * cellH,
				Width:  cellW,
				Height: cellH,
				Z:      float32(i) / float32(cols*rows),
			})
		}
	}
	return placements
}

// createRects builds one geometry per placement. On error the geometries
// created so far are destroyed.
func createRects(dev compositor.Device, placements []compositor.Placement, width, height int) ([]*compositor.RectGeometry, error) {
	rects := make([]*compositor.RectGeometry, 0, len(placements))
	for i, p := range placements {
		quad, err := compositor.NewPlacedRect(dev, p, width, height,
			compositor.WithLabel(fmt.Sprintf("video-%d", i)))
		if err != nil {
			destroyRects(rects)
			return nil, fmt.Errorf("placement %v: %w", p, err)
		}
		rects = append(rects, quad)
	}
	return rects, nil
}

func destroyRects(rects []*compositor.RectGeometry) {
	for _, r := range rects {
		r.Destroy()
	}
}

func runRecord(placements []compositor.Placement, width, height, frames int) error {
	dev, err := backend.Open(backend.BackendRecord)
	if err != nil {
		return err
	}
	rec := dev.(*record.Device)

	rects, err := createRects(rec, placements, width, height)
	if err != nil {
		return err
	}
	for range max(frames, 1) {
		for _, r := range rects {
			r.Draw()
		}
	}
	destroyRects(rects)

	if err := rec.Err(); err != nil {
		return err
	}
	fmt.Print(rec)
	fmt.Printf("%d rectangles, %d draw calls, %d live objects\n",
		len(rects), rec.Count(record.OpDrawElements), rec.LiveBuffers()+rec.LiveVertexArrays())
	return nil
}
