// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

// Option configures a RectGeometry during creation.
//
// Example:
//
//	// Default: validated input, static buffers
//	quad, err := compositor.NewRectGeometry(dev, vertices, indices)
//
//	// Placement rewritten every frame, labeled for GPU debuggers
//	quad, err := compositor.NewRectGeometry(dev, vertices, indices,
//	    compositor.WithUsage(compositor.DynamicDraw),
//	    compositor.WithLabel("camera-1"))
type Option func(*options)

// options holds optional configuration for geometry creation.
type options struct {
	validate bool
	label    string
	usage    BufferUsage
}

// defaultOptions returns the default geometry options.
func defaultOptions() options {
	return options{
		validate: true,
		usage:    StaticDraw,
	}
}

// WithValidation toggles the construction-time checks on vertex stride,
// empty index lists and index bounds. With validation off, malformed input
// is uploaded as-is and the outcome of drawing it is up to the driver.
// Coordinate ranges are never checked.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validate = enabled
	}
}

// WithLabel sets a debug label. The label appears in log records and, on
// devices implementing Labeler, on the GPU objects themselves.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithUsage sets the usage hint for both buffers. The default is StaticDraw.
func WithUsage(usage BufferUsage) Option {
	return func(o *options) {
		o.usage = usage
	}
}
