//go:build !cgo

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"

	"github.com/gogpu/compositor"
)

func runWindow([]compositor.Placement, int, int, int) error {
	return errors.New("gl backend needs cgo; rebuild with CGO_ENABLED=1")
}
