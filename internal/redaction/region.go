// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package redaction implements the document sanitization pipeline: it
// takes a source PDF plus operator-designated rectangular regions and
// produces an output PDF in which the content under those regions is
// permanently removed, together with an audit trail of what was removed.
package redaction

import (
	"fmt"

	"foia-stream/internal/redaction/geometry"
)

// RedactionRegion describes one rectangular area an operator wants
// removed from a document. Coordinates are in caller display space:
// page units with a top-left origin, the way viewers report selections.
type RedactionRegion struct {
	// Page is the 0-based index of the page the region targets. It is
	// validated against the document's page count at processing time,
	// not at construction; out-of-range regions are skipped with a
	// warning rather than failing the operation.
	Page int `json:"page"`

	// X is the left edge of the region in display space
	X float64 `json:"x"`

	// Y is the top edge of the region in display space
	Y float64 `json:"y"`

	// Width is the horizontal extent of the region; must be positive
	Width float64 `json:"width"`

	// Height is the vertical extent of the region; must be positive
	Height float64 `json:"height"`

	// Reason is an optional operator-supplied justification, carried
	// verbatim into the audit trail (e.g. "SSN", "FOIA exemption b(6)")
	Reason string `json:"reason,omitempty"`
}

// Validate reports whether the region is well formed. Page bounds are
// checked later against the actual document; here only the geometric
// invariant applies.
func (r RedactionRegion) Validate() error {
	if r.Page < 0 {
		return fmt.Errorf("%w: page index %d is negative", ErrInvalidRegion, r.Page)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: dimensions %gx%g are not positive", ErrInvalidRegion, r.Width, r.Height)
	}
	return nil
}

// DisplayRect returns the region's rectangle as a typed display-space
// value, the entry point into the coordinate conversions.
func (r RedactionRegion) DisplayRect() geometry.DisplayRect {
	return geometry.DisplayRect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// AreaDescription renders the region's position and size the way audit
// entries record them, e.g. "(50, 700) 200x20".
func (r RedactionRegion) AreaDescription() string {
	return fmt.Sprintf("(%g, %g) %gx%g", r.X, r.Y, r.Width, r.Height)
}
