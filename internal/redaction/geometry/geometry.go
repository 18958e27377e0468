// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package geometry defines the three coordinate spaces a redaction
// rectangle moves through on its way from an operator's screen to a PDF
// page, and the conversions between them.
//
// Display space is what callers submit: page units with a top-left origin,
// the way browser-based viewers report selections. Render space is display
// space scaled by dpi/72, still top-left, and is where bitmap compositing
// happens. Native space is the page's own coordinate system: unscaled page
// units with a bottom-left origin, used when drawing directly into a PDF.
//
// The three rectangle types are deliberately distinct so a value from one
// space cannot be passed where another is expected.
package geometry

import (
	"image"
	"math"
)

// PointsPerInch is the reference resolution of a PDF page. A page's native
// units are 1/72 inch regardless of what resolution it is rendered at.
const PointsPerInch = 72.0

// DisplayRect is a rectangle in caller display space: page units,
// origin at the top-left corner of the page, Y growing downward.
type DisplayRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RenderRect is a rectangle in render space: display space scaled by
// dpi/72, origin still top-left. One unit equals one pixel of the
// rendered page bitmap.
type RenderRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NativeRect is a rectangle in native page space: unscaled page units,
// origin at the bottom-left corner of the page, Y growing upward.
type NativeRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// ScaleForDPI returns the display-to-render scale factor for a target
// resolution.
func ScaleForDPI(dpi int) float64 {
	return float64(dpi) / PointsPerInch
}

// ToRenderSpace converts a display rectangle to render space by
// multiplying all four fields by scale. It is pure and total: any
// well-formed rectangle converts without error.
func (r DisplayRect) ToRenderSpace(scale float64) RenderRect {
	return RenderRect{
		X:      r.X * scale,
		Y:      r.Y * scale,
		Width:  r.Width * scale,
		Height: r.Height * scale,
	}
}

// ToNativeSpace converts a render rectangle to native page space. It
// undoes the dpi scale and flips the vertical axis, so the origin moves
// from the top-left corner to the bottom-left:
//
//	nativeY = pageHeight - y - height
//
// pageHeight is the page's native height. With scale 1 this is a pure
// axis flip, which is the conversion the overlay path uses.
func (r RenderRect) ToNativeSpace(scale, pageHeight float64) NativeRect {
	x := r.X / scale
	y := r.Y / scale
	w := r.Width / scale
	h := r.Height / scale
	return NativeRect{
		X:      x,
		Y:      pageHeight - y - h,
		Width:  w,
		Height: h,
	}
}

// Pixels returns the rectangle as integer pixel bounds for image
// compositing. Edges are rounded outward so a fill never leaves a
// sliver of the covered content visible.
func (r RenderRect) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)),
		int(math.Ceil(r.Y+r.Height)),
	)
}
