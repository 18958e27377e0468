// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"foia-stream/internal/redaction/geometry"
)

// jpegQuality preserves enough detail that sanitized pages remain
// readable alongside untouched vector pages.
const jpegQuality = 95

// minLabelPixels is the smallest font size worth rendering. Below this
// the label would be an unreadable smudge; the fill alone suffices.
const minLabelPixels = 4.0

// MaxLabelPoints caps the label font size at native scale. The
// effective size for a region is min(0.6 x region height, MaxLabelPoints
// x scale) so labels stay inside small regions and never balloon on
// large ones.
const MaxLabelPoints = 14.0

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
	labelFontErr  error
)

// loadLabelFont parses the embedded Go Regular face once. The font data
// ships with the binary, so failure here means a build problem rather
// than an environmental one.
func loadLabelFont() (*opentype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// FillRegions paints an opaque rectangle of fill over every region on
// the rendered page. Rectangles are clipped to the bitmap bounds, so a
// region hanging off the page edge covers exactly the visible part.
func FillRegions(img *image.RGBA, regions []geometry.RenderRect, fill color.RGBA) {
	src := image.NewUniform(fill)
	for _, region := range regions {
		target := region.Pixels().Intersect(img.Bounds())
		if target.Empty() {
			continue
		}
		draw.Draw(img, target, src, image.Point{}, draw.Src)
	}
}

// DrawLabel centers text over a filled region in the given color. It is
// called strictly after FillRegions so the fill can never occlude the
// label. The font size is bounded by the region height and by
// MaxLabelPoints scaled to the render resolution; regions too small for
// a legible label are left as bare fills.
func DrawLabel(img *image.RGBA, region geometry.RenderRect, text string, scale float64, textColor color.RGBA) error {
	if text == "" {
		return nil
	}

	size := 0.6 * region.Height
	if maxSize := MaxLabelPoints * scale; size > maxSize {
		size = maxSize
	}
	if size < minLabelPixels {
		return nil
	}

	parsed, err := loadLabelFont()
	if err != nil {
		return fmt.Errorf("failed to load label font: %w", err)
	}
	// DPI 72 makes Size a pixel measure in render space.
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return fmt.Errorf("failed to build label face: %w", err)
	}
	defer face.Close()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: face,
	}

	bounds := region.Pixels()
	advance := drawer.MeasureString(text)
	metrics := face.Metrics()

	x := bounds.Min.X + (bounds.Dx()-advance.Ceil())/2
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	// Baseline placement that vertically centers the glyph box.
	y := bounds.Min.Y + (bounds.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2

	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)
	return nil
}

// EncodeJPEG compresses the composited page bitmap for embedding into
// the replacement page.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode page raster: %w", err)
	}
	return buf.Bytes(), nil
}
