// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import (
	"fmt"
	"time"

	"foia-stream/internal/redaction/geometry"
)

// Limits bounds the resources a single redaction operation may consume.
// A pathological page (extreme dimensions or resolution) can otherwise
// stall the pipeline indefinitely, so the render budget is enforced
// before any rendering begins and the timeout covers the whole
// operation, not individual steps.
type Limits struct {
	// MaxDocumentBytes caps the size of the input document. Default: 100 MB.
	MaxDocumentBytes int64

	// MaxRegions caps the number of regions per operation. Default: 1,000.
	MaxRegions int

	// MaxRenderPixels caps width x height of any single rendered page
	// bitmap. Default: 64 megapixels, which admits US Letter at 600 DPI
	// but rejects poster-sized pages at high resolutions.
	MaxRenderPixels int64

	// OperationTimeout bounds the whole operation: render, composite,
	// and assemble. Zero disables the timeout. Default: 2m.
	OperationTimeout time.Duration
}

// DefaultLimits returns a Limits struct with safe default values.
func DefaultLimits() Limits {
	return Limits{
		MaxDocumentBytes: 100 * 1024 * 1024, // 100 MB
		MaxRegions:       1000,
		MaxRenderPixels:  64 * 1000 * 1000, // 64 MP
		OperationTimeout: 2 * time.Minute,
	}
}

// CheckDocumentSize rejects documents larger than MaxDocumentBytes.
func (l Limits) CheckDocumentSize(size int64) error {
	if l.MaxDocumentBytes > 0 && size > l.MaxDocumentBytes {
		return fmt.Errorf("%w: document is %d bytes, limit is %d", ErrResourceLimit, size, l.MaxDocumentBytes)
	}
	return nil
}

// CheckRegionCount rejects operations with more than MaxRegions regions.
func (l Limits) CheckRegionCount(count int) error {
	if l.MaxRegions > 0 && count > l.MaxRegions {
		return fmt.Errorf("%w: %d regions requested, limit is %d", ErrResourceLimit, count, l.MaxRegions)
	}
	return nil
}

// CheckRenderBudget rejects a page whose bitmap at the requested
// resolution would exceed MaxRenderPixels. Page dimensions are in
// native units; the bitmap is scaled by dpi/72 along both axes.
func (l Limits) CheckRenderBudget(pageWidth, pageHeight float64, dpi int) error {
	if l.MaxRenderPixels <= 0 {
		return nil
	}
	scale := geometry.ScaleForDPI(dpi)
	pixels := int64(pageWidth*scale) * int64(pageHeight*scale)
	if pixels > l.MaxRenderPixels {
		return fmt.Errorf("%w: page would render to %d pixels at %d DPI, limit is %d (retry with a lower resolution)",
			ErrResourceLimit, pixels, dpi, l.MaxRenderPixels)
	}
	return nil
}
