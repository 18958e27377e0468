// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package raster renders PDF pages to bitmaps and composites redaction
// fills and labels onto them. It is the destructive half of the
// pipeline: once a page has passed through here only pixels remain.
package raster

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PageRenderer renders one page of a source document to a bitmap.
// Implementations must be safe for concurrent use: the engine renders
// independent pages in parallel under a bounded limit.
type PageRenderer interface {
	// RenderPage renders the 0-based page of doc at the given
	// resolution. The bitmap dimensions are the page's native viewport
	// scaled by dpi/72.
	RenderPage(ctx context.Context, doc []byte, page int, dpi int) (*image.RGBA, error)
}

// FitzRenderer renders pages with MuPDF via go-fitz. Each call opens
// its own document handle, so concurrent renders of different pages
// never share MuPDF state.
type FitzRenderer struct{}

// NewFitzRenderer creates a MuPDF-backed page renderer.
func NewFitzRenderer() *FitzRenderer {
	return &FitzRenderer{}
}

// RenderPage implements PageRenderer.
func (fr *FitzRenderer) RenderPage(ctx context.Context, doc []byte, page int, dpi int) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := fitz.NewFromMemory(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to open document for rendering: %w", err)
	}
	defer d.Close()

	if page < 0 || page >= d.NumPage() {
		return nil, fmt.Errorf("page %d out of range, document has %d page(s)", page, d.NumPage())
	}

	img, err := d.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d at %d DPI: %w", page, dpi, err)
	}

	return img, nil
}
