// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package document handles everything that treats a PDF as a document
// rather than as pixels: structural reading, page-by-page assembly of
// the sanitized output, metadata scrubbing, pre-redaction inspection,
// and post-redaction verification. All operations take and return byte
// slices; nothing here touches the filesystem.
package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNotPDF marks input that does not carry a PDF signature or cannot
// be parsed as one.
var ErrNotPDF = errors.New("input is not a valid PDF document")

// ErrEncrypted marks a document whose trailer carries an encryption
// dictionary. Sanitization needs unrestricted access to page content,
// so encrypted documents must be decrypted before processing. Inspect
// still works on them through the raw-byte scans.
var ErrEncrypted = errors.New("document is encrypted")

// PageDim is one page's native dimensions in page units (1/72 inch).
type PageDim struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DocumentInfo describes a document's page geometry, the shape callers
// need before they can position redaction regions.
type DocumentInfo struct {
	PageCount int       `json:"pageCount"`
	Pages     []PageDim `json:"pages"`
}

// headerWindow is how deep into the file the PDF signature may sit.
// Real-world files carry junk before the header; viewers tolerate
// about 1 KB of it.
const headerWindow = 1024

// hasPDFHeader reports whether b carries the standard PDF signature
// within the tolerated window.
func hasPDFHeader(b []byte) bool {
	window := b
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	return bytes.Contains(window, []byte("%PDF-"))
}

// newConfiguration returns the pdfcpu configuration used for all
// document operations.
func newConfiguration() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// readContext parses and validates a document, returning the pdfcpu
// context for structural inspection.
func readContext(b []byte) (*model.Context, error) {
	if !hasPDFHeader(b) {
		return nil, fmt.Errorf("%w: missing PDF signature", ErrNotPDF)
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(b), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	// An /Encrypt trailer entry survives parsing when the user password
	// is empty; such documents would round-trip through assembly with
	// their restrictions intact or break the merge outright.
	if ctx.Encrypt != nil {
		return nil, ErrEncrypted
	}
	return ctx, nil
}

// ReadInfo parses a document and returns its page count and native page
// dimensions. It is the validation gate for every pipeline entry point:
// malformed or non-PDF input fails here, before any region processing.
func ReadInfo(b []byte) (*DocumentInfo, error) {
	ctx, err := readContext(b)
	if err != nil {
		return nil, err
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read page dimensions: %v", ErrNotPDF, err)
	}

	info := &DocumentInfo{
		PageCount: ctx.PageCount,
		Pages:     make([]PageDim, len(dims)),
	}
	for i, d := range dims {
		info.Pages[i] = PageDim{Width: d.Width, Height: d.Height}
	}

	if info.PageCount == 0 || len(info.Pages) != info.PageCount {
		return nil, fmt.Errorf("%w: inconsistent page structure", ErrNotPDF)
	}
	return info, nil
}
