// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Assemble builds the output document page by page, in source order.
// Pages absent from replacements are copied from the source verbatim,
// preserving their vector content and size; pages present in
// replacements are emitted as fresh pages at the source page's native
// dimensions containing only the replacement JPEG, stretched to fill
// the page.
//
// Any failure to copy or build a page is fatal for the whole operation:
// a missing or reordered page would silently defeat the redaction
// guarantee for the rest of the document.
func Assemble(ctx context.Context, src []byte, info *DocumentInfo, replacements map[int][]byte) ([]byte, error) {
	if info == nil || info.PageCount == 0 {
		return nil, fmt.Errorf("no document info for assembly")
	}

	pageDocs := make([][]byte, 0, info.PageCount)

	for page := 0; page < info.PageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raster, sanitized := replacements[page]
		var (
			pageDoc []byte
			err     error
		)
		if sanitized {
			pageDoc, err = buildRasterPage(raster, info.Pages[page])
		} else {
			pageDoc, err = copySourcePage(src, page)
		}
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}
		pageDocs = append(pageDocs, pageDoc)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(pageDocs) == 1 {
		return pageDocs[0], nil
	}

	pages := make([]io.ReadSeeker, len(pageDocs))
	for i, doc := range pageDocs {
		pages[i] = bytes.NewReader(doc)
	}

	var out bytes.Buffer
	if err := api.MergeRaw(pages, &out, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to merge %d pages: %w", info.PageCount, err)
	}
	return out.Bytes(), nil
}

// copySourcePage extracts the 0-based page from the source document
// into a standalone single-page document, leaving its objects intact.
func copySourcePage(src []byte, page int) ([]byte, error) {
	var buf bytes.Buffer
	selected := []string{strconv.Itoa(page + 1)}
	if err := api.Trim(bytes.NewReader(src), &buf, selected, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to copy source page: %w", err)
	}
	return buf.Bytes(), nil
}

// buildRasterPage wraps an encoded page raster in a single-page
// document of the given native dimensions. The import stretches the
// image across the full page, so the output page holds exactly one
// image object and no other content.
func buildRasterPage(raster []byte, dim PageDim) ([]byte, error) {
	desc := fmt.Sprintf("dim:%.2f %.2f, pos:full", dim.Width, dim.Height)
	imp, err := api.Import(desc, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to configure page import: %w", err)
	}

	var buf bytes.Buffer
	imgs := []io.Reader{bytes.NewReader(raster)}
	if err := api.ImportImages(nil, &buf, imgs, imp, newConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to build raster page: %w", err)
	}
	return buf.Bytes(), nil
}
