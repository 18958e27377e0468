// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package overlay

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"foia-stream/internal/document"
)

// stampDesc positions a stamp page at the bottom-left corner of the
// target page at its natural size. Stamp and target pages share
// dimensions, so the coordinate systems coincide.
const stampDesc = "pos:bl, scale:1 abs, rot:0"

// Apply stamps draft boxes over the listed pages and returns the
// marked-up document. The source pages stay fully intact underneath
// the markup.
func Apply(ctx context.Context, src []byte, info *document.DocumentInfo, boxes map[int][]Box, style Style) ([]byte, error) {
	if len(boxes) == 0 {
		return append([]byte(nil), src...), nil
	}

	pages := make([]int, 0, len(boxes))
	for page := range boxes {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	current := src
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page < 0 || page >= info.PageCount {
			return nil, fmt.Errorf("page %d out of range, document has %d page(s)", page+1, info.PageCount)
		}

		marked, err := stampPage(current, page, info.Pages[page], boxes[page], style)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}
		current = marked
	}
	return current, nil
}

// stampPage lays the boxes for one page over the document. The stamp
// travels through a temporary file because the watermark reader works
// from a path.
func stampPage(doc []byte, page int, dim document.PageDim, boxes []Box, style Style) ([]byte, error) {
	stamp := StampPDF(dim.Width, dim.Height, boxes, style)

	tmp, err := os.CreateTemp("", "foia-stream-stamp-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create stamp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(stamp); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write stamp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write stamp file: %w", err)
	}

	wm, err := api.PDFWatermark(tmp.Name(), stampDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("failed to configure stamp: %w", err)
	}

	selected := []string{strconv.Itoa(page + 1)}
	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(doc), &out, selected, wm, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("failed to stamp page: %w", err)
	}
	return out.Bytes(), nil
}
