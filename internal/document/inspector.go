// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rwcarlsen/goexif/exif"
)

// InspectionReport summarizes a document's structure and the risk
// markers relevant before sanitization: active content, attachments,
// encryption, and embedded images that may carry their own metadata.
type InspectionReport struct {
	// PageCount is the number of pages. When the structural parse
	// fails it falls back to a raw-byte estimate and may be 0.
	PageCount int `json:"pageCount"`
	// Pages holds per-page dimensions in PDF points, when parsed.
	Pages []PageDim `json:"pages,omitempty"`
	// Parsed reports whether the structural parser accepted the file.
	Parsed bool `json:"parsed"`
	// Encrypted reports an /Encrypt reference in the trailer.
	Encrypted bool `json:"encrypted"`
	// HasJavaScript reports JavaScript action markers.
	HasJavaScript bool `json:"hasJavaScript"`
	// HasEmbeddedFiles reports file attachment markers.
	HasEmbeddedFiles bool `json:"hasEmbeddedFiles"`
	// HasOpenAction reports an action that runs when the file opens.
	HasOpenAction bool `json:"hasOpenAction"`
	// ImageCount is the number of distinct image objects in use.
	ImageCount int `json:"imageCount"`
	// ImagesWithEXIF counts JPEG image objects carrying EXIF data.
	ImagesWithEXIF int `json:"imagesWithExif"`
}

var (
	encryptPattern      = regexp.MustCompile(`/Encrypt\s+\d+\s+\d+\s+R`)
	javascriptPattern   = regexp.MustCompile(`/JavaScript\b|/JS\b`)
	embeddedFilePattern = regexp.MustCompile(`/EmbeddedFiles?\b`)
	openActionPattern   = regexp.MustCompile(`/OpenAction\b`)
	pageTypePattern     = regexp.MustCompile(`/Type\s*/Page[^s]`)
	pageCountPattern    = regexp.MustCompile(`/Count\s+(\d+)`)
)

// Inspect reports structure and risk markers for a document. The
// marker scans run over the raw bytes so they keep working on files
// the structural parser rejects; only image analysis and exact page
// dimensions require a successful parse.
func Inspect(b []byte) (*InspectionReport, error) {
	if !hasPDFHeader(b) {
		return nil, fmt.Errorf("%w: missing %%PDF header", ErrNotPDF)
	}

	report := &InspectionReport{
		Encrypted:        encryptPattern.Match(b),
		HasJavaScript:    javascriptPattern.Match(b),
		HasEmbeddedFiles: embeddedFilePattern.Match(b),
		HasOpenAction:    openActionPattern.Match(b),
	}

	ctx, err := readContext(b)
	if err != nil {
		report.PageCount = countPagesRaw(b)
		return report, nil
	}

	report.Parsed = true
	report.PageCount = ctx.PageCount
	if dims, err := ctx.PageDims(); err == nil && len(dims) == ctx.PageCount {
		report.Pages = make([]PageDim, len(dims))
		for i, d := range dims {
			report.Pages[i] = PageDim{Width: d.Width, Height: d.Height}
		}
	}

	countImages(ctx, report)
	return report, nil
}

// countImages tallies distinct image objects across all pages and
// probes JPEG streams for EXIF payloads.
func countImages(ctx *model.Context, report *InspectionReport) {
	if ctx.Optimize == nil {
		return
	}
	seen := make(map[int]bool)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		for _, objNr := range pdfcpu.ImageObjNrs(ctx, pageNr) {
			if seen[objNr] {
				continue
			}
			seen[objNr] = true
			report.ImageCount++
			if imageHasEXIF(ctx, objNr) {
				report.ImagesWithEXIF++
			}
		}
	}
}

// imageHasEXIF reports whether the image object is a JPEG stream with
// decodable EXIF data. Only DCT-encoded streams are probed: their raw
// bytes are the JPEG file as embedded, segments included.
func imageHasEXIF(ctx *model.Context, objNr int) bool {
	entry, found := ctx.Table[objNr]
	if !found || entry == nil || entry.Free || entry.Object == nil {
		return false
	}
	sd, ok := entry.Object.(types.StreamDict)
	if !ok {
		return false
	}
	if !isJPEGStream(sd) || len(sd.Raw) == 0 {
		return false
	}
	_, err := exif.Decode(bytes.NewReader(sd.Raw))
	return err == nil
}

// isJPEGStream reports whether the stream's filter chain includes
// DCTDecode.
func isJPEGStream(sd types.StreamDict) bool {
	for _, f := range sd.FilterPipeline {
		if f.Name == "DCTDecode" {
			return true
		}
	}
	if o, found := sd.Find("Filter"); found {
		if name, ok := o.(types.Name); ok && name == "DCTDecode" {
			return true
		}
	}
	return false
}

// countPagesRaw estimates the page count from raw bytes for documents
// the parser cannot open. Counts /Type /Page entries first, then falls
// back to the page tree's /Count value.
func countPagesRaw(data []byte) int {
	if matches := pageTypePattern.FindAllIndex(data, -1); len(matches) > 0 {
		return len(matches)
	}
	if m := pageCountPattern.FindSubmatch(data); len(m) >= 2 {
		if n, err := strconv.Atoi(string(m[1])); err == nil {
			return n
		}
	}
	return 0
}
