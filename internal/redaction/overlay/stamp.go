// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package overlay draws draft redaction markup on top of existing
// pages. The boxes are vector rectangles stamped over the content, so
// the underlying text survives; output from this package shows where
// redactions will land and is never a sanitized document.
package overlay

import (
	"bytes"
	"fmt"
	"image/color"

	"foia-stream/internal/redaction/geometry"
)

// Box is one filled rectangle on a page, in native page coordinates,
// with an optional label drawn over the fill.
type Box struct {
	Rect  geometry.NativeRect
	Label string
}

// Style sets the fill and label colors for stamped boxes.
type Style struct {
	Fill color.RGBA
	Text color.RGBA
}

// maxLabelPoints caps the label size on tall boxes.
const maxLabelPoints = 14.0

// StampPDF builds a single-page document of the given size whose only
// content is the boxes. The page is laid over a source page of the
// same size, so box coordinates land exactly where they will be
// rasterized in the final output.
func StampPDF(width, height float64, boxes []Box, style Style) []byte {
	content := stampContent(boxes, style)

	objectPositions := make(map[int]int)
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	objectPositions[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	objectPositions[2] = buf.Len()
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	objectPositions[3] = buf.Len()
	fmt.Fprintf(&buf, "3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] "+
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>\nendobj\n",
		width, height)

	objectPositions[4] = buf.Len()
	fmt.Fprintf(&buf, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		len(content), content)

	objectPositions[5] = buf.Len()
	buf.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefStart := buf.Len()
	buf.WriteString("xref\n0 6\n")
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", objectPositions[i])
	}
	buf.WriteString("trailer\n<< /Size 6 /Root 1 0 R >>\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefStart)

	return buf.Bytes()
}

// stampContent renders the boxes as a content stream: one filled
// rectangle per box, then the labels on top.
func stampContent(boxes []Box, style Style) string {
	var b bytes.Buffer

	for _, box := range boxes {
		r := box.Rect
		fmt.Fprintf(&b, "q\n%s rg\n%.2f %.2f %.2f %.2f re\nf\nQ\n",
			rgbOperand(style.Fill), r.X, r.Y, r.Width, r.Height)
	}

	for _, box := range boxes {
		if box.Label == "" {
			continue
		}
		writeLabel(&b, box, style.Text)
	}

	return b.String()
}

// writeLabel draws one label roughly centered in its box. Glyph widths
// are approximated; exact centering needs font metrics the stamp does
// not carry, and draft markup does not warrant them.
func writeLabel(b *bytes.Buffer, box Box, textColor color.RGBA) {
	r := box.Rect
	size := 0.6 * r.Height
	if size > maxLabelPoints {
		size = maxLabelPoints
	}
	if size < 3 {
		return
	}

	textWidth := 0.6 * size * float64(len(box.Label))
	tx := r.X + (r.Width-textWidth)/2
	if tx < r.X+1 {
		tx = r.X + 1
	}
	ty := r.Y + (r.Height-size)/2 + 0.2*size

	fmt.Fprintf(b, "BT\n/F1 %.2f Tf\n%s rg\n%.2f %.2f Td\n(%s) Tj\nET\n",
		size, rgbOperand(textColor), tx, ty, escapeLabel(box.Label))
}

// rgbOperand formats a color for the rg operator, which takes
// components in 0..1.
func rgbOperand(c color.RGBA) string {
	return fmt.Sprintf("%.3f %.3f %.3f", float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// escapeLabel escapes the string literal delimiters.
func escapeLabel(s string) string {
	var b bytes.Buffer
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '(', ')':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
