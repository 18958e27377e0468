// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package testutil builds small, well-formed PDF documents in memory
// for tests. The generator writes the file format directly so tests do
// not depend on fixture files or on the libraries under test.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// PageSpec describes one page of a generated document.
type PageSpec struct {
	// Width and Height are the page dimensions in PDF points.
	Width  float64
	Height float64
	// Text, when non-empty, is drawn near the top-left corner with the
	// built-in Helvetica font so text extraction finds it.
	Text string
}

// LetterPage returns a US Letter sized page carrying the given text.
func LetterPage(text string) PageSpec {
	return PageSpec{Width: 612, Height: 792, Text: text}
}

// TextPDF builds a document with one US Letter page per argument.
func TextPDF(pageTexts ...string) []byte {
	pages := make([]PageSpec, len(pageTexts))
	for i, text := range pageTexts {
		pages[i] = LetterPage(text)
	}
	return PDF(pages...)
}

// PDF builds a complete document from the given pages. The output has
// a correct cross-reference table, so strict parsers accept it.
//
// Object layout: 1 catalog, 2 page tree, then a page object and a
// content stream per page, and finally one shared font object.
func PDF(pages ...PageSpec) []byte {
	if len(pages) == 0 {
		pages = []PageSpec{LetterPage("")}
	}

	n := len(pages)
	fontObj := 2*n + 3
	objectPositions := make(map[int]int)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	objectPositions[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, n)
	for i := 0; i < n; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objectPositions[2] = buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), n)

	for i, page := range pages {
		pageObj := 3 + 2*i
		contentObj := pageObj + 1

		objectPositions[pageObj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] "+
			"/Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>\nendobj\n",
			pageObj, page.Width, page.Height, fontObj, contentObj)

		content := contentStream(page)
		objectPositions[contentObj] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			contentObj, len(content), content)
	}

	objectPositions[fontObj] = buf.Len()
	fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n",
		fontObj)

	xrefStart := buf.Len()
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", fontObj+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= fontObj; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", objectPositions[i])
	}

	buf.WriteString("trailer\n")
	fmt.Fprintf(&buf, "<< /Size %d /Root 1 0 R >>\n", fontObj+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefStart)

	return buf.Bytes()
}

// contentStream renders the page text as a content stream, or returns
// an empty stream for blank pages.
func contentStream(page PageSpec) string {
	if page.Text == "" {
		return ""
	}
	return fmt.Sprintf("BT\n/F1 12 Tf\n72 %g Td\n(%s) Tj\nET",
		page.Height-72, escapeText(page.Text))
}

// escapeText escapes the characters that delimit PDF string literals.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "(", "\\(")
	s = strings.ReplaceAll(s, ")", "\\)")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
