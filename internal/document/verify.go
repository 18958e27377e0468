// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// textShowOperators are the content stream operators that paint glyphs.
// BT is included even though it shows nothing by itself: a sanitized
// page has no business opening a text object at all.
var textShowOperators = map[string]bool{
	"BT": true,
	"Tj": true,
	"TJ": true,
}

// VerifySanitized checks the irrecoverability property on the assembled
// output: every page in sanitizePages (0-based) must contain exactly
// one image object and no text-show operators, and a second,
// independent PDF library must extract no text from it. Any violation
// means the output would ship recoverable content and is reported as an
// error so the operation fails instead.
func VerifySanitized(b []byte, sanitizePages []int) error {
	if len(sanitizePages) == 0 {
		return nil
	}

	ctx, err := readContext(b)
	if err != nil {
		return fmt.Errorf("cannot verify output: %w", err)
	}

	for _, page := range sanitizePages {
		pageNr := page + 1
		if pageNr < 1 || pageNr > ctx.PageCount {
			return fmt.Errorf("cannot verify page %d: output has %d page(s)", pageNr, ctx.PageCount)
		}

		if err := verifyPageContent(ctx, pageNr); err != nil {
			return err
		}

		images := pdfcpu.ImageObjNrs(ctx, pageNr)
		if len(images) != 1 {
			return fmt.Errorf("page %d carries %d image objects, want exactly 1", pageNr, len(images))
		}
	}

	return verifyNoExtractableText(b, sanitizePages)
}

// verifyPageContent scans one page's content stream for text-show
// operators.
func verifyPageContent(ctx *model.Context, pageNr int) error {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return fmt.Errorf("failed to read page %d content: %w", pageNr, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read page %d content: %w", pageNr, err)
	}
	if op := findTextOperator(data); op != "" {
		return fmt.Errorf("page %d still contains text operator %q", pageNr, op)
	}
	return nil
}

// verifyNoExtractableText runs a second PDF library over the sanitized
// pages and requires that it extracts nothing. Using an independent
// parser guards against blind spots shared with the writer.
func verifyNoExtractableText(b []byte, sanitizePages []int) error {
	r, err := ledongthuc.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		// The primary parser already accepted the document; a secondary
		// parse failure still means verification cannot vouch for it.
		return fmt.Errorf("secondary parser rejected output: %w", err)
	}

	for _, page := range sanitizePages {
		pageNr := page + 1
		if pageNr > r.NumPage() {
			return fmt.Errorf("secondary parser sees %d page(s), cannot verify page %d", r.NumPage(), pageNr)
		}
		p := r.Page(pageNr)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// Extraction errors on an image-only page are expected noise.
			continue
		}
		if strings.TrimSpace(text) != "" {
			return fmt.Errorf("page %d yields extractable text after sanitization", pageNr)
		}
	}
	return nil
}

// findTextOperator tokenizes a content stream just enough to tell
// operators apart from data, and returns the first text-show operator
// found, or "". String literals, hex strings, names, and comments are
// skipped so their contents cannot masquerade as operators.
func findTextOperator(data []byte) string {
	i := 0
	for i < len(data) {
		c := data[i]
		switch {
		case c == '(':
			i = skipStringLiteral(data, i)
		case c == '<':
			if i+1 < len(data) && data[i+1] == '<' {
				i += 2
			} else {
				i = skipHexString(data, i)
			}
		case c == '/':
			i++
			for i < len(data) && isRegularChar(data[i]) {
				i++
			}
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '\'' || c == '"':
			// The move-and-show operators.
			return string(c)
		case isRegularChar(c):
			start := i
			for i < len(data) && isRegularChar(data[i]) {
				i++
			}
			if tok := string(data[start:i]); textShowOperators[tok] {
				return tok
			}
		default:
			i++
		}
	}
	return ""
}

// skipStringLiteral advances past a parenthesized string, honoring
// backslash escapes and balanced nested parentheses.
func skipStringLiteral(data []byte, i int) int {
	depth := 0
	for i < len(data) {
		switch data[i] {
		case '\\':
			i++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return i
}

// skipHexString advances past a <...> hex string.
func skipHexString(data []byte, i int) int {
	for i < len(data) && data[i] != '>' {
		i++
	}
	return i + 1
}

// isRegularChar reports whether c can appear in an operator or name
// token: neither whitespace nor a PDF delimiter.
func isRegularChar(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return false
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}
