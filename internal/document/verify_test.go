// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"context"
	"image/color"
	"testing"

	"foia-stream/internal/testutil"
)

func TestFindTextOperator(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"image only", "q 612 0 0 792 0 0 cm /Im0 Do Q", ""},
		{"empty", "", ""},
		{"begin text", "BT /F1 12 Tf (x) Tj ET", "BT"},
		{"show text", "(x) Tj", "Tj"},
		{"show array", "[(a) -120 (b)] TJ", "TJ"},
		{"next line show", "(x) '", "'"},
		{"spaced show", `(x) "`, `"`},
		{"operators inside string", "(BT Tj TJ hidden) q Q", ""},
		{"escaped paren in string", `(a\) BT still inside) q`, ""},
		{"nested parens in string", "(outer (inner BT) done) q", ""},
		{"hex string", "<42542054 6a> q", ""},
		{"name is not operator", "/BT /Tj q", ""},
		{"comment", "% BT Tj TJ\nq Q", ""},
		{"dict open is not hex", "<< /Length 5 >> q", ""},
		{"unterminated string", "(never closed BT", ""},
		{"numbers are not operators", "12 0.5 -3 q", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findTextOperator([]byte(tt.content)); got != tt.want {
				t.Errorf("findTextOperator(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestVerifySanitized_NoPagesIsNoop(t *testing.T) {
	if err := VerifySanitized([]byte("anything"), nil); err != nil {
		t.Errorf("expected nil for empty page list, got %v", err)
	}
}

func TestVerifySanitized_FailsOnTextPage(t *testing.T) {
	doc := testutil.TextPDF("secret content")
	if err := VerifySanitized(doc, []int{0}); err == nil {
		t.Fatal("text-bearing page must fail verification")
	}
}

func TestVerifySanitized_PassesOnReplacedPage(t *testing.T) {
	src := testutil.TextPDF("public intro", "name and ssn here")
	info, err := ReadInfo(src)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}

	replacements := map[int][]byte{
		1: testutil.JPEG(612, 792, color.RGBA{A: 255}),
	}
	out, err := Assemble(context.Background(), src, info, replacements)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if err := VerifySanitized(out, []int{1}); err != nil {
		t.Errorf("replaced page should verify clean: %v", err)
	}

	// The untouched page still carries text, so verifying it fails.
	if err := VerifySanitized(out, []int{0}); err == nil {
		t.Error("untouched text page should fail verification")
	}
}

func TestVerifySanitized_PageOutOfRange(t *testing.T) {
	doc := testutil.TextPDF("single page")
	if err := VerifySanitized(doc, []int{5}); err == nil {
		t.Fatal("expected error for out-of-range page")
	}
}

func TestVerifySanitized_GarbageInput(t *testing.T) {
	if err := VerifySanitized([]byte("garbage"), []int{0}); err == nil {
		t.Fatal("expected error for unparsable input")
	}
}
