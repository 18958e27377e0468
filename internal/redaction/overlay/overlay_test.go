// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package overlay

import (
	"bytes"
	"context"
	"image/color"
	"testing"

	"foia-stream/internal/document"
	"foia-stream/internal/redaction/geometry"
	"foia-stream/internal/testutil"
)

var testStyle = Style{
	Fill: color.RGBA{A: 255},
	Text: color.RGBA{R: 255, G: 255, B: 255, A: 255},
}

func testBox(label string) Box {
	return Box{
		Rect:  geometry.NativeRect{X: 50, Y: 72, Width: 200, Height: 20},
		Label: label,
	}
}

func TestStampPDF_Parses(t *testing.T) {
	stamp := StampPDF(612, 792, []Box{testBox("")}, testStyle)

	info, err := document.ReadInfo(stamp)
	if err != nil {
		t.Fatalf("stamp does not parse: %v", err)
	}
	if info.PageCount != 1 {
		t.Errorf("expected 1 page, got %d", info.PageCount)
	}
	if info.Pages[0].Width != 612 || info.Pages[0].Height != 792 {
		t.Errorf("expected 612x792, got %gx%g", info.Pages[0].Width, info.Pages[0].Height)
	}
}

func TestStampPDF_ContainsRectangleFill(t *testing.T) {
	stamp := StampPDF(612, 792, []Box{testBox("")}, testStyle)

	if !bytes.Contains(stamp, []byte("50.00 72.00 200.00 20.00 re")) {
		t.Error("stamp missing rectangle operator at box coordinates")
	}
	if !bytes.Contains(stamp, []byte("\nf\n")) {
		t.Error("stamp missing fill operator")
	}
}

func TestStampPDF_Label(t *testing.T) {
	withLabel := StampPDF(612, 792, []Box{testBox("REDACTED")}, testStyle)
	if !bytes.Contains(withLabel, []byte("(REDACTED) Tj")) {
		t.Error("label text missing from stamp")
	}

	noLabel := StampPDF(612, 792, []Box{testBox("")}, testStyle)
	if bytes.Contains(noLabel, []byte("Tj")) {
		t.Error("unlabeled stamp should carry no text operators")
	}
}

func TestStampPDF_EscapesLabel(t *testing.T) {
	stamp := StampPDF(612, 792, []Box{testBox("a(b)c")}, testStyle)
	if !bytes.Contains(stamp, []byte(`(a\(b\)c) Tj`)) {
		t.Error("label delimiters not escaped")
	}
}

func TestStampPDF_TinyBoxSkipsLabel(t *testing.T) {
	box := Box{
		Rect:  geometry.NativeRect{X: 10, Y: 10, Width: 40, Height: 3},
		Label: "REDACTED",
	}
	stamp := StampPDF(612, 792, []Box{box}, testStyle)
	if bytes.Contains(stamp, []byte("Tj")) {
		t.Error("label should be skipped when the box is too small to carry it")
	}
}

func TestApply_MarksPageWithoutRemovingContent(t *testing.T) {
	src := testutil.TextPDF("sensitive line", "second page")
	info, err := document.ReadInfo(src)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}

	boxes := map[int][]Box{0: {testBox("REDACTED")}}
	out, err := Apply(context.Background(), src, info, boxes, testStyle)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	outInfo, err := document.ReadInfo(out)
	if err != nil {
		t.Fatalf("marked output does not parse: %v", err)
	}
	if outInfo.PageCount != 2 {
		t.Errorf("expected 2 pages, got %d", outInfo.PageCount)
	}

	// Draft markup leaves the original text in place, so the marked
	// page must fail a sanitization check.
	if err := document.VerifySanitized(out, []int{0}); err == nil {
		t.Error("marked page should still carry its original content")
	}
}

func TestApply_NoBoxesReturnsSource(t *testing.T) {
	src := testutil.TextPDF("page")
	info, err := document.ReadInfo(src)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}

	out, err := Apply(context.Background(), src, info, nil, testStyle)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Error("no boxes should leave the document untouched")
	}
}

func TestApply_PageOutOfRange(t *testing.T) {
	src := testutil.TextPDF("page")
	info, err := document.ReadInfo(src)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}

	boxes := map[int][]Box{3: {testBox("")}}
	if _, err := Apply(context.Background(), src, info, boxes, testStyle); err == nil {
		t.Fatal("expected error for out-of-range page")
	}
}

func TestApply_CancelledContext(t *testing.T) {
	src := testutil.TextPDF("page")
	info, err := document.ReadInfo(src)
	if err != nil {
		t.Fatalf("ReadInfo failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	boxes := map[int][]Box{0: {testBox("")}}
	if _, err := Apply(ctx, src, info, boxes, testStyle); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
