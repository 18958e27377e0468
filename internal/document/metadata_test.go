// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"foia-stream/internal/testutil"
)

func TestPDFDateString(t *testing.T) {
	ts := time.Date(2024, time.January, 31, 9, 30, 0, 0, time.UTC)
	got := pdfDateString(ts)
	want := "D:20240131093000Z00'00'"
	if got != want {
		t.Errorf("pdfDateString() = %q, want %q", got, want)
	}
}

func TestPDFDateString_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2024, time.June, 1, 20, 0, 0, 0, loc)
	got := pdfDateString(ts)
	want := "D:20240602010000Z00'00'"
	if got != want {
		t.Errorf("pdfDateString() = %q, want %q", got, want)
	}
}

func TestScrubInfoDict_FullScrub(t *testing.T) {
	d := types.NewDict()
	d["Title"] = types.StringLiteral("Internal Memo")
	d["Author"] = types.StringLiteral("J. Smith")
	d["Subject"] = types.StringLiteral("Personnel")
	d["Keywords"] = types.StringLiteral("confidential")
	d["Producer"] = types.StringLiteral("SomeOffice 9.1")

	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	scrubInfoDict(d, true, "foia-stream", now)

	for _, key := range identifyingInfoKeys {
		if _, found := d.Find(key); found {
			t.Errorf("key %s should have been removed", key)
		}
	}
	if v, _ := d.Find("Producer"); v != types.StringLiteral("foia-stream") {
		t.Errorf("Producer = %v, want foia-stream", v)
	}
	if v, _ := d.Find("Creator"); v != types.StringLiteral("foia-stream") {
		t.Errorf("Creator = %v, want foia-stream", v)
	}
	if v, _ := d.Find("ModDate"); v != types.StringLiteral(pdfDateString(now)) {
		t.Errorf("ModDate = %v, want %s", v, pdfDateString(now))
	}
}

func TestScrubInfoDict_PreserveKeepsIdentity(t *testing.T) {
	d := types.NewDict()
	d["Title"] = types.StringLiteral("Quarterly Report")
	d["Author"] = types.StringLiteral("A. Author")
	d["Producer"] = types.StringLiteral("SomeOffice 9.1")

	now := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	scrubInfoDict(d, false, "foia-stream", now)

	if v, _ := d.Find("Title"); v != types.StringLiteral("Quarterly Report") {
		t.Errorf("Title should be preserved, got %v", v)
	}
	if v, _ := d.Find("Author"); v != types.StringLiteral("A. Author") {
		t.Errorf("Author should be preserved, got %v", v)
	}
	if v, _ := d.Find("Producer"); v != types.StringLiteral("SomeOffice 9.1") {
		t.Errorf("Producer should be untouched in preserve mode, got %v", v)
	}
	// The modification date is stamped in both modes.
	if _, found := d.Find("ModDate"); !found {
		t.Error("ModDate should be set even in preserve mode")
	}
}

func TestScrubMetadata_RoundTrip(t *testing.T) {
	src := testutil.TextPDF("some content")
	now := time.Date(2024, time.July, 1, 8, 0, 0, 0, time.UTC)

	out, err := ScrubMetadata(src, true, "foia-stream/1.0", now)
	if err != nil {
		t.Fatalf("ScrubMetadata failed: %v", err)
	}

	ctx, err := readContext(out)
	if err != nil {
		t.Fatalf("scrubbed output does not parse: %v", err)
	}
	if ctx.Info == nil {
		t.Fatal("scrubbed output has no information dictionary")
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		t.Fatalf("cannot resolve information dictionary: %v", err)
	}
	if _, found := d.Find("ModDate"); !found {
		t.Error("scrubbed output missing ModDate")
	}
}

func TestScrubMetadata_RejectsGarbage(t *testing.T) {
	_, err := ScrubMetadata([]byte("garbage"), true, "foia-stream", time.Now())
	if err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}
