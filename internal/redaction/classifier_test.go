// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassifyPages_Partition(t *testing.T) {
	regions := []RedactionRegion{
		{Page: 1, X: 10, Y: 10, Width: 50, Height: 20},
		{Page: 0, X: 5, Y: 5, Width: 30, Height: 10},
		{Page: 1, X: 100, Y: 200, Width: 40, Height: 15},
	}

	c := ClassifyPages(3, regions)

	if !c.IsSanitize(0) {
		t.Error("page 0 should be sanitize")
	}
	if !c.IsSanitize(1) {
		t.Error("page 1 should be sanitize")
	}
	if c.IsSanitize(2) {
		t.Error("page 2 should be untouched")
	}
	if got := len(c.RegionsFor(1)); got != 2 {
		t.Errorf("page 1 has %d regions, want 2", got)
	}
	if got := c.SanitizePages(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("SanitizePages() = %v, want [0 1]", got)
	}
}

func TestClassifyPages_OutOfRangeSkipped(t *testing.T) {
	regions := []RedactionRegion{
		{Page: 0, X: 10, Y: 10, Width: 50, Height: 20},
		{Page: 999, X: 10, Y: 10, Width: 50, Height: 20},
	}

	c := ClassifyPages(1, regions)

	if got := len(c.AppliedRegions()); got != 1 {
		t.Errorf("applied %d regions, want 1", got)
	}
	if got := len(c.Skipped()); got != 1 {
		t.Fatalf("skipped %d regions, want 1", got)
	}
	if c.Skipped()[0].Region.Page != 999 {
		t.Errorf("skipped region targets page %d, want 999", c.Skipped()[0].Region.Page)
	}
	// The invalid region must not land on any page's set.
	for page := 0; page < c.PageCount; page++ {
		for _, r := range c.RegionsFor(page) {
			if r.Page == 999 {
				t.Errorf("out-of-range region leaked onto page %d", page)
			}
		}
	}
	warnings := c.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if !strings.Contains(warnings[0], "page 999") {
		t.Errorf("warning %q should name the offending page", warnings[0])
	}
}

func TestClassifyPages_InvalidDimensionsSkipped(t *testing.T) {
	regions := []RedactionRegion{
		{Page: 0, X: 10, Y: 10, Width: 0, Height: 20},
		{Page: 0, X: 10, Y: 10, Width: 50, Height: -3},
	}

	c := ClassifyPages(1, regions)

	if c.IsSanitize(0) {
		t.Error("page 0 should stay untouched when all its regions are invalid")
	}
	if got := len(c.Skipped()); got != 2 {
		t.Errorf("skipped %d regions, want 2", got)
	}
}

func TestClassifyPages_ZeroRegions(t *testing.T) {
	c := ClassifyPages(4, nil)

	for page := 0; page < 4; page++ {
		if c.IsSanitize(page) {
			t.Errorf("page %d should be untouched with zero regions", page)
		}
	}
	if len(c.SanitizePages()) != 0 {
		t.Errorf("SanitizePages() = %v, want empty", c.SanitizePages())
	}
	if c.Warnings() != nil {
		t.Errorf("Warnings() = %v, want nil", c.Warnings())
	}
}

func TestClassifyPages_Idempotent(t *testing.T) {
	regions := []RedactionRegion{
		{Page: 0, X: 1, Y: 2, Width: 3, Height: 4},
		{Page: 7, X: 1, Y: 2, Width: 3, Height: 4},
		{Page: 2, X: 9, Y: 9, Width: 9, Height: 9},
	}

	first := ClassifyPages(5, regions)
	second := ClassifyPages(5, regions)

	if !reflect.DeepEqual(first.SanitizePages(), second.SanitizePages()) {
		t.Errorf("sanitize sets differ: %v vs %v", first.SanitizePages(), second.SanitizePages())
	}
	if !reflect.DeepEqual(first.AppliedRegions(), second.AppliedRegions()) {
		t.Error("applied region lists differ between identical runs")
	}
	if !reflect.DeepEqual(first.Warnings(), second.Warnings()) {
		t.Error("warning lists differ between identical runs")
	}
}

func TestClassifyPages_AppliedOrderMatchesInput(t *testing.T) {
	regions := []RedactionRegion{
		{Page: 2, X: 1, Y: 1, Width: 1, Height: 1, Reason: "first"},
		{Page: 0, X: 2, Y: 2, Width: 1, Height: 1, Reason: "second"},
		{Page: 9, X: 3, Y: 3, Width: 1, Height: 1, Reason: "skipped"},
		{Page: 1, X: 4, Y: 4, Width: 1, Height: 1, Reason: "third"},
	}

	c := ClassifyPages(3, regions)

	applied := c.AppliedRegions()
	want := []string{"first", "second", "third"}
	if len(applied) != len(want) {
		t.Fatalf("applied %d regions, want %d", len(applied), len(want))
	}
	for i, reason := range want {
		if applied[i].Reason != reason {
			t.Errorf("applied[%d].Reason = %q, want %q", i, applied[i].Reason, reason)
		}
	}
}
