// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import (
	"errors"
	"testing"
)

func TestCheckDocumentSize(t *testing.T) {
	limits := Limits{MaxDocumentBytes: 1024}

	if err := limits.CheckDocumentSize(1024); err != nil {
		t.Errorf("size at limit should pass: %v", err)
	}
	err := limits.CheckDocumentSize(1025)
	if err == nil {
		t.Fatal("size over limit should fail")
	}
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("error should wrap ErrResourceLimit, got %v", err)
	}
}

func TestCheckDocumentSize_Disabled(t *testing.T) {
	limits := Limits{MaxDocumentBytes: 0}
	if err := limits.CheckDocumentSize(1 << 40); err != nil {
		t.Errorf("zero limit should disable the check: %v", err)
	}
}

func TestCheckRegionCount(t *testing.T) {
	limits := Limits{MaxRegions: 2}

	if err := limits.CheckRegionCount(2); err != nil {
		t.Errorf("count at limit should pass: %v", err)
	}
	err := limits.CheckRegionCount(3)
	if err == nil {
		t.Fatal("count over limit should fail")
	}
	if !errors.Is(err, ErrResourceLimit) {
		t.Errorf("error should wrap ErrResourceLimit, got %v", err)
	}
}

func TestCheckRenderBudget(t *testing.T) {
	cases := []struct {
		name    string
		limits  Limits
		width   float64
		height  float64
		dpi     int
		wantErr bool
	}{
		{"letter at 150 DPI within default", DefaultLimits(), 612, 792, 150, false},
		{"letter at 600 DPI within default", DefaultLimits(), 612, 792, 600, false},
		{"poster at 600 DPI exceeds default", DefaultLimits(), 2592, 2592, 600, true},
		{"tiny budget rejects letter", Limits{MaxRenderPixels: 1000}, 612, 792, 72, true},
		{"zero budget disables check", Limits{MaxRenderPixels: 0}, 1e6, 1e6, 600, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.limits.CheckRenderBudget(tc.width, tc.height, tc.dpi)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected render budget error")
				}
				if !errors.Is(err, ErrResourceLimit) {
					t.Errorf("error should wrap ErrResourceLimit, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()
	if limits.MaxDocumentBytes <= 0 {
		t.Error("MaxDocumentBytes should have a positive default")
	}
	if limits.MaxRegions <= 0 {
		t.Error("MaxRegions should have a positive default")
	}
	if limits.MaxRenderPixels <= 0 {
		t.Error("MaxRenderPixels should have a positive default")
	}
	if limits.OperationTimeout <= 0 {
		t.Error("OperationTimeout should have a positive default")
	}
}
