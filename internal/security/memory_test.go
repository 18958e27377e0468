// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"bytes"
	"testing"
)

func TestZero_OverwritesSlice(t *testing.T) {
	b := []byte("sensitive document bytes")
	Zero(b)
	if !bytes.Equal(b, make([]byte, len(b))) {
		t.Errorf("expected all-zero slice, got %q", b)
	}
}

func TestZero_NilIsSafe(t *testing.T) {
	Zero(nil)
}

func TestSecureBuffer_HoldsBytes(t *testing.T) {
	sb := NewSecureBuffer([]byte("%PDF-1.7"))
	if string(sb.Bytes()) != "%PDF-1.7" {
		t.Errorf("expected stored bytes, got %q", sb.Bytes())
	}
	if sb.Len() != 8 {
		t.Errorf("expected length 8, got %d", sb.Len())
	}
}

func TestSecureBuffer_Clear_ZeroesData(t *testing.T) {
	// Keep a second reference to observe the zeroing, since Clear nils
	// the internal slice.
	raw := []byte("confidential")
	sb := NewSecureBuffer(raw)
	sb.Clear()

	if sb.Len() != 0 {
		t.Errorf("expected empty buffer after Clear, got length %d", sb.Len())
	}
	if sb.Bytes() != nil {
		t.Error("expected nil slice after Clear")
	}
	if !bytes.Equal(raw, make([]byte, len(raw))) {
		t.Errorf("expected underlying bytes zeroed, got %q", raw)
	}
}

func TestSecureBuffer_Clear_Idempotent(t *testing.T) {
	sb := NewSecureBuffer([]byte("data"))
	sb.Clear()
	// Calling Clear again should not panic
	sb.Clear()
}

func TestSecureBuffer_LargeValue(t *testing.T) {
	large := make([]byte, 10000)
	for i := range large {
		large[i] = byte('a' + i%26)
	}
	sb := NewSecureBuffer(large)
	if sb.Len() != 10000 {
		t.Error("large buffer not stored correctly")
	}
	sb.Clear()
	if !bytes.Equal(large, make([]byte, 10000)) {
		t.Error("large buffer not cleared correctly")
	}
}
