// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package security provides best-effort scrubbing of in-memory document
// buffers. An uploaded document holds unredacted source material, so
// callers zero its bytes as soon as the operation no longer needs them.
package security

// Zero overwrites b with zeros. It is safe to call with a nil slice.
//
// Limitations: Go's garbage collector may move or copy memory at any
// time, and intermediate copies made before Zero runs cannot be reached.
// Zeroing reduces the window of exposure but cannot guarantee that no
// copies exist elsewhere in the heap. Do not rely on this for
// cryptographic-strength memory protection.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// SecureBuffer wraps a sensitive byte slice with memory scrubbing on
// Clear. It takes ownership of the slice it is given; the caller must
// not retain other references if Clear is expected to be effective.
type SecureBuffer struct {
	data []byte
}

// NewSecureBuffer wraps b without copying it.
func NewSecureBuffer(b []byte) *SecureBuffer {
	return &SecureBuffer{data: b}
}

// Bytes returns the underlying slice. The slice is live; it becomes
// all-zero after Clear.
func (sb *SecureBuffer) Bytes() []byte {
	return sb.data
}

// Len returns the buffer length, zero after Clear.
func (sb *SecureBuffer) Len() int {
	return len(sb.data)
}

// Clear overwrites the buffer with zeros and releases it. Calling
// Clear more than once is harmless.
func (sb *SecureBuffer) Clear() {
	if sb.data != nil {
		Zero(sb.data)
		sb.data = nil
	}
}
