// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import "errors"

// Error kinds for the redaction pipeline. Failures surface to callers
// as a structured OperationResult; these sentinels let call sites and
// the web layer classify them with errors.Is.
var (
	// ErrInvalidDocument means the input is not a parsable PDF. Fatal:
	// the operation fails before any region is processed.
	ErrInvalidDocument = errors.New("invalid input document")

	// ErrInvalidRegion means a region violates the geometric invariant
	// or targets a page outside the document. Non-fatal: the region is
	// skipped with a warning and processing continues.
	ErrInvalidRegion = errors.New("invalid redaction region")

	// ErrPageAssembly means a source page could not be copied into the
	// output. Fatal: a missing or reordered page would silently defeat
	// the redaction guarantee for the whole document.
	ErrPageAssembly = errors.New("page assembly failed")

	// ErrRenderFailed means a sanitize page could not be rendered or
	// its raster could not be encoded. Fatal: a half-sanitized document
	// must never be returned as success.
	ErrRenderFailed = errors.New("page rendering failed")

	// ErrResourceLimit means the operation exceeded a configured bound
	// (document size, region count, render pixels, or the operation
	// timeout). Fatal, but distinct so callers can retry with a lower
	// resolution.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrVerification means the sanitized output failed the
	// irrecoverability check: a sanitize page still carried extractable
	// text. Fatal; the output is discarded.
	ErrVerification = errors.New("sanitized output verification failed")
)
