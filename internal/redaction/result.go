// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

// RedactionStrategy identifies which of the two sanitization paths
// produced an output document. The strategy is fixed by the call site:
// Apply always rasterizes, Preview always overlays. There is no runtime
// flag to select one, so a weak preview can never ship as final output.
type RedactionStrategy int

const (
	// StrategyRasterized renders each affected page to a bitmap, paints
	// the fill blocks, and replaces the page with an image-only
	// version. No text or vector data survives on those pages. This is
	// the only strategy permitted for compliance output.
	StrategyRasterized RedactionStrategy = iota

	// StrategyVectorOverlay draws opaque rectangles on top of the
	// existing page content without rasterizing. The covered content
	// remains in the file, so this strategy is preview-only.
	StrategyVectorOverlay
)

// String returns the string representation of the strategy
func (rs RedactionStrategy) String() string {
	switch rs {
	case StrategyRasterized:
		return "rasterized"
	case StrategyVectorOverlay:
		return "vector_overlay"
	default:
		return "unknown"
	}
}

// ParseRedactionStrategy converts a string to a RedactionStrategy
func ParseRedactionStrategy(s string) RedactionStrategy {
	switch s {
	case "vector_overlay":
		return StrategyVectorOverlay
	default:
		return StrategyRasterized
	}
}

// OperationResult is the outcome of one redaction operation. On failure
// OutputBytes is nil and AuditEntries holds only the entries recorded
// before the failing step; partial progress is visible but the caller
// must treat the whole operation as failed.
type OperationResult struct {
	// Success indicates whether the operation completed fully
	Success bool `json:"success"`

	// OutputBytes is the sanitized document; nil on failure. It is a
	// freshly constructed byte sequence that never aliases the input.
	OutputBytes []byte `json:"-"`

	// RedactionCount is the number of regions actually applied,
	// excluding regions skipped as invalid
	RedactionCount int `json:"redactionCount"`

	// AuditEntries records one entry per applied region, in
	// region-processing order
	AuditEntries []AuditEntry `json:"auditEntries,omitempty"`

	// Warnings lists non-fatal problems, one per skipped region
	Warnings []string `json:"warnings,omitempty"`

	// Error is the flattened failure message; empty on success
	Error string `json:"error,omitempty"`

	// StrategyUsed names the path that produced OutputBytes
	StrategyUsed RedactionStrategy `json:"-"`

	// Strategy is the string form of StrategyUsed for serialization
	Strategy string `json:"strategy"`

	// err retains the underlying error so callers inside the process
	// can classify the failure with errors.Is.
	err error
}

// failure builds a failed result, preserving any audit entries and
// warnings accumulated before the failing step.
func failure(strategy RedactionStrategy, err error, entries []AuditEntry, warnings []string) *OperationResult {
	return &OperationResult{
		Success:      false,
		AuditEntries: entries,
		Warnings:     warnings,
		Error:        err.Error(),
		StrategyUsed: strategy,
		Strategy:     strategy.String(),
		err:          err,
	}
}

// Err returns the underlying error for a failed result, or nil.
func (r *OperationResult) Err() error {
	return r.err
}
