// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import "time"

// AuditEntry is an immutable record of one applied redaction, created
// exactly once per region that was actually painted. Entries use
// 1-based page numbers because they are read by humans in compliance
// reviews, not by the pipeline.
type AuditEntry struct {
	// Timestamp is when the redaction was applied
	Timestamp time.Time `json:"timestamp"`

	// Page is the 1-based page number for human display
	Page int `json:"page"`

	// AreaDescription is the region's position and size, e.g.
	// "(50, 700) 200x20"
	AreaDescription string `json:"areaDescription"`

	// Reason is the operator-supplied justification, if any
	Reason string `json:"reason,omitempty"`

	// OperatorID identifies who requested the redaction, if known
	OperatorID string `json:"operatorId,omitempty"`
}

// AuditTrail accumulates audit entries for one operation. It is
// append-only: entries are never mutated or removed once recorded, and
// they are emitted in region-processing order, not sorted.
type AuditTrail struct {
	entries []AuditEntry
}

// NewAuditTrail returns an empty trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

// Record appends one entry for an applied region, converting the page
// index to 1-based display numbering, and returns the entry.
func (t *AuditTrail) Record(region RedactionRegion, operatorID string) AuditEntry {
	entry := AuditEntry{
		Timestamp:       time.Now().UTC(),
		Page:            region.Page + 1,
		AreaDescription: region.AreaDescription(),
		Reason:          region.Reason,
		OperatorID:      operatorID,
	}
	t.entries = append(t.entries, entry)
	return entry
}

// Entries returns a copy of the recorded entries in recording order.
func (t *AuditTrail) Entries() []AuditEntry {
	out := make([]AuditEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Count returns the number of recorded entries.
func (t *AuditTrail) Count() int {
	return len(t.entries)
}
