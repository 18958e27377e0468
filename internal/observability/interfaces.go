// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

// Component names used in operation records.
const (
	ComponentEngine    = "redaction.engine"
	ComponentRenderer  = "redaction.renderer"
	ComponentAssembler = "document.assembler"
	ComponentWeb       = "web"
	ComponentAudit     = "audit"
)

// Observable interface for all components that need observability
type Observable interface {
	// GetComponentName returns the component identifier
	GetComponentName() string
}
