// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Default option values applied by WithDefaults.
const (
	// DefaultResolutionDPI is the render resolution used when the caller
	// does not specify one.
	DefaultResolutionDPI = 150

	// DefaultLabelText is stamped over redacted areas when labeling is
	// enabled and no custom text is supplied.
	DefaultLabelText = "REDACTED"
)

// RGBColor is an 8-bit RGB triple. The zero value is black, which is
// also the default fill for redaction blocks.
type RGBColor struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into an RGBColor.
func ParseHexColor(s string) (RGBColor, error) {
	hexPart := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hexPart) != 6 {
		return RGBColor{}, fmt.Errorf("invalid color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hexPart, 16, 32)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGBColor{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// RGBA returns the color as an opaque stdlib color value.
func (c RGBColor) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex returns the color as "#rrggbb".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Contrasting returns white for dark colors and black for light ones,
// so label text stays readable on any fill.
func (c RGBColor) Contrasting() RGBColor {
	// Rec. 601 luma weights.
	luma := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
	if luma < 128 {
		return RGBColor{R: 0xff, G: 0xff, B: 0xff}
	}
	return RGBColor{}
}

// RedactionOptions controls how a redaction operation is performed.
// Every field is explicit; defaults are applied once by WithDefaults
// before the pipeline runs, never at point of use.
type RedactionOptions struct {
	// ResolutionDPI is the resolution sanitized pages are rendered at.
	// Higher values keep more visual fidelity at the cost of memory and
	// output size. Defaults to DefaultResolutionDPI.
	ResolutionDPI int `json:"resolutionDPI"`

	// FillColor is the opaque color painted over redacted areas. The
	// zero value is black.
	FillColor RGBColor `json:"fillColor"`

	// AddLabel stamps LabelText centered over each redacted area.
	AddLabel bool `json:"addLabel"`

	// LabelText is the text stamped when AddLabel is set. Defaults to
	// DefaultLabelText.
	LabelText string `json:"labelText,omitempty"`

	// OperatorID identifies who requested the redaction; recorded on
	// every audit entry.
	OperatorID string `json:"operatorId,omitempty"`

	// DocumentID identifies the document in observability output and
	// the audit journal.
	DocumentID string `json:"documentId,omitempty"`

	// PreserveMetadata keeps the document information dictionary as-is.
	// When false (the default for apply), identifying metadata is
	// cleared and the producer/creator fields are stamped with the tool
	// identifier.
	PreserveMetadata bool `json:"preserveMetadata"`
}

// DefaultOptions returns the options the apply path uses when the
// caller supplies none.
func DefaultOptions() RedactionOptions {
	return RedactionOptions{
		ResolutionDPI: DefaultResolutionDPI,
		LabelText:     DefaultLabelText,
	}
}

// WithDefaults returns a copy of o with zero-valued fields replaced by
// their defaults.
func (o RedactionOptions) WithDefaults() RedactionOptions {
	if o.ResolutionDPI <= 0 {
		o.ResolutionDPI = DefaultResolutionDPI
	}
	if o.LabelText == "" {
		o.LabelText = DefaultLabelText
	}
	return o
}
