// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import (
	"fmt"
	"sort"
)

// SkippedRegion pairs an invalid region with the warning recorded for
// it.
type SkippedRegion struct {
	// Region is the region that was skipped
	Region RedactionRegion

	// Warning explains why it was skipped
	Warning string
}

// PageClassification partitions a document's pages into untouched and
// sanitize sets for one operation. It is ephemeral: computed once per
// invocation, consumed by the assembler, then discarded. Classifying
// the same input twice yields identical partitions.
type PageClassification struct {
	// PageCount is the document's page count N; pages are [0, N)
	PageCount int

	// byPage maps each targeted page index to its regions, in input
	// order within a page.
	byPage map[int][]RedactionRegion

	// skipped holds regions excluded from every page's set, with the
	// warning recorded for each.
	skipped []SkippedRegion

	// applied holds the valid regions in original input order; audit
	// entries follow this order.
	applied []RedactionRegion
}

// ClassifyPages partitions regions across a document's pages. Regions
// whose page index falls outside [0, pageCount) and regions with
// non-positive dimensions are recorded as skipped and excluded from
// every page's set; they must not silently shift onto an adjacent page.
func ClassifyPages(pageCount int, regions []RedactionRegion) *PageClassification {
	c := &PageClassification{
		PageCount: pageCount,
		byPage:    make(map[int][]RedactionRegion),
	}

	for _, region := range regions {
		if err := region.Validate(); err != nil {
			c.skip(region, err.Error())
			continue
		}
		if region.Page >= pageCount {
			c.skip(region, fmt.Sprintf("region %s targets page %d but document has %d page(s)",
				region.AreaDescription(), region.Page, pageCount))
			continue
		}
		c.byPage[region.Page] = append(c.byPage[region.Page], region)
		c.applied = append(c.applied, region)
	}

	return c
}

func (c *PageClassification) skip(region RedactionRegion, warning string) {
	c.skipped = append(c.skipped, SkippedRegion{Region: region, Warning: warning})
}

// RegionsFor returns the regions targeting the given page, possibly
// empty.
func (c *PageClassification) RegionsFor(page int) []RedactionRegion {
	return c.byPage[page]
}

// IsSanitize reports whether the page has at least one valid region and
// therefore receives the rasterizing strategy. Pages with zero regions
// stay untouched.
func (c *PageClassification) IsSanitize(page int) bool {
	return len(c.byPage[page]) > 0
}

// SanitizePages returns the page indices requiring sanitization in
// ascending order.
func (c *PageClassification) SanitizePages() []int {
	pages := make([]int, 0, len(c.byPage))
	for page := range c.byPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// AppliedRegions returns the valid regions in original input order.
func (c *PageClassification) AppliedRegions() []RedactionRegion {
	return c.applied
}

// Skipped returns the regions excluded as invalid.
func (c *PageClassification) Skipped() []SkippedRegion {
	return c.skipped
}

// Warnings returns one warning string per skipped region.
func (c *PageClassification) Warnings() []string {
	if len(c.skipped) == 0 {
		return nil
	}
	warnings := make([]string, len(c.skipped))
	for i, s := range c.skipped {
		warnings[i] = s.Warning
	}
	return warnings
}
