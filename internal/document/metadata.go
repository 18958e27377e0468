// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Identifying information dictionary keys cleared by a full scrub.
var identifyingInfoKeys = []string{"Title", "Author", "Subject", "Keywords"}

// ScrubMetadata rewrites a document's information dictionary. With
// scrub set, identifying fields (title, author, subject, keywords) are
// removed, any XMP metadata stream is dropped from the catalog, and the
// producer and creator fields are stamped with toolID. The modification
// date is set to now in both modes. Runs once, on the assembled output.
func ScrubMetadata(b []byte, scrub bool, toolID string, now time.Time) ([]byte, error) {
	ctx, err := readContext(b)
	if err != nil {
		return nil, err
	}

	infoDict, err := ensureInfoDict(ctx)
	if err != nil {
		return nil, err
	}
	scrubInfoDict(infoDict, scrub, toolID, now)

	if scrub {
		// XMP metadata duplicates the information dictionary and can
		// carry editing history; the sanitized output must not keep it.
		if catalog, err := ctx.Catalog(); err == nil {
			catalog.Delete("Metadata")
		}
	}

	var out bytes.Buffer
	if err := api.WriteContext(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to write scrubbed document: %w", err)
	}
	return out.Bytes(), nil
}

// ensureInfoDict returns the document information dictionary, creating
// an empty one when the document has none.
func ensureInfoDict(ctx *model.Context) (types.Dict, error) {
	if ctx.Info != nil {
		d, err := ctx.DereferenceDict(*ctx.Info)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve information dictionary: %w", err)
		}
		if d != nil {
			return d, nil
		}
	}

	d := types.NewDict()
	ir, err := ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, fmt.Errorf("failed to create information dictionary: %w", err)
	}
	ctx.Info = ir
	return d, nil
}

// scrubInfoDict applies the metadata policy to an information
// dictionary in place.
func scrubInfoDict(d types.Dict, scrub bool, toolID string, now time.Time) {
	if scrub {
		for _, key := range identifyingInfoKeys {
			d.Delete(key)
		}
		d["Producer"] = types.StringLiteral(toolID)
		d["Creator"] = types.StringLiteral(toolID)
	}
	d["ModDate"] = types.StringLiteral(pdfDateString(now))
}

// pdfDateString formats a timestamp as a PDF date string, e.g.
// "D:20240131093000Z00'00'".
func pdfDateString(t time.Time) string {
	return "D:" + t.UTC().Format("20060102150405") + "Z00'00'"
}
