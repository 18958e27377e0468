// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
)

// MarkdownWriter renders journal entries as a Markdown report: one
// summary table, then a per-document entry table.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a writer that emits to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the full report for the given entries.
func (w *MarkdownWriter) Write(entries []StoredEntry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	byDocument, order := groupByDocument(entries)

	w.writeHeader(md, entries, len(order))
	w.writeSummary(md, byDocument, order)
	for _, docID := range order {
		w.writeDocumentEntries(md, docID, byDocument[docID])
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title and scope.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, entries []StoredEntry, documents int) {
	md.H1("Redaction Audit Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", time.Now().UTC().Format("2006-01-02 15:04:05 MST")},
			{"Audit Entries", strconv.Itoa(len(entries))},
			{"Documents", strconv.Itoa(documents)},
		},
	})
	md.PlainText("")
}

// writeSummary writes one row per document.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, byDocument map[string][]StoredEntry, order []string) {
	if len(order) == 0 {
		md.PlainText("No audit entries recorded.")
		md.PlainText("")
		return
	}

	md.H2("Documents")
	md.PlainText("")

	rows := make([][]string, len(order))
	for i, docID := range order {
		entries := byDocument[docID]
		rows[i] = []string{
			"`" + docID + "`",
			"`" + shortHash(entries[0].DocumentHash) + "`",
			strconv.Itoa(len(entries)),
			strconv.Itoa(pagesTouched(entries)),
			operatorList(entries),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Document", "Content Hash", "Redactions", "Pages", "Operators"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDocumentEntries writes the detailed entry table for one
// document.
func (w *MarkdownWriter) writeDocumentEntries(md *markdown.Markdown, docID string, entries []StoredEntry) {
	md.H2("Document " + docID)
	md.PlainText("")

	rows := make([][]string, len(entries))
	for i, e := range entries {
		reason := e.Reason
		if reason == "" {
			reason = "-"
		}
		operator := e.OperatorID
		if operator == "" {
			operator = "-"
		}
		rows[i] = []string{
			strconv.Itoa(e.Page),
			e.Area,
			truncateString(reason, 60),
			operator,
			e.CreatedAt.Format("2006-01-02 15:04:05 MST"),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Area", "Reason", "Operator", "Recorded"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by foia-stream audit journal*")
}

// groupByDocument splits entries per document id, keeping first-seen
// document order and per-document insertion order.
func groupByDocument(entries []StoredEntry) (map[string][]StoredEntry, []string) {
	byDocument := make(map[string][]StoredEntry)
	var order []string
	for _, e := range entries {
		if _, seen := byDocument[e.DocumentID]; !seen {
			order = append(order, e.DocumentID)
		}
		byDocument[e.DocumentID] = append(byDocument[e.DocumentID], e)
	}
	return byDocument, order
}

// shortHash abbreviates a content hash for display.
func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

// pagesTouched counts distinct pages among entries.
func pagesTouched(entries []StoredEntry) int {
	pages := make(map[int]bool)
	for _, e := range entries {
		pages[e.Page] = true
	}
	return len(pages)
}

// operatorList renders the distinct operators, sorted, for the summary
// table.
func operatorList(entries []StoredEntry) string {
	set := make(map[string]bool)
	for _, e := range entries {
		if e.OperatorID != "" {
			set[e.OperatorID] = true
		}
	}
	if len(set) == 0 {
		return "-"
	}
	operators := make([]string, 0, len(set))
	for op := range set {
		operators = append(operators, op)
	}
	sort.Strings(operators)

	out := operators[0]
	for _, op := range operators[1:] {
		out += ", " + op
	}
	return out
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
