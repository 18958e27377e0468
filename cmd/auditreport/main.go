// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"foia-stream/internal/audit"
)

func main() {
	var (
		dbPath     = flag.String("db", "", "Path to the audit journal database (default: the user data directory)")
		action     = flag.String("action", "", "Action to perform: report, list")
		documentID = flag.String("document", "", "Restrict output to one document ID")
		limit      = flag.Int("limit", 0, "Maximum entries to include (default: 100, ignored with --document)")
		outputFile = flag.String("output", "", "Path to output file (report action, default: stdout)")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Error: --action is required")
		fmt.Println("Usage: foia-audit --action <report|list> [options]")
		os.Exit(1)
	}

	journal, err := audit.OpenJournal(*dbPath)
	if err != nil {
		fmt.Printf("Error opening audit journal: %v\n", err)
		os.Exit(1)
	}
	defer journal.Close()

	entries, err := fetchEntries(journal, *documentID, *limit)
	if err != nil {
		fmt.Printf("Error reading audit journal: %v\n", err)
		os.Exit(1)
	}

	switch *action {
	case "report":
		writeReport(entries, *outputFile)
	case "list":
		listEntries(entries)
	default:
		fmt.Printf("Error: Unknown action '%s'\n", *action)
		fmt.Println("Valid actions: report, list")
		os.Exit(1)
	}
}

func fetchEntries(journal *audit.Journal, documentID string, limit int) ([]audit.StoredEntry, error) {
	if documentID != "" {
		return journal.EntriesForDocument(context.Background(), documentID)
	}
	return journal.RecentEntries(context.Background(), limit)
}

func writeReport(entries []audit.StoredEntry, outputFile string) {
	out := os.Stdout
	if outputFile != "" {
		f, err := os.OpenFile(filepath.Clean(outputFile), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			fmt.Printf("Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if _, err := audit.NewMarkdownWriter(out).Write(entries); err != nil {
		fmt.Printf("Error writing report: %v\n", err)
		os.Exit(1)
	}
	if outputFile != "" {
		fmt.Printf("Report written to %s (%d entries)\n", outputFile, len(entries))
	}
}

func listEntries(entries []audit.StoredEntry) {
	if len(entries) == 0 {
		fmt.Println("No audit entries found.")
		return
	}

	fmt.Printf("Found %d audit entries:\n\n", len(entries))
	for _, entry := range entries {
		fmt.Printf("Document: %s\n", entry.DocumentID)
		if entry.DocumentHash != "" {
			fmt.Printf("Hash: %s\n", entry.DocumentHash)
		}
		fmt.Printf("Page: %d\n", entry.Page)
		fmt.Printf("Area: %s\n", entry.Area)
		if entry.Reason != "" {
			fmt.Printf("Reason: %s\n", entry.Reason)
		}
		if entry.OperatorID != "" {
			fmt.Printf("Operator: %s\n", entry.OperatorID)
		}
		fmt.Printf("Recorded At: %s\n", entry.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println("---")
	}
}
