// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package help renders the CLI help screens.
package help

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
)

// System manages help content for the application
type System struct {
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system
func NewSystem(noColor bool) *System {
	// Disable colors if requested
	if noColor {
		color.NoColor = true
	}

	return &System{
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"subtitle": color.New(color.FgCyan, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Println("FOIA Stream - PDF Redaction Tool")
	fmt.Println("================================")
	fmt.Println()
	h.colors["header"].Println("USAGE:")
	fmt.Println("  foia-stream --file <document.pdf> --regions <regions.json> [options]")
	fmt.Println("  foia-stream --file <document.pdf> --info | --inspect")
	fmt.Println("  foia-stream --web [--port <port>]  # Web server mode")
	fmt.Println()

	h.colors["header"].Println("OPTIONS:")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --file\t<path>\tPath to the input PDF (required except with --web)")
	fmt.Fprintln(w, "  --regions\t<path|json>\tRedaction regions: a JSON file path, or an inline JSON array")
	fmt.Fprintln(w, "\t\t\tEach region: {\"page\":0,\"x\":50,\"y\":700,\"width\":200,\"height\":20,\"reason\":\"b(6)\"}")
	fmt.Fprintln(w, "\t\t\tCoordinates are in page units from the top-left corner; pages are zero-based")
	fmt.Fprintln(w, "  --output\t<path>\tPath for the output PDF (default: <input>-redacted.pdf)")
	fmt.Fprintln(w, "  --preview\t\tProduce draft markup instead of sanitized output (covered content is kept)")
	fmt.Fprintln(w, "  --info\t\tPrint page count and dimensions, then exit")
	fmt.Fprintln(w, "  --inspect\t\tPrint risk markers and content summary, then exit")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format for reports and summaries: text, json (default: text)")
	fmt.Fprintln(w, "  --operator\t<id>\tOperator identifier recorded on every audit entry")
	fmt.Fprintln(w, "  --document-id\t<id>\tDocument identifier for the audit journal (default: derived from filename)")
	fmt.Fprintln(w, "  --dpi\t<number>\tRender resolution for sanitized pages (default: 150)")
	fmt.Fprintln(w, "  --fill\t<color>\tFill color for redaction blocks as #RRGGBB (default: #000000)")
	fmt.Fprintln(w, "  --label\t\tStamp a label over each redacted area")
	fmt.Fprintln(w, "  --label-text\t<text>\tLabel text (default: REDACTED, implies --label)")
	fmt.Fprintln(w, "  --preserve-metadata\t\tKeep the document information dictionary as-is")
	fmt.Fprintln(w, "  --verbose\t\tList every audit entry after the operation")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging for the full pipeline")
	fmt.Fprintln(w, "  --quiet\t\tSuppress progress output (useful for scripts and CI/CD)")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --web\t\tStart web server mode instead of CLI processing")
	fmt.Fprintln(w, "  --port\t<port>\tPort for web server (default: 8080, only used with --web)")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	w.Flush()

	fmt.Println()
	h.colors["header"].Println("EXAMPLES:")
	fmt.Println("  Basic Usage:")
	h.colors["example"].Println("    foia-stream --file case-file.pdf --regions regions.json")
	h.colors["example"].Println("    foia-stream --file case-file.pdf --regions '[{\"page\":0,\"x\":50,\"y\":700,\"width\":200,\"height\":20}]'")
	fmt.Println("  Labeled redactions with an operator on record:")
	h.colors["example"].Println("    foia-stream --file case-file.pdf --regions regions.json --label --operator analyst7")
	fmt.Println("  Draft markup for review:")
	h.colors["example"].Println("    foia-stream --file case-file.pdf --regions regions.json --preview --output draft.pdf")
	fmt.Println("  Document triage:")
	h.colors["example"].Println("    foia-stream --file upload.pdf --inspect --format json")

	fmt.Println()
	h.colors["header"].Println("Web Server Examples:")
	h.colors["example"].Println("  foia-stream --web  # Start web server on default port")
	h.colors["example"].Println("  foia-stream --web --port 9000  # Start web server on custom port")

	fmt.Println()
	h.colors["header"].Println("CONFIGURATION:")
	fmt.Println("  Project config: config.yaml or .foia-stream.yaml (in current directory)")
	fmt.Println("  User config:    $XDG_CONFIG_HOME/foia-stream/config.yaml")
	fmt.Println("  Audit journal:  $XDG_DATA_HOME/foia-stream/audit.db (see audit.database_path)")

	fmt.Println()
	h.colors["header"].Println("OUTPUT GUARANTEE:")
	fmt.Println("  Sanitized output rebuilds every affected page as a flat image; covered")
	fmt.Println("  content is not recoverable. Preview output only draws on top of the page")
	fmt.Println("  and must never be released.")
}
