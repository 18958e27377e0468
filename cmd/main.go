// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"foia-stream/internal/audit"
	"foia-stream/internal/config"
	"foia-stream/internal/help"
	"foia-stream/internal/observability"
	"foia-stream/internal/redaction"
	"foia-stream/internal/version"
	"foia-stream/internal/web"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// cliFlags holds the parsed command line flag values.
type cliFlags struct {
	inputFile  string
	regions    string
	outputFile string
	configFile string

	preview bool
	info    bool
	inspect bool

	format           string
	operator         string
	documentID       string
	dpi              int
	fill             string
	label            bool
	labelText        string
	preserveMetadata bool

	verbose bool
	debug   bool
	quiet   bool
	noColor bool

	webMode bool
	webPort string
}

func main() {
	inputFile := flag.String("file", "", "Path to the input PDF")
	regions := flag.String("regions", "", "Redaction regions: a JSON file path or an inline JSON array")
	outputFile := flag.String("output", "", "Path for the output PDF (default: <input>-redacted.pdf)")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")

	preview := flag.Bool("preview", false, "Produce draft markup instead of sanitized output")
	info := flag.Bool("info", false, "Print page count and dimensions, then exit")
	inspect := flag.Bool("inspect", false, "Print risk markers and content summary, then exit")

	format := flag.String("format", "text", "Output format for reports and summaries: text, json")
	operator := flag.String("operator", "", "Operator identifier recorded on every audit entry")
	documentID := flag.String("document-id", "", "Document identifier for the audit journal (default: derived from filename)")
	dpi := flag.Int("dpi", 0, "Render resolution for sanitized pages (default: 150)")
	fill := flag.String("fill", "", "Fill color for redaction blocks as #RRGGBB (default: #000000)")
	label := flag.Bool("label", false, "Stamp a label over each redacted area")
	labelText := flag.String("label-text", "", "Label text (default: REDACTED, implies --label)")
	preserveMetadata := flag.Bool("preserve-metadata", false, "Keep the document information dictionary as-is")

	verbose := flag.Bool("verbose", false, "List every audit entry after the operation")
	debug := flag.Bool("debug", false, "Enable debug logging for the full pipeline")
	quiet := flag.Bool("quiet", false, "Suppress progress output (useful for scripts and CI/CD)")
	noColor := flag.Bool("no-color", false, "Disable colored output")

	showHelp := flag.Bool("help", false, "Show help information")
	showVersion := flag.Bool("version", false, "Show version information")

	webMode := flag.Bool("web", false, "Start web server mode instead of CLI processing")
	webPort := flag.String("port", "8080", "Port for web server (default: 8080)")

	flag.Usage = func() {
		help.NewSystem(!isTerminal(os.Stdout)).ShowGeneralHelp()
	}
	flag.Parse()

	flags := &cliFlags{
		inputFile:        *inputFile,
		regions:          *regions,
		outputFile:       *outputFile,
		configFile:       *configFile,
		preview:          *preview,
		info:             *info,
		inspect:          *inspect,
		format:           *format,
		operator:         *operator,
		documentID:       *documentID,
		dpi:              *dpi,
		fill:             *fill,
		label:            *label,
		labelText:        *labelText,
		preserveMetadata: *preserveMetadata,
		verbose:          *verbose,
		debug:            *debug,
		quiet:            *quiet,
		noColor:          *noColor,
		webMode:          *webMode,
		webPort:          *webPort,
	}

	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Auto-detect non-interactive environment
	isInteractive := isTerminal(os.Stderr)
	if !isInteractive || flags.quiet || os.Getenv("CI") != "" {
		flags.noColor = true
	}
	if flags.noColor {
		color.NoColor = true
	}

	if *showHelp {
		help.NewSystem(flags.noColor).ShowGeneralHelp()
		return
	}

	// Check if FOIA_STREAM_DEBUG environment variable is set
	if os.Getenv("FOIA_STREAM_DEBUG") != "" {
		flags.debug = true
	}

	// Handle web mode early - validate flags and start web server if requested
	if flags.webMode {
		if err := handleWebMode(flags, flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		// Web server will run indefinitely, so this should not be reached
		return
	}

	if flags.inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --file is required\n")
		fmt.Fprintf(os.Stderr, "Run 'foia-stream --help' for usage.\n")
		os.Exit(1)
	}
	if flags.format != "text" && flags.format != "json" {
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q (expected text or json)\n", flags.format)
		os.Exit(1)
	}

	cfg := loadConfiguration(flags.configFile)
	observer := buildObserver(cfg, flags)
	engine := buildEngine(cfg, observer)

	doc, err := os.ReadFile(filepath.Clean(flags.inputFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", flags.inputFile, err)
		os.Exit(1)
	}

	switch {
	case flags.info:
		err = runInfo(engine, doc, flags)
	case flags.inspect:
		err = runInspect(engine, doc, flags)
	default:
		err = runOperation(engine, cfg, doc, flags)
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

// loadConfiguration loads the configuration file or returns default config
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// buildObserver creates the operation logger. Debug mode wins over
// quiet; quiet otherwise silences metrics output.
func buildObserver(cfg *config.Config, flags *cliFlags) *observability.StandardObserver {
	level := observability.ParseLevel(cfg.Observability.Level)
	if flags.debug {
		level = observability.ObservabilityDebug
	} else if flags.quiet {
		level = observability.ObservabilityOff
	}

	observer := observability.NewStandardObserver(level, os.Stderr)
	if level == observability.ObservabilityDebug {
		observer.DebugObserver = observability.NewDebugObserver(os.Stderr)
	}
	return observer
}

// buildEngine wires the configured limits and defaults into an engine.
func buildEngine(cfg *config.Config, observer *observability.StandardObserver) *redaction.Engine {
	return redaction.NewEngine(redaction.EngineConfig{
		Observer:    observer,
		Limits:      cfg.EngineLimits(),
		Concurrency: cfg.Redaction.Concurrency,
		SkipVerify:  !cfg.Redaction.Verify,
	})
}

// runInfo prints page count and dimensions.
func runInfo(engine *redaction.Engine, doc []byte, flags *cliFlags) error {
	docInfo, err := engine.Info(doc)
	if err != nil {
		return err
	}

	if flags.format == "json" {
		return printJSON(docInfo)
	}

	color.New(color.FgWhite, color.Bold).Printf("%s\n", flags.inputFile)
	fmt.Printf("Pages: %d\n", docInfo.PageCount)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for i, page := range docInfo.Pages {
		fmt.Fprintf(w, "  page %d\t%.0f x %.0f pt\n", i+1, page.Width, page.Height)
	}
	return w.Flush()
}

// runInspect prints the risk and content summary.
func runInspect(engine *redaction.Engine, doc []byte, flags *cliFlags) error {
	report, err := engine.Inspect(doc)
	if err != nil {
		return err
	}

	if flags.format == "json" {
		return printJSON(report)
	}

	color.New(color.FgWhite, color.Bold).Printf("%s\n", flags.inputFile)
	fmt.Printf("Pages: %d", report.PageCount)
	if !report.Parsed {
		color.New(color.FgYellow).Printf("  (structure did not parse; counts are from a raw scan)")
	}
	fmt.Println()
	fmt.Printf("Images: %d (%d with EXIF)\n", report.ImageCount, report.ImagesWithEXIF)

	flagLine := func(name string, set bool) {
		if set {
			color.New(color.FgRed).Printf("  [!] %s\n", name)
		} else {
			fmt.Printf("  [ ] %s\n", name)
		}
	}
	fmt.Println("Risk markers:")
	flagLine("encrypted", report.Encrypted)
	flagLine("JavaScript", report.HasJavaScript)
	flagLine("embedded files", report.HasEmbeddedFiles)
	flagLine("open action", report.HasOpenAction)
	return nil
}

// runOperation executes apply or preview and writes the output document.
func runOperation(engine *redaction.Engine, cfg *config.Config, doc []byte, flags *cliFlags) error {
	if flags.regions == "" {
		return fmt.Errorf("--regions is required: pass a JSON file path or an inline JSON array")
	}
	regions, err := loadRegions(flags.regions)
	if err != nil {
		return err
	}

	opts, err := buildOptions(cfg, flags)
	if err != nil {
		return err
	}

	var res *redaction.OperationResult
	if flags.preview {
		res = engine.Preview(context.Background(), doc, regions, opts)
	} else {
		res = engine.Apply(context.Background(), doc, regions, opts)
	}

	if !res.Success {
		printWarnings(res.Warnings)
		if flags.format == "json" {
			printJSON(res)
		}
		return fmt.Errorf("%s", res.Error)
	}

	// Journal before the bytes land on disk; an unrecorded redaction is
	// worse than a failed run.
	if !flags.preview && cfg.Audit.Enabled && len(res.AuditEntries) > 0 {
		if err := journalOperation(cfg, opts.DocumentID, doc, res); err != nil {
			return fmt.Errorf("audit journaling failed: %w", err)
		}
	}

	outPath := flags.outputFile
	if outPath == "" {
		outPath = defaultOutputPath(flags.inputFile, flags.preview)
	}
	if err := os.WriteFile(outPath, res.OutputBytes, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	if flags.format == "json" {
		return printJSON(res)
	}
	printSummary(res, outPath, flags)
	return nil
}

// journalOperation persists the audit trail for a completed redaction.
func journalOperation(cfg *config.Config, documentID string, doc []byte, res *redaction.OperationResult) error {
	journal, err := audit.OpenJournal(cfg.Audit.DatabasePath)
	if err != nil {
		return err
	}
	defer journal.Close()

	return journal.RecordOperation(context.Background(), documentID, audit.HashDocument(doc), res.AuditEntries)
}

// loadRegions reads regions from an inline JSON array or a file path.
func loadRegions(arg string) ([]redaction.RedactionRegion, error) {
	data := []byte(arg)
	if !strings.HasPrefix(strings.TrimSpace(arg), "[") {
		var err error
		data, err = os.ReadFile(filepath.Clean(arg))
		if err != nil {
			return nil, fmt.Errorf("failed to read regions file %s: %w", arg, err)
		}
	}

	var regions []redaction.RedactionRegion
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("invalid regions JSON: %w", err)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("regions list is empty")
	}
	return regions, nil
}

// buildOptions layers command line overrides on the configured defaults.
func buildOptions(cfg *config.Config, flags *cliFlags) (redaction.RedactionOptions, error) {
	opts, err := cfg.RedactionDefaults()
	if err != nil {
		return redaction.RedactionOptions{}, err
	}

	if flags.dpi > 0 {
		opts.ResolutionDPI = flags.dpi
	}
	if flags.fill != "" {
		fillColor, err := redaction.ParseHexColor(flags.fill)
		if err != nil {
			return redaction.RedactionOptions{}, err
		}
		opts.FillColor = fillColor
	}
	if flags.label {
		opts.AddLabel = true
	}
	if flags.labelText != "" {
		opts.AddLabel = true
		opts.LabelText = flags.labelText
	}
	if isFlagSet("preserve-metadata") {
		opts.PreserveMetadata = flags.preserveMetadata
	}
	opts.OperatorID = flags.operator

	opts.DocumentID = flags.documentID
	if opts.DocumentID == "" {
		base := filepath.Base(flags.inputFile)
		opts.DocumentID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return opts.WithDefaults(), nil
}

// defaultOutputPath places the output next to the input.
func defaultOutputPath(inputFile string, preview bool) string {
	suffix := "-redacted"
	if preview {
		suffix = "-preview"
	}
	ext := filepath.Ext(inputFile)
	return strings.TrimSuffix(inputFile, ext) + suffix + ext
}

// printSummary reports the outcome of a successful operation.
func printSummary(res *redaction.OperationResult, outPath string, flags *cliFlags) {
	if flags.quiet {
		return
	}

	if flags.preview {
		color.New(color.FgYellow, color.Bold).Printf("Preview written to %s\n", outPath)
		color.New(color.FgYellow).Println("Draft markup only: covered content is still present. Do not release.")
	} else {
		color.New(color.FgGreen, color.Bold).Printf("Redacted %d region(s) -> %s\n", res.RedactionCount, outPath)
	}
	fmt.Printf("Strategy: %s\n", res.Strategy)

	printWarnings(res.Warnings)

	if flags.verbose && len(res.AuditEntries) > 0 {
		fmt.Println("Audit entries:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, entry := range res.AuditEntries {
			operator := entry.OperatorID
			if operator == "" {
				operator = "-"
			}
			reason := entry.Reason
			if reason == "" {
				reason = "-"
			}
			fmt.Fprintf(w, "  page %d\t%s\t%s\t%s\t%s\n",
				entry.Page, entry.AreaDescription, reason, operator,
				entry.Timestamp.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
	}
}

func printWarnings(warnings []string) {
	for _, warning := range warnings {
		color.New(color.FgYellow).Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
}

func printError(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// handleWebMode validates flags and starts the web server.
func handleWebMode(flags *cliFlags, args []string) error {
	// Validate that no file arguments are provided with web mode
	if len(args) > 0 {
		return fmt.Errorf("--web flag cannot be used with file arguments\n"+
			"Web mode starts a server - use the HTTP API to upload documents\n"+
			"Troubleshooting: Remove file arguments and access http://localhost:%s after startup", flags.webPort)
	}
	if flags.inputFile != "" {
		return fmt.Errorf("--web flag cannot be used with --file\n"+
			"Web mode starts a server - use the HTTP API to upload documents\n"+
			"Troubleshooting: Remove --file and access http://localhost:%s after startup", flags.webPort)
	}
	if err := validateWebModeFlags(); err != nil {
		return err
	}

	finalPort, err := findAvailablePort(flags.webPort)
	if err != nil {
		return fmt.Errorf("port validation failed: %w\n"+
			"Troubleshooting: Try a different port with --port <number> or ensure no other services are using ports 8080-8089", err)
	}

	cfg := loadConfiguration(flags.configFile)
	observer := buildObserver(cfg, flags)
	engine := buildEngine(cfg, observer)

	var journal *audit.Journal
	if cfg.Audit.Enabled {
		journal, err = audit.OpenJournal(cfg.Audit.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to open audit journal: %w\n"+
				"Troubleshooting: Check audit.database_path in the configuration, or set audit.enabled: false", err)
		}
		defer journal.Close()
	}

	webServer := web.NewWebServer(finalPort, cfg, engine, journal, observer)
	return webServer.Start()
}

// validateWebModeFlags validates that incompatible flags are not used with --web
func validateWebModeFlags() error {
	incompatible := []struct {
		name string
		tip  string
	}{
		{"regions", "Web mode takes regions per request in the 'regions' form field"},
		{"output", "Web mode returns the document in the HTTP response"},
		{"preview", "Web mode exposes a separate /redaction/preview endpoint"},
		{"info", "Web mode exposes a separate /redaction/info endpoint"},
		{"inspect", "Web mode exposes a separate /redaction/inspect endpoint"},
		{"operator", "Web mode takes the operator per request in the 'options' form field"},
		{"document-id", "Web mode derives the document ID per request"},
		{"dpi", "Web mode takes options per request in the 'options' form field"},
		{"fill", "Web mode takes options per request in the 'options' form field"},
		{"label", "Web mode takes options per request in the 'options' form field"},
		{"label-text", "Web mode takes options per request in the 'options' form field"},
		{"preserve-metadata", "Web mode takes options per request in the 'options' form field"},
	}

	var incompatibleFlags []string
	var troubleshooting []string
	for _, entry := range incompatible {
		if isFlagSet(entry.name) {
			incompatibleFlags = append(incompatibleFlags, "--"+entry.name)
			troubleshooting = append(troubleshooting, entry.tip)
		}
	}

	if len(incompatibleFlags) > 0 {
		errorMsg := fmt.Sprintf("--web flag cannot be used with the following flags: %s\n\n", strings.Join(incompatibleFlags, ", "))
		errorMsg += "Troubleshooting:\n"
		for i, tip := range troubleshooting {
			errorMsg += fmt.Sprintf("  %d. %s\n", i+1, tip)
		}
		errorMsg += "\nRemove the incompatible flags and try again."
		return fmt.Errorf("%s", errorMsg)
	}

	return nil
}

// findAvailablePort validates the requested port and finds an available port
func findAvailablePort(requestedPort string) (string, error) {
	port, err := validatePort(requestedPort)
	if err != nil {
		return "", err
	}

	if isPortAvailable(port) {
		return port, nil
	}

	// If requested port is not available, try alternatives in range 8080-8089
	basePort := 8080
	for i := 0; i < 10; i++ {
		alternativePort := fmt.Sprintf("%d", basePort+i)
		if isPortAvailable(alternativePort) {
			fmt.Fprintf(os.Stderr, "Warning: Port %s is not available, using port %s instead\n", requestedPort, alternativePort)
			return alternativePort, nil
		}
	}

	return "", fmt.Errorf("no available ports found in range 8080-8089")
}

// validatePort validates that the port string is a valid port number
func validatePort(portStr string) (string, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("invalid port format '%s': must be a number", portStr)
	}

	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}

	if port < 1024 && os.Geteuid() != 0 {
		return "", fmt.Errorf("port %d requires root privileges (ports below 1024 are privileged)", port)
	}

	return portStr, nil
}

// isPortAvailable checks if a port is available for binding
func isPortAvailable(port string) bool {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// isFlagSet reports whether a flag was explicitly provided on the command line.
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
