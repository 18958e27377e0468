// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"foia-stream/internal/document"
	"foia-stream/internal/observability"
	"foia-stream/internal/redaction/geometry"
	"foia-stream/internal/redaction/overlay"
	"foia-stream/internal/redaction/raster"
)

// defaultConcurrency bounds how many pages render at once when the
// caller does not configure a limit.
const defaultConcurrency = 4

// Engine runs redaction operations over in-memory documents. It owns
// the full pipeline: validation, region classification, concurrent
// page rendering, assembly, metadata scrubbing, and verification.
// An Engine is safe for concurrent use.
type Engine struct {
	renderer    raster.PageRenderer
	observer    *observability.StandardObserver
	limits      Limits
	concurrency int
	skipVerify  bool
	toolID      string
}

// EngineConfig configures a new Engine. Zero values select defaults:
// the fitz renderer, a silent observer, DefaultLimits, and a sanitized
// output check after every apply.
type EngineConfig struct {
	Renderer    raster.PageRenderer
	Observer    *observability.StandardObserver
	Limits      Limits
	Concurrency int
	// SkipVerify disables the independent post-apply check that
	// sanitized pages carry no recoverable text.
	SkipVerify bool
	// ToolID is stamped into scrubbed document metadata.
	ToolID string
}

// NewEngine builds an Engine from cfg.
func NewEngine(cfg EngineConfig) *Engine {
	e := &Engine{
		renderer:    cfg.Renderer,
		observer:    cfg.Observer,
		limits:      cfg.Limits,
		concurrency: cfg.Concurrency,
		skipVerify:  cfg.SkipVerify,
		toolID:      cfg.ToolID,
	}
	if e.renderer == nil {
		e.renderer = raster.NewFitzRenderer()
	}
	if e.observer == nil {
		e.observer = observability.NewStandardObserver(observability.ObservabilityOff, nil)
	}
	if e.limits == (Limits{}) {
		e.limits = DefaultLimits()
	}
	if e.concurrency <= 0 {
		e.concurrency = defaultConcurrency
	}
	if e.toolID == "" {
		e.toolID = "foia-stream"
	}
	return e
}

// GetComponentName returns the component identifier
func (e *Engine) GetComponentName() string {
	return observability.ComponentEngine
}

// Info validates the document and returns its page geometry.
func (e *Engine) Info(doc []byte) (*document.DocumentInfo, error) {
	info, err := document.ReadInfo(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return info, nil
}

// Inspect reports document structure and risk markers without
// modifying anything.
func (e *Engine) Inspect(doc []byte) (*document.InspectionReport, error) {
	report, err := document.Inspect(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return report, nil
}

// Apply permanently redacts the given regions and returns the result.
// Failures are reported inside the OperationResult rather than as a
// second return value, so callers always get the partial audit trail
// and warnings accumulated before the failing step.
func (e *Engine) Apply(ctx context.Context, doc []byte, regions []RedactionRegion, opts RedactionOptions) *OperationResult {
	opts = opts.WithDefaults()
	finish := e.observer.StartTiming(observability.ComponentEngine, "apply", opts.DocumentID)

	res := e.apply(ctx, doc, regions, opts)

	finish(res.Success, map[string]interface{}{
		"regions_requested": len(regions),
		"regions_applied":   res.RedactionCount,
		"warnings":          len(res.Warnings),
		"strategy":          res.Strategy,
	})
	return res
}

func (e *Engine) apply(ctx context.Context, doc []byte, regions []RedactionRegion, opts RedactionOptions) *OperationResult {
	if err := e.limits.CheckDocumentSize(int64(len(doc))); err != nil {
		return failure(StrategyRasterized, err, nil, nil)
	}
	if err := e.limits.CheckRegionCount(len(regions)); err != nil {
		return failure(StrategyRasterized, err, nil, nil)
	}

	ctx, cancel := e.operationContext(ctx)
	defer cancel()

	info, err := document.ReadInfo(doc)
	if err != nil {
		return failure(StrategyRasterized, fmt.Errorf("%w: %v", ErrInvalidDocument, err), nil, nil)
	}

	cls := ClassifyPages(info.PageCount, regions)
	warnings := cls.Warnings()
	pages := cls.SanitizePages()

	for _, page := range pages {
		dim := info.Pages[page]
		if err := e.limits.CheckRenderBudget(dim.Width, dim.Height, opts.ResolutionDPI); err != nil {
			return failure(StrategyRasterized, fmt.Errorf("page %d: %w", page+1, err), nil, warnings)
		}
	}

	step := e.debugStep("render", fmt.Sprintf("%d sanitize page(s) at %d DPI", len(pages), opts.ResolutionDPI))
	rasters, err := e.renderSanitizePages(ctx, doc, pages, cls, opts)
	if err != nil {
		step(false, err.Error())
		return failure(StrategyRasterized, classifyInterrupt(err), nil, warnings)
	}
	step(true, "")

	// The audit trail records applied regions in request order; entries
	// exist before assembly so a late failure still shows what was
	// attempted.
	trail := NewAuditTrail()
	for _, region := range cls.AppliedRegions() {
		trail.Record(region, opts.OperatorID)
	}

	replacements := make(map[int][]byte, len(pages))
	for i, page := range pages {
		replacements[page] = rasters[i]
	}

	var out []byte
	if len(pages) == 0 {
		out = append([]byte(nil), doc...)
	} else {
		step = e.debugStep("assemble", fmt.Sprintf("%d page(s)", info.PageCount))
		out, err = document.Assemble(ctx, doc, info, replacements)
		if err != nil {
			step(false, err.Error())
			err = classifyInterrupt(err)
			if !isInterrupt(err) {
				err = fmt.Errorf("%w: %v", ErrPageAssembly, err)
			}
			return failure(StrategyRasterized, err, trail.Entries(), warnings)
		}
		step(true, fmt.Sprintf("%d bytes", len(out)))
	}

	out, err = document.ScrubMetadata(out, !opts.PreserveMetadata, e.toolID, time.Now())
	if err != nil {
		return failure(StrategyRasterized, fmt.Errorf("%w: metadata rewrite: %v", ErrPageAssembly, err), trail.Entries(), warnings)
	}

	if !e.skipVerify && len(pages) > 0 {
		step = e.debugStep("verify", fmt.Sprintf("%d sanitize page(s)", len(pages)))
		if err := document.VerifySanitized(out, pages); err != nil {
			step(false, err.Error())
			return failure(StrategyRasterized, fmt.Errorf("%w: %v", ErrVerification, err), trail.Entries(), warnings)
		}
		step(true, "")
	}

	return &OperationResult{
		Success:        true,
		OutputBytes:    out,
		RedactionCount: trail.Count(),
		AuditEntries:   trail.Entries(),
		Warnings:       warnings,
		StrategyUsed:   StrategyRasterized,
		Strategy:       StrategyRasterized.String(),
	}
}

// Preview draws draft boxes over the requested regions without
// removing anything. The output shows where redactions will land; it
// is not a sanitized document and produces no audit entries.
func (e *Engine) Preview(ctx context.Context, doc []byte, regions []RedactionRegion, opts RedactionOptions) *OperationResult {
	opts = opts.WithDefaults()
	finish := e.observer.StartTiming(observability.ComponentEngine, "preview", opts.DocumentID)

	res := e.preview(ctx, doc, regions, opts)

	finish(res.Success, map[string]interface{}{
		"regions_requested": len(regions),
		"regions_drawn":     res.RedactionCount,
		"warnings":          len(res.Warnings),
	})
	return res
}

func (e *Engine) preview(ctx context.Context, doc []byte, regions []RedactionRegion, opts RedactionOptions) *OperationResult {
	if err := e.limits.CheckDocumentSize(int64(len(doc))); err != nil {
		return failure(StrategyVectorOverlay, err, nil, nil)
	}
	if err := e.limits.CheckRegionCount(len(regions)); err != nil {
		return failure(StrategyVectorOverlay, err, nil, nil)
	}

	ctx, cancel := e.operationContext(ctx)
	defer cancel()

	info, err := document.ReadInfo(doc)
	if err != nil {
		return failure(StrategyVectorOverlay, fmt.Errorf("%w: %v", ErrInvalidDocument, err), nil, nil)
	}

	cls := ClassifyPages(info.PageCount, regions)
	warnings := cls.Warnings()

	label := ""
	if opts.AddLabel {
		label = opts.LabelText
	}
	boxes := make(map[int][]overlay.Box)
	for _, page := range cls.SanitizePages() {
		pageHeight := info.Pages[page].Height
		for _, region := range cls.RegionsFor(page) {
			// Draft markup runs in page units, so the render scale
			// stays at 1.
			native := region.DisplayRect().ToRenderSpace(1).ToNativeSpace(1, pageHeight)
			boxes[page] = append(boxes[page], overlay.Box{Rect: native, Label: label})
		}
	}

	style := overlay.Style{
		Fill: opts.FillColor.RGBA(),
		Text: opts.FillColor.Contrasting().RGBA(),
	}
	out, err := overlay.Apply(ctx, doc, info, boxes, style)
	if err != nil {
		err = classifyInterrupt(err)
		if !isInterrupt(err) {
			err = fmt.Errorf("%w: %v", ErrPageAssembly, err)
		}
		return failure(StrategyVectorOverlay, err, nil, warnings)
	}

	return &OperationResult{
		Success:        true,
		OutputBytes:    out,
		RedactionCount: len(cls.AppliedRegions()),
		Warnings:       warnings,
		StrategyUsed:   StrategyVectorOverlay,
		Strategy:       StrategyVectorOverlay.String(),
	}
}

// renderSanitizePages rasterizes, fills, and encodes every sanitize
// page, up to the configured concurrency. Results are positionally
// aligned with pages.
func (e *Engine) renderSanitizePages(ctx context.Context, doc []byte, pages []int, cls *PageClassification, opts RedactionOptions) ([][]byte, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	rasters := make([][]byte, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			raster, err := e.renderPage(gctx, doc, page, cls.RegionsFor(page), opts)
			if err != nil {
				return fmt.Errorf("page %d: %w", page+1, err)
			}
			rasters[i] = raster
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rasters, nil
}

// renderPage produces the sanitized raster for one page: render at the
// requested resolution, paint the regions opaque, draw labels, and
// encode.
func (e *Engine) renderPage(ctx context.Context, doc []byte, page int, regions []RedactionRegion, opts RedactionOptions) ([]byte, error) {
	img, err := e.renderer.RenderPage(ctx, doc, page, opts.ResolutionDPI)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	scale := geometry.ScaleForDPI(opts.ResolutionDPI)
	rects := make([]geometry.RenderRect, len(regions))
	for i, region := range regions {
		rects[i] = region.DisplayRect().ToRenderSpace(scale)
	}

	raster.FillRegions(img, rects, opts.FillColor.RGBA())

	if opts.AddLabel {
		textColor := opts.FillColor.Contrasting().RGBA()
		for _, rect := range rects {
			if err := raster.DrawLabel(img, rect, opts.LabelText, scale, textColor); err != nil {
				return nil, fmt.Errorf("%w: label: %v", ErrRenderFailed, err)
			}
		}
	}

	encoded, err := raster.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrRenderFailed, err)
	}
	return encoded, nil
}

// debugStep opens a named pipeline step when a debug observer is
// attached; otherwise the returned completion func does nothing.
func (e *Engine) debugStep(step, subject string) func(success bool, details string) {
	if e.observer == nil || e.observer.DebugObserver == nil {
		return func(bool, string) {}
	}
	return e.observer.DebugObserver.StartStep(observability.ComponentEngine, step, subject)
}

// operationContext applies the configured whole-operation timeout.
func (e *Engine) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.limits.OperationTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.limits.OperationTimeout)
}

// classifyInterrupt maps context termination onto the pipeline's error
// kinds: a deadline is a resource limit, a cancellation stays a plain
// cancellation.
func classifyInterrupt(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: operation timed out", ErrResourceLimit)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation cancelled: %w", err)
	}
	return err
}

// isInterrupt reports whether err came from context termination after
// classification.
func isInterrupt(err error) bool {
	return errors.Is(err, ErrResourceLimit) || errors.Is(err, context.Canceled)
}
