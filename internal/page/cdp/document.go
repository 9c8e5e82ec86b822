// Package cdp implements the page.Document surface over a DevTools tab.
// Every observation and mutation is one JavaScript evaluation; a failed
// evaluation means the page refuses scripting and maps to the page sentinels.
package cdp

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/pagemark/pagemark/internal/page"
)

// Patterns are the viewer fingerprints the scripts probe for. Empty slices
// fall back to the built-in PDF.js and plugin patterns.
type Patterns struct {
	ViewerGlobals      []string `yaml:"viewer_globals"`
	ContainerSelectors []string `yaml:"container_selectors"`
	EmbedTypes         []string `yaml:"embed_types"`
}

// DefaultPatterns covers PDF.js (the Firefox and Chromium built-in viewer)
// and the legacy plugin embed types.
func DefaultPatterns() Patterns {
	return Patterns{
		ViewerGlobals:      []string{"PDFViewerApplication"},
		ContainerSelectors: []string{"#viewerContainer", ".pdfViewer", "#viewer"},
		EmbedTypes:         []string{"application/pdf", "application/x-google-chrome-pdf"},
	}
}

func (p Patterns) withDefaults() Patterns {
	def := DefaultPatterns()
	if len(p.ViewerGlobals) == 0 {
		p.ViewerGlobals = def.ViewerGlobals
	}
	if len(p.ContainerSelectors) == 0 {
		p.ContainerSelectors = def.ContainerSelectors
	}
	if len(p.EmbedTypes) == 0 {
		p.EmbedTypes = def.EmbedTypes
	}
	return p
}

// Document drives one DevTools tab. A Document is built per request; the
// metric snapshot is evaluated once and shared between Viewport and Elements
// so both describe the same DOM instant, which also keeps element indexes
// valid for SetElementScroll.
type Document struct {
	tab      context.Context
	patterns Patterns

	mu   sync.Mutex
	snap *snapshot
}

// NewDocument wraps an attached tab context.
func NewDocument(tab context.Context, patterns Patterns) *Document {
	return &Document{tab: tab, patterns: patterns.withDefaults()}
}

type viewportPayload struct {
	ScrollY        float64 `json:"scrollY"`
	ClientHeight   float64 `json:"clientHeight"`
	ClientWidth    float64 `json:"clientWidth"`
	DocumentHeight float64 `json:"documentHeight"`
}

type elementPayload struct {
	Index        int     `json:"index"`
	OverflowX    string  `json:"overflowX"`
	OverflowY    string  `json:"overflowY"`
	ScrollHeight float64 `json:"scrollHeight"`
	ClientHeight float64 `json:"clientHeight"`
	ScrollTop    float64 `json:"scrollTop"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Coverage     float64 `json:"coverage"`
}

type snapshot struct {
	Viewport viewportPayload  `json:"viewport"`
	Elements []elementPayload `json:"elements"`
}

// eval runs one script against the tab. The tab context carries the DevTools
// session; the caller context carries the request deadline, so the two are
// bridged here.
func (d *Document) eval(ctx context.Context, script string, out any, sentinel error) error {
	tabCtx := d.tab
	var cancel context.CancelFunc
	if dl, ok := ctx.Deadline(); ok {
		tabCtx, cancel = context.WithDeadline(tabCtx, dl)
	} else {
		tabCtx, cancel = context.WithCancel(tabCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(tabCtx, chromedp.Evaluate(script, out)); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("page round trip: %w", ctx.Err())
		}
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return nil
}

func (d *Document) snapshotOnce(ctx context.Context) (*snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.snap != nil {
		return d.snap, nil
	}
	var snap snapshot
	if err := d.eval(ctx, snapshotScript, &snap, page.ErrInjectionDenied); err != nil {
		return nil, err
	}
	d.snap = &snap
	return d.snap, nil
}

func (d *Document) Viewport(ctx context.Context) (page.Viewport, error) {
	snap, err := d.snapshotOnce(ctx)
	if err != nil {
		return page.Viewport{}, err
	}
	return page.Viewport{
		ScrollY:        snap.Viewport.ScrollY,
		ClientHeight:   snap.Viewport.ClientHeight,
		ClientWidth:    snap.Viewport.ClientWidth,
		DocumentHeight: snap.Viewport.DocumentHeight,
	}, nil
}

func (d *Document) Elements(ctx context.Context) ([]page.ElementMetrics, error) {
	snap, err := d.snapshotOnce(ctx)
	if err != nil {
		return nil, err
	}
	metrics := make([]page.ElementMetrics, 0, len(snap.Elements))
	for _, el := range snap.Elements {
		metrics = append(metrics, page.ElementMetrics{
			Index:            el.Index,
			OverflowX:        el.OverflowX,
			OverflowY:        el.OverflowY,
			ScrollHeight:     el.ScrollHeight,
			ClientHeight:     el.ClientHeight,
			ScrollTop:        el.ScrollTop,
			Width:            el.Width,
			Height:           el.Height,
			Viewportcoverage: el.Coverage,
		})
	}
	return metrics, nil
}

func (d *Document) Signals(ctx context.Context) (page.Signals, error) {
	script := fmt.Sprintf(signalsScriptTmpl,
		jsonArray(d.patterns.EmbedTypes),
		jsonArray(d.patterns.ContainerSelectors),
		jsonArray(d.patterns.ViewerGlobals))

	var out struct {
		URL                string `json:"url"`
		ContentType        string `json:"contentType"`
		HasPluginEmbed     bool   `json:"hasPluginEmbed"`
		HasViewerGlobal    bool   `json:"hasViewerGlobal"`
		HasViewerContainer bool   `json:"hasViewerContainer"`
	}
	if err := d.eval(ctx, script, &out, page.ErrInjectionDenied); err != nil {
		return page.Signals{}, err
	}
	return page.Signals{
		URL:                out.URL,
		ContentType:        out.ContentType,
		HasPluginEmbed:     out.HasPluginEmbed,
		HasViewerGlobal:    out.HasViewerGlobal,
		HasViewerContainer: out.HasViewerContainer,
	}, nil
}

func (d *Document) ViewerState(ctx context.Context) (page.ViewerState, error) {
	script := fmt.Sprintf(viewerStateScriptTmpl,
		jsonArray(d.patterns.ViewerGlobals),
		jsonArray(d.patterns.ContainerSelectors))

	var out struct {
		Found       bool    `json:"found"`
		CurrentPage int     `json:"currentPage"`
		ScrollTop   float64 `json:"scrollTop"`
	}
	if err := d.eval(ctx, script, &out, page.ErrInjectionDenied); err != nil {
		return page.ViewerState{}, err
	}
	return page.ViewerState(out), nil
}

func (d *Document) GoToViewerPage(ctx context.Context, pageNum int) error {
	script := fmt.Sprintf(goToPageScriptTmpl,
		jsonArray(d.patterns.ViewerGlobals), pageNum, pageNum)
	var applied bool
	return d.eval(ctx, script, &applied, page.ErrRestoreDenied)
}

func (d *Document) SetViewerScroll(ctx context.Context, offset float64, smooth bool) error {
	script := fmt.Sprintf(setViewerScrollScriptTmpl,
		jsonArray(d.patterns.ViewerGlobals),
		jsonArray(d.patterns.ContainerSelectors),
		jsNumber(offset), behavior(smooth))
	var applied bool
	return d.eval(ctx, script, &applied, page.ErrRestoreDenied)
}

func (d *Document) ContainerScroll(ctx context.Context) (page.ContainerScroll, error) {
	script := fmt.Sprintf(containerScrollScriptTmpl, jsonArray(d.patterns.ContainerSelectors))
	var out struct {
		Found     bool    `json:"found"`
		Selector  string  `json:"selector"`
		ScrollTop float64 `json:"scrollTop"`
	}
	if err := d.eval(ctx, script, &out, page.ErrInjectionDenied); err != nil {
		return page.ContainerScroll{}, err
	}
	return page.ContainerScroll(out), nil
}

func (d *Document) SetContainerScroll(ctx context.Context, offset float64, smooth bool) error {
	script := fmt.Sprintf(setContainerScrollScriptTmpl,
		jsonArray(d.patterns.ContainerSelectors), jsNumber(offset), behavior(smooth))
	var applied bool
	return d.eval(ctx, script, &applied, page.ErrRestoreDenied)
}

func (d *Document) FrameScroll(ctx context.Context) (page.FrameScroll, error) {
	var out struct {
		Found   bool    `json:"found"`
		ScrollY float64 `json:"scrollY"`
	}
	if err := d.eval(ctx, frameScrollScript, &out, page.ErrInjectionDenied); err != nil {
		return page.FrameScroll{}, err
	}
	return page.FrameScroll(out), nil
}

func (d *Document) SetFrameScroll(ctx context.Context, offset float64) error {
	script := fmt.Sprintf(setFrameScrollScriptTmpl, jsNumber(offset))
	var applied bool
	return d.eval(ctx, script, &applied, page.ErrRestoreDenied)
}

func (d *Document) SetWindowScroll(ctx context.Context, offset float64, smooth bool) error {
	script := fmt.Sprintf(setWindowScrollScriptTmpl, jsNumber(offset), behavior(smooth))
	var applied bool
	return d.eval(ctx, script, &applied, page.ErrRestoreDenied)
}

func (d *Document) SetElementScroll(ctx context.Context, index int, offset float64, smooth bool) error {
	script := fmt.Sprintf(setElementScrollScriptTmpl,
		index, jsNumber(offset), behavior(smooth), jsNumber(offset))
	var applied bool
	return d.eval(ctx, script, &applied, page.ErrRestoreDenied)
}

var _ page.Document = (*Document)(nil)
