// Package page defines the observation and mutation surface the position
// locator needs from a live document. Implementations carry no state between
// calls: every capture or restore re-reads the document it runs against.
package page

import (
	"context"
	"errors"
)

var (
	// ErrInjectionDenied means the target page cannot be scripted at all
	// (privileged page, dead tab, evaluation timeout). Callers treat it as
	// "position unknown, use 0".
	ErrInjectionDenied = errors.New("page: script injection denied")

	// ErrRestoreDenied is the restore-side counterpart of
	// ErrInjectionDenied: the whole page is unreachable, not just one probe.
	ErrRestoreDenied = errors.New("page: restore denied")
)

// Viewport holds the whole-window scroll observations.
type Viewport struct {
	ScrollY        float64 // current window scroll offset
	ClientHeight   float64 // visible viewport height
	ClientWidth    float64 // visible viewport width
	DocumentHeight float64 // total document height
}

// ElementMetrics are the per-element observations the scrollable-region
// detector scores. Index identifies the element for SetElementScroll within
// the same call sequence; it is not stable across page re-renders.
type ElementMetrics struct {
	Index            int
	OverflowX        string
	OverflowY        string
	ScrollHeight     float64
	ClientHeight     float64
	ScrollTop        float64
	Width            float64
	Height           float64
	Viewportcoverage float64 // fraction of the viewport area the element occupies, 0..1
}

// Scrollable reports whether the element qualifies as a detector candidate:
// auto/scroll overflow on some axis and content taller than its client box.
func (m ElementMetrics) Scrollable() bool {
	overflow := func(v string) bool { return v == "auto" || v == "scroll" }
	if !overflow(m.OverflowY) && !overflow(m.OverflowX) {
		return false
	}
	return m.ScrollHeight > m.ClientHeight
}

// Signals are the independent paginated-document observations. No single
// field is load-bearing; the detector ORs them with URL and content-type
// checks done in Go.
type Signals struct {
	URL                string
	ContentType        string
	HasPluginEmbed     bool // embed/object with a pdf type, or iframe with a .pdf src
	HasViewerGlobal    bool // the paged-viewer script global is present
	HasViewerContainer bool // a known paged-viewer container element exists
}

// ViewerState is what the paged-viewer application exposes when present.
type ViewerState struct {
	Found       bool
	CurrentPage int     // 1-based; 0 when the viewer does not report one
	ScrollTop   float64 // scroll offset of the viewer's container
}

// ContainerScroll is the result of probing known container selectors.
type ContainerScroll struct {
	Found     bool
	Selector  string
	ScrollTop float64
}

// FrameScroll is the scroll offset of an embedded same-origin sub-document.
type FrameScroll struct {
	Found   bool
	ScrollY float64
}

// Document is a single live page. All reads and writes go through the page
// boundary (a DevTools evaluation for the real implementation); any call may
// fail with ErrInjectionDenied when the page refuses scripting.
type Document interface {
	Viewport(ctx context.Context) (Viewport, error)
	Elements(ctx context.Context) ([]ElementMetrics, error)
	Signals(ctx context.Context) (Signals, error)

	ViewerState(ctx context.Context) (ViewerState, error)
	GoToViewerPage(ctx context.Context, page int) error
	SetViewerScroll(ctx context.Context, offset float64, smooth bool) error

	ContainerScroll(ctx context.Context) (ContainerScroll, error)
	SetContainerScroll(ctx context.Context, offset float64, smooth bool) error

	FrameScroll(ctx context.Context) (FrameScroll, error)
	SetFrameScroll(ctx context.Context, offset float64) error

	SetWindowScroll(ctx context.Context, offset float64, smooth bool) error
	SetElementScroll(ctx context.Context, index int, offset float64, smooth bool) error
}
