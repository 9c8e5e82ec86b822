package locator

import (
	"context"
	"math"

	"github.com/pagemark/pagemark/internal/page"
)

const (
	// WindowScrollThreshold is the window offset above which a page with a
	// document taller than the viewport is treated as window-scrolled,
	// bypassing the nested-scroller search entirely.
	WindowScrollThreshold = 50

	// MinRegionScore is the score a winning candidate must exceed. At or
	// below it detection is inconclusive and window scroll wins; false
	// positives break more pages than false negatives.
	MinRegionScore = 50

	// Score component caps. Maximum possible total: 450.
	MaxScrollExtentScore = 100
	MaxScrollOffsetScore = 200
	MaxRenderedAreaScore = 100
	MaxCoverageScore     = 50

	// scrollExtentDivisor converts hidden content pixels into score points.
	scrollExtentDivisor = 10
	// renderedAreaDivisor converts square pixels into score points.
	renderedAreaDivisor = 10000
)

// Region is a scored scrollable candidate. Element.Index addresses the
// element through the same Document the region was detected on; it is not
// valid across page re-renders, which is why restore re-detects every time.
type Region struct {
	Element page.ElementMetrics
	Score   float64
}

// ScoreElement computes the additive candidate score from four independent,
// individually capped components: hidden scroll extent, current scroll
// offset (actively-scrolled panes are strong evidence), rendered area, and
// viewport coverage.
func ScoreElement(m page.ElementMetrics) float64 {
	var score float64

	extent := m.ScrollHeight - m.ClientHeight
	score += math.Min(extent/scrollExtentDivisor, MaxScrollExtentScore)

	if m.ScrollTop > 0 {
		score += math.Min(m.ScrollTop, MaxScrollOffsetScore)
	}

	score += math.Min(m.Width*m.Height/renderedAreaDivisor, MaxRenderedAreaScore)

	coverage := m.Viewportcoverage
	if coverage > 1 {
		coverage = 1
	}
	if coverage > 0 {
		score += coverage * MaxCoverageScore
	}

	return score
}

// FindScrollRegion decides which scrollable element, if any, represents the
// content of the document. A nil region means "use the whole-viewport
// scroll". Genuine window-level scroll takes priority over any nested
// scroller heuristic.
func FindScrollRegion(ctx context.Context, doc page.Document) (*Region, error) {
	vp, err := doc.Viewport(ctx)
	if err != nil {
		return nil, err
	}
	if vp.ScrollY > WindowScrollThreshold && vp.DocumentHeight > vp.ClientHeight {
		return nil, nil
	}

	elements, err := doc.Elements(ctx)
	if err != nil {
		return nil, err
	}

	var best *Region
	for _, m := range elements {
		if !m.Scrollable() {
			continue
		}
		score := ScoreElement(m)
		if best == nil || score > best.Score {
			best = &Region{Element: m, Score: score}
		}
	}

	if best == nil || best.Score <= MinRegionScore {
		return nil, nil
	}
	return best, nil
}
