// Package fusion merges accessibility and OCR observations into unified
// UIElement records.
//
// The algorithm is OCR-primary: OCR boxes are screenshot-derived and not
// subject to accessibility-tree reporting lag, so a fused element always
// takes its position and size from the OCR box, never from the matched
// accessibility node. Accessibility contributes the role, the semantic
// description, and a confidence boost.
package fusion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"go-screen-perception/internal/logger"
	"go-screen-perception/internal/spatial"
	"go-screen-perception/pkg/models"
)

// Params are the tuned fusion thresholds. They mirror config.Perception;
// the container maps one onto the other so this package stays free of the
// configuration layer.
type Params struct {
	// MatchRadius bounds the OCR-to-accessibility match distance.
	MatchRadius float64

	// CertainMatchDistance short-circuits the candidate scan: a candidate
	// closer than this is accepted immediately.
	CertainMatchDistance float64

	// GridBucketSize is the spatial index bucket edge.
	GridBucketSize float64

	// LinearScanThreshold is the accessibility count below which a plain
	// linear scan beats the grid. Measured, not guessed: the 50-unit grid
	// only pays for itself once element counts pass ~100.
	LinearScanThreshold int

	// AccessibilityOnlyConfidence is the fixed confidence assigned to
	// unconsumed high-value accessibility elements.
	AccessibilityOnlyConfidence float64

	// LargeScrollAreaMin is the minimum area for a scroll area to count as
	// high-value on its own.
	LargeScrollAreaMin float64

	// FallbackSize stands in when an accessibility-only observation carries
	// no size; every emitted element must have a non-degenerate size.
	FallbackSize models.Size
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		MatchRadius:                 30,
		CertainMatchDistance:        5,
		GridBucketSize:              50,
		LinearScanThreshold:         100,
		AccessibilityOnlyConfidence: 0.7,
		LargeScrollAreaMin:          10000,
		FallbackSize:                models.Size{Width: 24, Height: 24},
	}
}

// Engine fuses one pass worth of normalized observations. It is a pure,
// synchronous transform; the same inputs always produce the same elements.
type Engine struct {
	params Params
	log    *logrus.Entry
}

// NewEngine creates a fusion engine with the given parameters.
func NewEngine(params Params) *Engine {
	return &Engine{
		params: params,
		log:    logger.WithField("component", "fusion"),
	}
}

// Fuse merges accessibility and OCR observations into UIElements. Both
// inputs must already be in the canonical frame. Absence of either source is
// not an error; fusion degrades to whatever remains, and an empty result is
// valid output.
func (e *Engine) Fuse(acc []models.AccessibilityObservation, ocr []models.OCRObservation) []models.UIElement {
	ocr = sortOCR(ocr)

	accConsumed := make([]bool, len(acc))
	ocrConsumed := make([]bool, len(ocr))
	var elements []models.UIElement
	nextID := idAllocator("el")

	// Text-field placeholder merge runs before generic matching; both
	// records it touches are excluded from the remaining steps.
	elements = append(elements, e.mergePlaceholders(acc, ocr, accConsumed, ocrConsumed, nextID)...)

	matcher := e.buildMatcher(acc, accConsumed)

	for j, word := range ocr {
		if ocrConsumed[j] {
			continue
		}
		matchIdx := matcher.match(word.Box.Origin)

		var elem models.UIElement
		if matchIdx >= 0 {
			accConsumed[matchIdx] = true
			elem = e.fusedElement(nextID(), word, &acc[matchIdx])
		} else {
			elem = e.fusedElement(nextID(), word, nil)
		}
		elements = append(elements, elem)
	}

	elements = append(elements, e.accessibilityOnly(acc, accConsumed, nextID)...)

	e.log.WithFields(logrus.Fields{
		"accessibility": len(acc),
		"ocr":           len(ocr),
		"elements":      len(elements),
	}).Debug("fusion pass complete")

	return elements
}

// fusedElement builds one UIElement from an OCR fragment and its optional
// accessibility match. Position and size always come from the OCR box.
func (e *Engine) fusedElement(id string, word models.OCRObservation, match *models.AccessibilityObservation) models.UIElement {
	elem := models.UIElement{
		ID:         id,
		Type:       models.TypeTextContent,
		Position:   word.Box.Origin,
		Size:       word.Box.Size,
		VisualText: word.Text,
		Confidence: word.Confidence,
		OCR:        &models.OCRDetail{Text: word.Text, Confidence: word.Confidence},
	}

	clickable := isActionText(word.Text)
	semantic := word.Text

	if match != nil {
		elem.Type = match.Role + "+OCR"
		elem.Confidence += 0.2
		if match.Enabled {
			elem.Confidence += 0.1
		}
		// Role is the primary clickability signal; text matching is the
		// fallback for roles outside the allow-list.
		clickable = isClickableRole(match.Role) || clickable
		semantic = joinNonEmpty(", ", accessibilityLabel(match), word.Text)
		elem.Accessibility = &models.AccessibilityDetail{
			Role:        match.Role,
			Title:       match.Title,
			Description: match.Description,
			Enabled:     match.Enabled,
			Focused:     match.Focused,
		}
	}

	elem.Confidence = math.Min(elem.Confidence, 1.0)
	elem.IsClickable = clickable
	elem.SemanticMeaning = semantic
	elem.Interactions = interactionsFor(clickable, false)
	if clickable {
		elem.ActionHint = "activates " + strings.ToLower(firstNonEmpty(semantic, word.Text))
	}
	return elem
}

// accessibilityOnly emits unconsumed high-value accessibility observations
// at a fixed confidence. Observations without a position cannot be placed
// and stay out of the map.
func (e *Engine) accessibilityOnly(acc []models.AccessibilityObservation, consumed []bool, nextID func() string) []models.UIElement {
	var elements []models.UIElement
	for i := range acc {
		obs := &acc[i]
		if consumed[i] || obs.Position == nil || !e.isHighValue(obs) {
			continue
		}

		size := e.params.FallbackSize
		if obs.Size != nil && obs.Size.Width > 0 && obs.Size.Height > 0 {
			size = *obs.Size
		}

		clickable := isClickableRole(obs.Role)
		elem := models.UIElement{
			ID:              nextID(),
			Type:            obs.Role,
			Position:        *obs.Position,
			Size:            size,
			IsClickable:     clickable,
			Confidence:      e.params.AccessibilityOnlyConfidence,
			SemanticMeaning: firstNonEmpty(accessibilityLabel(obs), canonicalRole(obs.Role)),
			Interactions:    interactionsFor(clickable, textFieldRoles[canonicalRole(obs.Role)]),
			Accessibility: &models.AccessibilityDetail{
				Role:        obs.Role,
				Title:       obs.Title,
				Description: obs.Description,
				Enabled:     obs.Enabled,
				Focused:     obs.Focused,
			},
		}
		elements = append(elements, elem)
	}
	return elements
}

// isHighValue keeps the accessibility-only observations worth mapping:
// interactive roles, large scroll areas, and labeled rows/cells.
func (e *Engine) isHighValue(obs *models.AccessibilityObservation) bool {
	role := canonicalRole(obs.Role)
	if highValueRoles[role] {
		return true
	}
	if role == "scroll-area" && obs.Size != nil &&
		obs.Size.Width*obs.Size.Height >= e.params.LargeScrollAreaMin {
		return true
	}
	if (role == "row" || role == "cell") && (obs.Title != "" || obs.Description != "") {
		return true
	}
	return false
}

// matcher resolves an OCR origin to the nearest eligible accessibility
// observation. Below the linear-scan threshold it scans directly; above it,
// candidates come from the spatial grid and are re-checked with exact
// distances either way.
type matcher struct {
	engine   *Engine
	acc      []models.AccessibilityObservation
	consumed []bool
	grid     *spatial.Grid
	eligible []int
}

func (e *Engine) buildMatcher(acc []models.AccessibilityObservation, consumed []bool) *matcher {
	m := &matcher{engine: e, acc: acc, consumed: consumed}
	for i := range acc {
		if acc[i].Position != nil && !consumed[i] {
			m.eligible = append(m.eligible, i)
		}
	}
	if len(m.eligible) > e.params.LinearScanThreshold {
		m.grid = spatial.NewGrid(e.params.GridBucketSize)
		for _, i := range m.eligible {
			m.grid.Insert(i, acc[i].Position.X, acc[i].Position.Y)
		}
	}
	return m
}

// match returns the matched accessibility index or -1. A candidate within
// the certain-match distance is accepted immediately without scanning the
// rest; otherwise the minimum-distance candidate within the radius wins.
func (m *matcher) match(origin models.Point) int {
	candidates := m.eligible
	if m.grid != nil {
		candidates = m.grid.Query(origin.X, origin.Y, m.engine.params.MatchRadius)
	}

	certain := m.engine.params.CertainMatchDistance * m.engine.params.CertainMatchDistance
	cutoff := m.engine.params.MatchRadius * m.engine.params.MatchRadius

	best := -1
	bestDist := cutoff
	for _, i := range candidates {
		if m.consumed[i] || m.acc[i].Position == nil {
			continue
		}
		d := origin.SquaredDistance(*m.acc[i].Position)
		if d < certain {
			return i
		}
		if d <= bestDist {
			if d < bestDist || best == -1 {
				best, bestDist = i, d
			}
		}
	}
	return best
}

func sortOCR(ocr []models.OCRObservation) []models.OCRObservation {
	sorted := make([]models.OCRObservation, len(ocr))
	copy(sorted, ocr)
	// Deterministic processing order: confidence descending, then top-left
	// reading order. The order is a tie-break rule, not a semantic one.
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Confidence != sorted[b].Confidence {
			return sorted[a].Confidence > sorted[b].Confidence
		}
		if sorted[a].Box.Origin.Y != sorted[b].Box.Origin.Y {
			return sorted[a].Box.Origin.Y < sorted[b].Box.Origin.Y
		}
		if sorted[a].Box.Origin.X != sorted[b].Box.Origin.X {
			return sorted[a].Box.Origin.X < sorted[b].Box.Origin.X
		}
		return sorted[a].Text < sorted[b].Text
	})
	return sorted
}

func idAllocator(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
}

func accessibilityLabel(obs *models.AccessibilityObservation) string {
	return firstNonEmpty(obs.Description, obs.Title, obs.Value)
}

func interactionsFor(clickable, typable bool) []string {
	switch {
	case clickable && typable:
		return []string{"click", "type"}
	case clickable:
		return []string{"click"}
	case typable:
		return []string{"click", "type"}
	default:
		return []string{"read"}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	var parts []string
	for _, v := range values {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}
