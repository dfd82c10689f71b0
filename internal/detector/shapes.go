package detector

import (
	"context"
	"image"
	"math"
	"sort"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"

	"go-screen-perception/internal/errors"
	"go-screen-perception/internal/logger"
	"go-screen-perception/pkg/models"
)

// EdgeShapeDetector finds element candidates by edge detection and contour
// grouping: blur, forward-gradient edges, flood-fill into connected
// contours, then per-contour classification. Classification jobs are
// independent and run on the worker pool.
type EdgeShapeDetector struct {
	log *logrus.Entry
}

// NewEdgeShapeDetector creates a shape detector.
func NewEdgeShapeDetector() *EdgeShapeDetector {
	return &EdgeShapeDetector{log: logger.WithField("component", "shapes")}
}

// DetectShapes analyzes the snapshot and returns candidates in the canonical
// frame, ordered by confidence descending, capped at opts.MaxShapes.
func (d *EdgeShapeDetector) DetectShapes(ctx context.Context, snap *Snapshot, opts DetectOptions) ([]models.ShapeCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if snap == nil || snap.Image == nil {
		return nil, errors.NewValidationError("shape detection requires a decoded screenshot", nil)
	}

	img := snap.Image
	if opts.DownscaleWidth > 0 && img.Bounds().Dx() > opts.DownscaleWidth {
		img = imaging.Resize(img, opts.DownscaleWidth, 0, imaging.Lanczos)
	}

	// Blur before the gradient pass so texture noise does not fragment
	// contours.
	smoothed := blur.Gaussian(img, 1.0)
	gray := imaging.Grayscale(smoothed)

	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()
	edges := gradientEdges(gray, width, height, opts.EdgeThreshold)
	contours := findContours(edges, width, height)

	if opts.Debug {
		d.log.WithField("contours", len(contours)).Debug("contour grouping complete")
	}

	// Analyzed pixel space to canonical frame. The ratios also absorb any
	// retina scaling between screenshot pixels and frame units.
	sx := snap.Frame.Size.Width / float64(width)
	sy := snap.Frame.Size.Height / float64(height)

	var (
		mu         sync.Mutex
		candidates []models.ShapeCandidate
	)
	classify := func(contour []image.Point) {
		candidate, ok := classifyContour(contour, img, opts.MinShapeArea)
		if !ok {
			return
		}
		candidate.Bounds.Origin.X = snap.Frame.Origin.X + candidate.Bounds.Origin.X*sx
		candidate.Bounds.Origin.Y = snap.Frame.Origin.Y + candidate.Bounds.Origin.Y*sy
		candidate.Bounds.Size.Width *= sx
		candidate.Bounds.Size.Height *= sy
		candidate.Area = candidate.Bounds.Area()
		mu.Lock()
		candidates = append(candidates, candidate)
		mu.Unlock()
	}

	if opts.UseWorkerPool && len(contours) > 1 {
		pool := NewWorkerPool(opts.MaxWorkers)
		pool.Start()
		for _, contour := range contours {
			contour := contour
			pool.Submit(func() { classify(contour) })
		}
		pool.Wait()
		pool.Close()
	} else {
		for _, contour := range contours {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			classify(contour)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].Confidence != candidates[b].Confidence {
			return candidates[a].Confidence > candidates[b].Confidence
		}
		if candidates[a].Bounds.Origin.Y != candidates[b].Bounds.Origin.Y {
			return candidates[a].Bounds.Origin.Y < candidates[b].Bounds.Origin.Y
		}
		return candidates[a].Bounds.Origin.X < candidates[b].Bounds.Origin.X
	})
	if opts.MaxShapes > 0 && len(candidates) > opts.MaxShapes {
		candidates = candidates[:opts.MaxShapes]
	}

	d.log.WithFields(logrus.Fields{
		"contours":   len(contours),
		"candidates": len(candidates),
	}).Debug("shape detection complete")

	return candidates, nil
}

// gradientEdges marks pixels whose forward horizontal or vertical gradient
// exceeds the threshold. Border pixels are never edges.
func gradientEdges(gray *image.NRGBA, width, height int, threshold float64) [][]bool {
	if threshold <= 0 {
		threshold = 30.0
	}
	edges := make([][]bool, height)
	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			c := float64(gray.Pix[gray.PixOffset(x, y)])
			cx := float64(gray.Pix[gray.PixOffset(x+1, y)])
			cy := float64(gray.Pix[gray.PixOffset(x, y+1)])
			if math.Abs(c-cx) > threshold || math.Abs(c-cy) > threshold {
				edges[y][x] = true
			}
		}
	}
	return edges
}

// findContours groups connected edge pixels with an iterative 8-connected
// flood fill. Contours under 10 pixels are discarded as noise.
func findContours(edges [][]bool, width, height int) [][]image.Point {
	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	var contours [][]image.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !edges[y][x] || visited[y][x] {
				continue
			}
			contour := floodFill(edges, visited, x, y, width, height)
			if len(contour) >= 10 {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

func floodFill(edges, visited [][]bool, startX, startY, width, height int) []image.Point {
	var contour []image.Point
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}
		visited[p.Y][p.X] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return contour
}

// classifyContour turns one contour into a shape candidate, or rejects it.
// Bounds are in the analyzed (possibly downscaled) pixel space; the caller
// maps them to the canonical frame.
func classifyContour(contour []image.Point, img image.Image, minArea float64) (models.ShapeCandidate, bool) {
	minX, minY := math.MaxInt32, math.MaxInt32
	maxX, maxY := 0, 0
	for _, p := range contour {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	w := float64(maxX - minX)
	h := float64(maxY - minY)
	if w <= 0 || h <= 0 || w*h < minArea {
		return models.ShapeCandidate{}, false
	}
	aspect := w / h

	category, confidence := categorize(contour, minX, minY, maxX, maxY, w, h, aspect)
	role, interaction := inferRole(category, w, h, aspect, lightFill(img, (minX+maxX)/2, (minY+maxY)/2))

	return models.ShapeCandidate{
		Bounds:      models.NewRect(float64(minX), float64(minY), w, h),
		Category:    category,
		Role:        role,
		Interaction: interaction,
		Confidence:  confidence,
		Area:        w * h,
		AspectRatio: aspect,
	}, true
}

// categorize scores the contour against its bounding box. borderAffinity is
// the fraction of contour pixels lying within a small tolerance of the box
// border; a rectangle's ring sits entirely on the border regardless of edge
// thickness, while a circle's ring leaves the border near the corners.
func categorize(contour []image.Point, minX, minY, maxX, maxY int, w, h, aspect float64) (models.ShapeCategory, float64) {
	if w <= 3 || h <= 3 {
		return models.ShapeLine, 0.6
	}

	tol := int(math.Max(2, 0.06*math.Min(w, h)))
	near := 0
	for _, p := range contour {
		if p.X-minX <= tol || maxX-p.X <= tol || p.Y-minY <= tol || maxY-p.Y <= tol {
			near++
		}
	}
	affinity := float64(near) / float64(len(contour))

	switch {
	case affinity >= 0.85:
		return models.ShapeRectangle, affinity
	case affinity >= 0.60:
		return models.ShapeRoundedRectangle, affinity
	}

	if aspect >= 0.8 && aspect <= 1.25 {
		// Ring length against the bounding circle's circumference.
		circularity := float64(len(contour)) / (math.Pi * (w + h) / 2)
		if circularity >= 0.7 && circularity <= 1.8 {
			return models.ShapeCircle, 1.0 - math.Min(1, math.Abs(circularity-1.0))
		}
	}
	return models.ShapeIrregular, 0.4
}

// inferRole maps geometry to the likely UI role and interaction.
func inferRole(category models.ShapeCategory, w, h, aspect float64, lightFill bool) (models.VisualRole, models.InteractionType) {
	switch category {
	case models.ShapeLine:
		return models.RoleDecoration, models.InteractUnknown
	case models.ShapeCircle:
		if w <= 56 {
			return models.RoleIcon, models.InteractIconButton
		}
		return models.RoleUnknown, models.InteractUnknown
	case models.ShapeIrregular:
		return models.RoleUnknown, models.InteractUnknown
	}

	// Rectangle and rounded rectangle.
	switch {
	case w <= 56 && h <= 56 && aspect >= 0.7 && aspect <= 1.4:
		return models.RoleIcon, models.InteractIconButton
	case aspect >= 4 && h >= 16 && h <= 60 && lightFill:
		return models.RoleInputField, models.InteractTextInput
	case aspect >= 1.2 && aspect < 8 && h >= 16 && h <= 96:
		return models.RoleButton, models.InteractButton
	default:
		return models.RoleContainer, models.InteractUnknown
	}
}

// lightFill samples the center pixel and reports whether it reads as a light
// surface, which separates input fields from filled buttons.
func lightFill(img image.Image, x, y int) bool {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return false
	}
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		return false
	}
	_, _, l := c.Hsl()
	return l > 0.7
}
