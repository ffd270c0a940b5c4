package processor

import (
	"fmt"
	"math"
)

// Dimension is a width/height pair in pixels.
type Dimension struct {
	Width  int
	Height int
}

func (d Dimension) Pixels() int {
	return d.Width * d.Height
}

func (d Dimension) AspectRatio() float64 {
	return float64(d.Width) / float64(d.Height)
}

func (d Dimension) Scale(factor int) Dimension {
	return Dimension{Width: d.Width * factor, Height: d.Height * factor}
}

// LimitPixels returns a dimension with the same aspect ratio whose pixel
// count does not exceed max. Both axes are truncated, so the result may
// undershoot the budget slightly.
func (d Dimension) LimitPixels(max int) Dimension {
	ratio := d.AspectRatio()
	height := math.Sqrt(float64(max) / ratio)
	width := height * ratio
	return Dimension{Width: int(width), Height: int(height)}
}

// Less orders dimensions by pixel count only.
func (d Dimension) Less(other Dimension) bool {
	return d.Pixels() < other.Pixels()
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

var presetDimensions = map[ImageSize]Dimension{
	SizeFull: {Width: 632, Height: 420},
	SizeYado: {Width: 400, Height: 260},
	SizeCard: {Width: 74, Height: 94},
}

// Dimension returns the preset's base size. It reports false for SizeAsIs.
func (s ImageSize) Dimension() (Dimension, bool) {
	d, ok := presetDimensions[s]
	return d, ok
}

// ResolveTarget computes the output size for one scale variant. SizeAsIs
// always yields source, whatever the multiplier.
func ResolveTarget(source Dimension, size ImageSize, multiplier int) Dimension {
	base, ok := size.Dimension()
	if !ok {
		return source
	}
	return base.Scale(multiplier)
}
