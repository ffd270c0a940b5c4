package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"wirthmage/internal/magick"
)

var (
	// ErrNotFound is returned when a source path is not a regular file.
	ErrNotFound = fmt.Errorf("source image not found: %w", fs.ErrNotExist)
	// ErrIdentify is returned when the source dimensions cannot be measured.
	ErrIdentify = errors.New("cannot measure source image")
)

// Tool is the external image processor.
type Tool interface {
	Run(ctx context.Context, args ...string) (magick.Result, error)
	Identify(ctx context.Context, path string) (width, height int, err error)
}

// Request describes the conversion of one source image.
type Request struct {
	Path         string
	OutputDir    string
	Size         ImageSize
	X2           bool
	X4           bool
	Format       ImageFormat
	IndexedColor IndexedColor
	ColorMask    bool
	Outline      OutlineStyle
}

// Multipliers lists the scale factors this request produces, in order.
func (r Request) Multipliers() []int {
	if r.Size == SizeAsIs {
		return []int{1}
	}
	out := []int{1}
	if r.X2 {
		out = append(out, 2)
	}
	if r.X4 {
		out = append(out, 4)
	}
	return out
}

// Validate rejects option values outside their closed sets.
func (r Request) Validate() error {
	switch {
	case !validEnum(imageSizes, int(r.Size)):
		return fmt.Errorf("unsupported image size %d", r.Size)
	case !validEnum(imageFormats, int(r.Format)):
		return fmt.Errorf("unsupported output format %d", r.Format)
	case !validEnum(indexedColors, int(r.IndexedColor)):
		return fmt.Errorf("unsupported indexed color %d", r.IndexedColor)
	case !validEnum(outlineStyles, int(r.Outline)):
		return fmt.Errorf("unsupported outline style %d", r.Outline)
	}
	return nil
}

type Job struct {
	Path    string
	Display string
}

type Summary struct {
	Total     int
	Processed int
	Outputs   []string
	Failed    int
	Missing   []string
}

type ProgressUpdate struct {
	TotalDelta     int
	ProcessedDelta int
	OutputDelta    int
	FailedDelta    int
	Current        string
}
