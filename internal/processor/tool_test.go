package processor

import (
	"context"
	"errors"
	"image/color"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"wirthmage/internal/magick"
)

// fakeTool stands in for the magick binary. Run renders a blank image of the
// requested crop size (or the source size) at the output path, and writes
// the palette file when the directives ask for one.
type fakeTool struct {
	mu         sync.Mutex
	source     Dimension
	exitCode   int
	identifyFn func(path string) (int, int, error)

	identifyCalls int
	runs          [][]string
	palettes      []string
}

func (f *fakeTool) Identify(ctx context.Context, path string) (int, int, error) {
	f.mu.Lock()
	f.identifyCalls++
	f.mu.Unlock()
	if f.identifyFn != nil {
		return f.identifyFn(path)
	}
	return f.source.Width, f.source.Height, nil
}

func (f *fakeTool) Run(ctx context.Context, args ...string) (magick.Result, error) {
	f.mu.Lock()
	f.runs = append(f.runs, append([]string(nil), args...))
	f.mu.Unlock()

	if len(args) < 2 {
		return magick.Result{}, errors.New("not enough arguments")
	}

	for i, arg := range args {
		if arg == "-write" && i+1 < len(args) && !strings.HasPrefix(args[i+1], "mpr:") {
			palette := args[i+1]
			if err := os.WriteFile(palette, []byte("palette"), 0o644); err != nil {
				return magick.Result{}, err
			}
			f.mu.Lock()
			f.palettes = append(f.palettes, palette)
			f.mu.Unlock()
		}
	}

	if f.exitCode != 0 {
		return magick.Result{ExitCode: f.exitCode, Stderr: []byte("convert: simulated failure")}, nil
	}

	size := f.source
	if crop, ok := argAfter(args, "-crop"); ok {
		size = parseGeometry(strings.TrimSuffix(crop, "+0+0"))
	}

	img := imaging.New(size.Width, size.Height, color.NRGBA{R: 0x80, G: 0x40, B: 0x20, A: 0xff})
	if err := imaging.Save(img, args[len(args)-1]); err != nil {
		return magick.Result{ExitCode: 1, Stderr: []byte(err.Error())}, nil
	}
	return magick.Result{}, nil
}

func (f *fakeTool) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runs)
}

func argAfter(args []string, flag string) (string, bool) {
	for i, arg := range args {
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func parseGeometry(s string) Dimension {
	w, h, _ := strings.Cut(s, "x")
	width, _ := strconv.Atoi(w)
	height, _ := strconv.Atoi(h)
	return Dimension{Width: width, Height: height}
}
