package processor

import (
	"errors"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"go.uber.org/zap/zaptest"
)

func writeSource(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func imageSize(t *testing.T, path string) Dimension {
	t.Helper()
	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	b := img.Bounds()
	return Dimension{Width: b.Dx(), Height: b.Dy()}
}

func newTestConverter(t *testing.T, tool Tool) *Converter {
	t.Helper()
	return NewConverter(tool, WithTempDir(t.TempDir()), WithLogger(zaptest.NewLogger(t)))
}

func TestConvertCardWithDoubleSize(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "hero.png")
	out := filepath.Join(dir, "out")

	tool := &fakeTool{source: Dimension{Width: 1000, Height: 600}}
	conv := newTestConverter(t, tool)

	written, err := conv.Convert(testContext(t), Request{
		Path:      src,
		OutputDir: out,
		Size:      SizeCard,
		X2:        true,
		Format:    FormatPNG,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	want := map[string]Dimension{
		filepath.Join(out, "hero.png"):    {Width: 74, Height: 94},
		filepath.Join(out, "hero.x2.png"): {Width: 148, Height: 188},
	}
	if len(written) != len(want) {
		t.Fatalf("expected %d outputs, got %v", len(want), written)
	}
	for path, dim := range want {
		if got := imageSize(t, path); got != dim {
			t.Fatalf("%s: got %s, want %s", path, got, dim)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "hero.x4.png")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatal("x4 output must not exist")
	}
	if tool.identifyCalls != 1 {
		t.Fatalf("source measured %d times", tool.identifyCalls)
	}
}

func TestConvertEveryMultiplier(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "inn.bmp")
	out := filepath.Join(dir, "out")

	tool := &fakeTool{source: Dimension{Width: 800, Height: 800}}
	written, err := newTestConverter(t, tool).Convert(testContext(t), Request{
		Path:      src,
		OutputDir: out,
		Size:      SizeYado,
		X2:        true,
		X4:        true,
		Format:    FormatBMP,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	names := []string{"inn.bmp", "inn.x2.bmp", "inn.x4.bmp"}
	if len(written) != len(names) {
		t.Fatalf("got %v", written)
	}
	for i, name := range names {
		if written[i] != filepath.Join(out, name) {
			t.Fatalf("output %d: got %s, want %s", i, written[i], name)
		}
		want := Dimension{Width: 400, Height: 260}.Scale(1 << i)
		if got := imageSize(t, written[i]); got != want {
			t.Fatalf("%s: got %s, want %s", name, got, want)
		}
	}
}

func TestConvertAsIsIgnoresMultipliers(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "face.jpg")
	out := filepath.Join(dir, "out")

	source := Dimension{Width: 120, Height: 90}
	tool := &fakeTool{source: source}
	written, err := newTestConverter(t, tool).Convert(testContext(t), Request{
		Path:      src,
		OutputDir: out,
		Size:      SizeAsIs,
		X2:        true,
		X4:        true,
		Format:    FormatJPEG,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if len(written) != 1 || written[0] != filepath.Join(out, "face.jpg") {
		t.Fatalf("expected a single 1x output, got %v", written)
	}
	if tool.runCount() != 1 {
		t.Fatalf("tool ran %d times", tool.runCount())
	}
	if got := imageSize(t, written[0]); got != source {
		t.Fatalf("got %s, want %s", got, source)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one file in output dir, got %d", len(entries))
	}
}

func TestConvertMissingSource(t *testing.T) {
	tool := &fakeTool{source: Dimension{Width: 10, Height: 10}}
	dir := t.TempDir()

	_, err := newTestConverter(t, tool).Convert(testContext(t), Request{
		Path:      filepath.Join(dir, "gone.png"),
		OutputDir: filepath.Join(dir, "out"),
		Size:      SizeCard,
		X2:        true,
	})
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not found, got %v", err)
	}
	if tool.identifyCalls != 0 || tool.runCount() != 0 {
		t.Fatalf("tool invoked: identify=%d run=%d", tool.identifyCalls, tool.runCount())
	}

	_, err = newTestConverter(t, tool).Convert(testContext(t), Request{Path: dir, OutputDir: dir})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("directory source: expected not found, got %v", err)
	}
}

func TestConvertToolFailureIsSilent(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "broken.png")
	out := filepath.Join(dir, "out")

	tool := &fakeTool{source: Dimension{Width: 2000, Height: 1000}, exitCode: 1}
	written, err := newTestConverter(t, tool).Convert(testContext(t), Request{
		Path:         src,
		OutputDir:    out,
		Size:         SizeFull,
		X2:           true,
		Format:       FormatBMP,
		IndexedColor: Indexed4Bit,
	})
	if err != nil {
		t.Fatalf("tool failure must not raise: %v", err)
	}
	if len(written) != 0 {
		t.Fatalf("expected no outputs, got %v", written)
	}
	for _, name := range []string{"broken.bmp", "broken.x2.bmp"} {
		if _, err := os.Stat(filepath.Join(out, name)); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("%s must not exist", name)
		}
	}
	assertPalettesRemoved(t, tool, 2)
}

func TestConvertRemovesPaletteOnSuccess(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "big.png")

	tool := &fakeTool{source: Dimension{Width: 2000, Height: 1000}}
	written, err := newTestConverter(t, tool).Convert(testContext(t), Request{
		Path:         src,
		OutputDir:    filepath.Join(dir, "out"),
		Size:         SizeCard,
		Format:       FormatPNG,
		IndexedColor: Indexed4Bit,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("got %v", written)
	}
	assertPalettesRemoved(t, tool, 1)

	// palette is computed on a copy limited to the sample budget and
	// applied to the full-resolution checkpoint
	args := tool.runs[0]
	if indexOf(args, "-resize", "809x404>") < 0 {
		t.Fatalf("palette sample not limited: %v", args)
	}
	if indexOf(args, "+delete", "mpr:base") < 0 {
		t.Fatalf("remap must start from the base checkpoint: %v", args)
	}
}

func TestConvertIdentifyFailure(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "odd.png")

	tool := &fakeTool{identifyFn: func(string) (int, int, error) {
		return 0, 0, errors.New("no decode delegate")
	}}
	_, err := newTestConverter(t, tool).Convert(testContext(t), Request{Path: src, OutputDir: dir})
	if !errors.Is(err, ErrIdentify) {
		t.Fatalf("expected identify error, got %v", err)
	}
	if tool.runCount() != 0 {
		t.Fatal("tool must not run without a source size")
	}
}

func TestConvertRejectsInvalidOptions(t *testing.T) {
	for name, req := range map[string]Request{
		"size":    {Size: ImageSize(9), X2: true},
		"format":  {Size: SizeCard, Format: ImageFormat(-1)},
		"indexed": {Size: SizeCard, IndexedColor: IndexedColor(42)},
		"outline": {Size: SizeCard, Outline: OutlineStyle(99)},
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			req.Path = writeSource(t, dir, "hero.png")
			req.OutputDir = filepath.Join(dir, "out")

			tool := &fakeTool{source: Dimension{Width: 100, Height: 100}}
			written, err := newTestConverter(t, tool).Convert(testContext(t), req)
			if err == nil || len(written) != 0 {
				t.Fatalf("expected rejection, got %v, %v", written, err)
			}
			if tool.identifyCalls != 0 || tool.runCount() != 0 {
				t.Fatalf("tool invoked: identify=%d run=%d", tool.identifyCalls, tool.runCount())
			}
			if _, err := os.Stat(req.OutputDir); !errors.Is(err, fs.ErrNotExist) {
				t.Fatalf("output dir created for rejected request: %v", err)
			}
		})
	}
}

func TestConvertDotfileSourceKeepsName(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, ".png")
	out := filepath.Join(dir, "out")

	tool := &fakeTool{source: Dimension{Width: 40, Height: 30}}
	written, err := newTestConverter(t, tool).Convert(testContext(t), Request{
		Path:      src,
		OutputDir: out,
		Format:    FormatBMP,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := filepath.Join(out, ".png.bmp")
	if len(written) != 1 || written[0] != want {
		t.Fatalf("written: %v, want %s", written, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	cases := []struct {
		src    string
		format ImageFormat
		x      int
		want   string
	}{
		{src: "/in/a.png", format: FormatBMP, x: 1, want: "a.bmp"},
		{src: "/in/a.png", format: FormatJPEG, x: 2, want: "a.x2.jpg"},
		{src: "/in/a.b.gif", format: FormatPNG, x: 4, want: "a.b.x4.png"},
		{src: "/in/noext", format: FormatPNG, x: 1, want: "noext.png"},
		{src: "/in/.png", format: FormatBMP, x: 1, want: ".png.bmp"},
		{src: "/in/.png", format: FormatJPEG, x: 2, want: ".png.x2.jpg"},
	}
	for _, tc := range cases {
		got := OutputPath(tc.src, "/out", tc.format, tc.x)
		if got != filepath.Join("/out", tc.want) {
			t.Fatalf("%s x%d: got %s, want %s", tc.src, tc.x, got, tc.want)
		}
	}
}

func assertPalettesRemoved(t *testing.T, tool *fakeTool, want int) {
	t.Helper()
	if len(tool.palettes) != want {
		t.Fatalf("expected %d palette files, got %d", want, len(tool.palettes))
	}
	seen := map[string]bool{}
	for _, p := range tool.palettes {
		if seen[p] {
			t.Fatalf("palette path reused: %s", p)
		}
		seen[p] = true
		if _, err := os.Stat(p); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("palette %s left behind", p)
		}
	}
}
