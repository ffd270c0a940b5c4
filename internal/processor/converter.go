package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Converter turns one source image into the output variants of a Request by
// driving the external tool. It holds no per-call state.
type Converter struct {
	tool    Tool
	tempDir string
	logger  *zap.Logger
}

type ConverterOption func(*Converter)

// WithTempDir sets where temporary palette files are written.
func WithTempDir(dir string) ConverterOption {
	return func(c *Converter) {
		c.tempDir = dir
	}
}

func WithLogger(logger *zap.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger
	}
}

func NewConverter(tool Tool, opts ...ConverterOption) *Converter {
	c := &Converter{
		tool:    tool,
		tempDir: os.TempDir(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert writes every variant of req into req.OutputDir and returns the
// paths that were written. A missing source yields ErrNotFound before the
// tool is touched. A variant the tool fails on is skipped without error, so
// the result may be a partial set.
func (c *Converter) Convert(ctx context.Context, req Request) ([]string, error) {
	info, err := os.Stat(req.Path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Path)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, err
	}

	width, height, err := c.tool.Identify(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrIdentify, req.Path, err)
	}
	source := Dimension{Width: width, Height: height}

	var written []string
	for _, x := range req.Multipliers() {
		if out, ok := c.convertVariant(ctx, req, source, x); ok {
			written = append(written, out)
		}
	}
	return written, nil
}

func (c *Converter) convertVariant(ctx context.Context, req Request, source Dimension, x int) (string, bool) {
	out := OutputPath(req.Path, req.OutputDir, req.Format, x)
	colors := req.IndexedColor.Colors()
	_, preset := req.Size.Dimension()

	plan := Plan{
		Source:    source,
		Target:    ResolveTarget(source, req.Size, x),
		Resize:    preset,
		Format:    req.Format,
		Colors:    colors,
		ColorMask: req.ColorMask,
		Outline:   req.Outline,
	}
	if colors > 0 {
		plan.PalettePath = filepath.Join(c.tempDir, "wirthmage-palette-"+uuid.NewString()+".png")
		defer os.Remove(plan.PalettePath)
	}

	args := []string{req.Path}
	args = append(args, BuildPipeline(plan).Args()...)
	args = append(args, out)

	log := c.logger.With(zap.String("source", req.Path), zap.String("output", out), zap.Stringer("target", plan.Target))
	log.Debug("invoking tool", zap.Strings("args", args))

	res, err := c.tool.Run(ctx, args...)
	if err != nil {
		log.Warn("tool did not run", zap.Error(err))
		return "", false
	}
	if res.ExitCode != 0 {
		log.Debug("tool failed", zap.Int("exit_code", res.ExitCode), zap.ByteString("stderr", res.Stderr))
		return "", false
	}
	return out, true
}

// OutputPath names the file written for multiplier x: "<stem>.<ext>" for 1x,
// "<stem>.x2.<ext>" and so on otherwise. A dotfile such as ".png" keeps its
// whole name as the stem.
func OutputPath(src, outputDir string, format ImageFormat, x int) string {
	name := filepath.Base(src)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = name
	}
	ext := "." + format.Ext()
	if x != 1 {
		ext = ".x" + strconv.Itoa(x) + ext
	}
	return filepath.Join(outputDir, stem+ext)
}
