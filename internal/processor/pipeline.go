package processor

import "strconv"

const (
	// sharpenBelow is the pixel count under which resized output is sharpened.
	sharpenBelow = 0x8000
	// paletteSampleBudget bounds the pixel count used for palette clustering.
	paletteSampleBudget = 0x50000
	// paletteCandidates is the pre-clustering color count.
	paletteCandidates = 0x800

	topLeftPixel = "%[pixel:p{0,0}]"
)

// Checkpoint is a named snapshot of the pipeline's image state. Save it to
// capture the current image and Recall it to push the snapshot back.
type Checkpoint struct {
	name string
}

// Pipeline accumulates ImageMagick directives in order.
type Pipeline struct {
	args        []string
	checkpoints map[string]*Checkpoint
}

func NewPipeline() *Pipeline {
	return &Pipeline{checkpoints: make(map[string]*Checkpoint)}
}

func (p *Pipeline) Add(args ...string) *Pipeline {
	p.args = append(p.args, args...)
	return p
}

func (p *Pipeline) Define(key, value string) *Pipeline {
	return p.Add("-define", key+"="+value)
}

// Checkpoint returns the checkpoint registered under name, creating it on
// first use.
func (p *Pipeline) Checkpoint(name string) *Checkpoint {
	if cp, ok := p.checkpoints[name]; ok {
		return cp
	}
	cp := &Checkpoint{name: name}
	p.checkpoints[name] = cp
	return cp
}

func (p *Pipeline) Save(cp *Checkpoint) *Pipeline {
	return p.Add("-write", cp.register())
}

func (p *Pipeline) Recall(cp *Checkpoint) *Pipeline {
	return p.Add(cp.register())
}

func (p *Pipeline) Args() []string {
	out := make([]string, len(p.args))
	copy(out, p.args)
	return out
}

func (cp *Checkpoint) register() string {
	return "mpr:" + cp.name
}

// Plan holds everything needed to build the directives for one output variant.
type Plan struct {
	Source      Dimension
	Target      Dimension
	Resize      bool
	Format      ImageFormat
	Colors      int
	ColorMask   bool
	Outline     OutlineStyle
	PalettePath string
}

// BuildPipeline translates a plan into the ordered directive list passed
// between the source and output paths.
func BuildPipeline(plan Plan) *Pipeline {
	p := NewPipeline()
	base := p.Checkpoint("base")

	p.Add("-background", topLeftPixel)
	p.Define("png:compression-level", "1")

	switch {
	case plan.ColorMask:
		// masking keeps alpha even when palette reduction is also requested
		p.Add("-alpha", "set", "-transparent", topLeftPixel)
	case plan.Colors > 0:
		p.Add("-alpha", "off")
	}

	if plan.Resize {
		size := plan.Target.String()
		p.Add(
			"-gravity", "Center",
			"-filter", "Hermite",
			"-resize", size+"^",
			"-crop", size+"+0+0", "+repage",
		)

		if plan.Target.Pixels() < sharpenBelow && plan.Target != plan.Source {
			p.Add("-channel", "RGB", "-sharpen", "0x.75")
		}
	}

	if plan.ColorMask {
		p.Add("-channel", "A", "-threshold", "50%")
	}

	p.Save(base)

	if plan.ColorMask {
		if fill := plan.Outline.Inner(); fill != "" {
			p.Add(
				"-alpha", "remove",
				"+transparent", topLeftPixel,
				"-channel", "A",
				"-morphology", "Dilate", "Diamond",
				"-transparent", topLeftPixel,
				"-channel", "RGB",
				"-fill", fill,
				"-colorize", "100%",
			)
			p.Recall(base)
			p.Add("+swap", "-channel", "RGBA", "-composite")
			p.Save(base)
		}

		if fill := plan.Outline.Outer(); fill != "" {
			p.Add(
				"-channel", "A",
				"-morphology", "Dilate", "Diamond",
				"-channel", "RGB",
				"-fill", fill,
				"-colorize", "100%",
			)
			p.Recall(base)
			p.Add("-channel", "RGBA", "-composite")
			p.Save(base)
		}
	}

	if plan.Colors > 0 {
		sample := plan.Source.LimitPixels(paletteSampleBudget)
		p.Add(
			"-channel", "RGB",
			"-filter", "Point",
			"-resize", sample.String()+">",
			"+dither",
			"-colors", strconv.Itoa(paletteCandidates),
			"-kmeans", strconv.Itoa(plan.Colors),
			"-channel", "RGBA",
			"-write", plan.PalettePath,
			"+delete",
		)
		p.Recall(base)
		p.Define("dither:diffusion-amount", "75%")
		p.Add("-dither", "FloydSteinberg", "-remap", plan.PalettePath)
	}

	if plan.Colors > 0 || plan.ColorMask {
		// without "-alpha off +remap" BMP output is not written as indexed color
		p.Add("-alpha", "remove", "-alpha", "off", "+remap")
	}

	switch plan.Format {
	case FormatBMP:
		p.Define("bmp:format", "bmp2")
	case FormatPNG:
		p.Define("png:compression-level", "9")
		p.Define("png:compression-filter", "5")
	case FormatJPEG:
		p.Define("jpeg:dct-method", "fast")
		p.Add("-sampling-factor", "4:2:0", "-quality", "85", "-interlace", "JPEG")
	}

	p.Add("-strip")
	return p
}
