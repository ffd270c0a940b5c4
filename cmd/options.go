package cmd

import (
	"github.com/spf13/cobra"

	"wirthmage/internal/config"
	"wirthmage/internal/processor"
)

// optionFlags are the conversion options shared by convert and watch. Only
// flags set on the command line override the saved options.
type optionFlags struct {
	output  string
	size    string
	x2      bool
	x4      bool
	format  string
	colors  string
	mask    bool
	outline string
}

func (o *optionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "output folder")
	f.StringVarP(&o.size, "size", "s", "", "output size: as-is, full, yado, card")
	f.BoolVar(&o.x2, "x2", false, "also write a double-size variant")
	f.BoolVar(&o.x4, "x4", false, "also write a quadruple-size variant")
	f.StringVarP(&o.format, "format", "f", "", "output format: bmp, png, jpeg")
	f.StringVarP(&o.colors, "colors", "c", "", "reduce to an indexed palette: none, 2, 4, 8, 16, 32, 64, 128, 256")
	f.BoolVarP(&o.mask, "mask", "m", false, "keep the top-left pixel color transparent")
	f.StringVar(&o.outline, "outline", "", "outline for masked images: none, inner-black, outer-black, inner-white, outer-white, inner-black-outer-white, inner-white-outer-black")
}

func (o *optionFlags) apply(cmd *cobra.Command, p *config.Params) error {
	f := cmd.Flags()

	if f.Changed("output") {
		p.OutputDir = o.output
	}
	if f.Changed("size") {
		v, err := processor.ParseImageSize(o.size)
		if err != nil {
			return err
		}
		p.ImageSize = v
	}
	if f.Changed("x2") {
		p.OutputX2 = o.x2
	}
	if f.Changed("x4") {
		p.OutputX4 = o.x4
	}
	if f.Changed("format") {
		v, err := processor.ParseImageFormat(o.format)
		if err != nil {
			return err
		}
		p.ImageType = v
	}
	if f.Changed("colors") {
		v, err := processor.ParseIndexedColor(o.colors)
		if err != nil {
			return err
		}
		p.IndexedColor = v
	}
	if f.Changed("mask") {
		p.ColorMask = o.mask
	}
	if f.Changed("outline") {
		v, err := processor.ParseOutlineStyle(o.outline)
		if err != nil {
			return err
		}
		p.OutlineStyle = v
	}
	return nil
}
