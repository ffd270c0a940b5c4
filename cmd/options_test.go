package cmd

import (
	"testing"

	"github.com/spf13/cobra"

	"wirthmage/internal/config"
	"wirthmage/internal/processor"
)

func TestOptionFlagsOverrideOnlyChanged(t *testing.T) {
	var o optionFlags
	cmd := &cobra.Command{Use: "test"}
	o.register(cmd)

	if err := cmd.ParseFlags([]string{"--size", "card", "--x2", "-c", "16", "--outline", "inner-black"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	params := config.Default("out")
	params.ImageType = processor.FormatPNG
	params.OutputX4 = true
	if err := o.apply(cmd, &params); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if params.ImageSize != processor.SizeCard || !params.OutputX2 || params.IndexedColor != processor.Indexed4Bit {
		t.Fatalf("flags not applied: %+v", params)
	}
	if params.OutlineStyle != processor.OutlineInnerBlack {
		t.Fatalf("outline: %s", params.OutlineStyle)
	}
	if params.ImageType != processor.FormatPNG || !params.OutputX4 || params.OutputDir != "out" {
		t.Fatalf("unset flags must keep saved values: %+v", params)
	}
}

func TestOptionFlagsRejectUnknownValues(t *testing.T) {
	var o optionFlags
	cmd := &cobra.Command{Use: "test"}
	o.register(cmd)

	if err := cmd.ParseFlags([]string{"--format", "webp"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	params := config.Default("out")
	if err := o.apply(cmd, &params); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParamRowsUseLabels(t *testing.T) {
	params := config.Default("out")
	params.ImageSize = processor.SizeYado
	rows := paramRows(params)
	if rows[2].Value != "冒険者の宿" || rows[0].Value != "-" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
