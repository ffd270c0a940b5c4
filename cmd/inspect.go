package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"wirthmage/internal/magick"
	"wirthmage/internal/processor"
	"wirthmage/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Show an image's size, the output size per preset and metadata that will be stripped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if info, err := os.Stat(path); err != nil || !info.Mode().IsRegular() {
			return fmt.Errorf("%w: %s", processor.ErrNotFound, path)
		}

		width, height, err := magick.New(env.MagickPath).Identify(cmd.Context(), path)
		if err != nil {
			return err
		}
		source := processor.Dimension{Width: width, Height: height}

		report, err := processor.InspectMetadata(path)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%s\n", inspectFileStyle.Render(path))

		rows := []tui.SummaryRow{
			{Label: "Type", Value: report.Kind.String()},
			{Label: "Size", Value: fmt.Sprintf("%s (%d px)", source, source.Pixels())},
		}
		for _, size := range processor.ImageSizes() {
			var targets []string
			for _, x := range []int{1, 2, 4} {
				targets = append(targets, processor.ResolveTarget(source, size, x).String())
				if size == processor.SizeAsIs {
					break
				}
			}
			rows = append(rows, tui.SummaryRow{Label: size.Label(), Value: strings.Join(targets, " / ")})
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

		fmt.Fprintf(os.Stdout, "%s\n", inspectCategoryStyle.Render("Stripped on convert:"))
		if report.Empty() {
			fmt.Fprintf(os.Stdout, "  %s %s\n", inspectBulletStyle.Render("-"), inspectDimStyle.Render("none"))
			return nil
		}
		var items []string
		if report.ExifTags > 0 {
			items = append(items, fmt.Sprintf("%d EXIF tags", report.ExifTags))
		}
		for _, key := range report.TextChunks {
			items = append(items, "text: "+key)
		}
		if report.HasGPS {
			items = append(items, "GPS location")
		}
		if report.HasModel {
			items = append(items, "device model")
		}
		if report.HasTimestamp {
			items = append(items, "timestamp")
		}
		for _, item := range items {
			fmt.Fprintf(os.Stdout, "  %s %s\n", inspectBulletStyle.Render("-"), inspectValueStyle.Render(item))
		}
		return nil
	},
}

var (
	inspectFileStyle     = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)
	inspectCategoryStyle = lipgloss.NewStyle().Foreground(tui.ColorAccentAlt)
	inspectValueStyle    = lipgloss.NewStyle().Foreground(tui.ColorInk)
	inspectDimStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	inspectBulletStyle   = lipgloss.NewStyle().Foreground(tui.ColorDim)
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}
