package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wirthmage/internal/config"
	"wirthmage/internal/magick"
	"wirthmage/internal/processor"
	"wirthmage/internal/tui"
)

var (
	convertFlags  optionFlags
	convertNoSave bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] [path...]",
	Short: "Convert images for CardWirth",
	Long: "Convert images for CardWirth. Paths may be files or folders. Without paths the\n" +
		"input files saved by the previous run are used. Options not given on the command\n" +
		"line are taken from the saved options.",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := loadParams()
		if err := convertFlags.apply(cmd, &params); err != nil {
			return err
		}
		if len(args) > 0 {
			params.InputFiles = []string{}
			params.AddInputs(args...)
		}
		if len(params.InputFiles) == 0 {
			return fmt.Errorf("no input files: pass image paths or folders")
		}

		conv := newConverter()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		updates := make(chan processor.ProgressUpdate, 64)
		model := tui.NewModel(updates, cancel)
		program := tea.NewProgram(model)

		uiDone := make(chan struct{})
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()

		inputs := append([]string(nil), params.InputFiles...)
		summary, err := processor.Run(ctx, conv, inputs, params.Request(""), updates)

		close(updates)
		<-uiDone
		if err != nil {
			return err
		}

		for _, path := range summary.Outputs {
			fmt.Fprintln(os.Stdout, path)
		}
		for _, path := range summary.Missing {
			logger.Warn("input not found, removed from the list", zap.String("path", path))
		}
		params.RemoveInputs(summary.Missing...)

		rows := []tui.SummaryRow{
			{Label: "Files converted", Value: fmt.Sprintf("%d/%d", summary.Processed, summary.Total)},
			{Label: "Images written", Value: fmt.Sprintf("%d", len(summary.Outputs))},
			{Label: "Variants failed", Value: fmt.Sprintf("%d", summary.Failed)},
			{Label: "Inputs not found", Value: fmt.Sprintf("%d", len(summary.Missing))},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))
		if summary.Processed < summary.Total {
			fmt.Fprintln(os.Stdout, "Cancelled: remaining files were skipped.")
		}

		outPath := params.OutputDir
		if abs, absErr := filepath.Abs(outPath); absErr == nil {
			outPath = abs
		}
		fmt.Fprintf(os.Stdout, "Converted files written to: %s\n", outPath)
		fmt.Fprintln(os.Stdout, "Note: files with the same name in the output folder are overwritten.")

		if convertNoSave {
			return nil
		}
		if err := config.Save(env.ConfigPath, params); err != nil {
			logger.Warn("could not save options", zap.String("config", env.ConfigPath), zap.Error(err))
		}
		return nil
	},
}

func newConverter() *processor.Converter {
	return processor.NewConverter(
		magick.New(env.MagickPath),
		processor.WithTempDir(env.TempDir),
		processor.WithLogger(logger),
	)
}

func init() {
	convertFlags.register(convertCmd)
	convertCmd.Flags().BoolVar(&convertNoSave, "no-save", false, "do not remember these options and inputs")

	rootCmd.AddCommand(convertCmd)
}
