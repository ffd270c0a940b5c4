package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wirthmage/internal/config"
	"wirthmage/internal/tui"
)

var configReset bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or reset the saved conversion options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := loadParams()
		if configReset {
			params = config.Default(env.OutputDir)
			if err := config.Save(env.ConfigPath, params); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Options reset to defaults.")
		}

		fmt.Fprintln(os.Stdout, env.ConfigPath)
		fmt.Fprintln(os.Stdout, tui.RenderSummary(paramRows(params)))
		return nil
	},
}

func paramRows(p config.Params) []tui.SummaryRow {
	inputs := "-"
	if len(p.InputFiles) > 0 {
		inputs = strings.Join(p.InputFiles, ", ")
	}
	return []tui.SummaryRow{
		{Label: "入力ファイル", Value: inputs},
		{Label: "出力フォルダ", Value: p.OutputDir},
		{Label: "出力サイズ", Value: p.ImageSize.Label()},
		{Label: "2倍サイズ", Value: onOff(p.OutputX2)},
		{Label: "4倍サイズ", Value: onOff(p.OutputX4)},
		{Label: "出力形式", Value: p.ImageType.Label()},
		{Label: "減色", Value: p.IndexedColor.Label()},
		{Label: "透過色を保護", Value: onOff(p.ColorMask)},
		{Label: "縁取り", Value: p.OutlineStyle.Label()},
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func init() {
	configCmd.Flags().BoolVar(&configReset, "reset", false, "restore the default options")
	rootCmd.AddCommand(configCmd)
}
