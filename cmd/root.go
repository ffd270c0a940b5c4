package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wirthmage/internal/config"
	"wirthmage/internal/logging"
)

var (
	verbose    bool
	magickPath string
	configPath string

	env    config.Env
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "wirthmage",
	Short: "WirthMage🧙 - convert images for CardWirth",
	Long:  "WirthMage🧙 converts images into the sizes, formats and palettes CardWirth expects, using ImageMagick.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env = config.LoadEnv()
		if magickPath != "" {
			env.MagickPath = magickPath
		}
		if configPath != "" {
			env.ConfigPath = configPath
		}

		l, err := logging.New(verbose)
		if err != nil {
			return err
		}
		logger = l
		if !env.DotEnv {
			logger.Debug("no .env file found")
		}
		logger.Debug("settings",
			zap.String("magick", env.MagickPath),
			zap.String("config", env.ConfigPath),
			zap.String("output", env.OutputDir),
		)
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SilenceErrors = true

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "log every ImageMagick invocation")
	flags.StringVar(&magickPath, "magick", "", "ImageMagick directory or magick binary (env WIRTHMAGE_MAGICK)")
	flags.StringVar(&configPath, "config", "", "saved options file, .json or .yaml (env WIRTHMAGE_CONFIG)")
}

// loadParams reads the saved options. A broken file is replaced by the
// defaults; the reason is only logged.
func loadParams() config.Params {
	params, err := config.Load(env.ConfigPath, config.Default(env.OutputDir))
	if err != nil {
		logger.Debug("using default options", zap.String("config", env.ConfigPath), zap.Error(err))
	}
	return params
}
