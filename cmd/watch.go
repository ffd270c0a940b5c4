package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wirthmage/internal/processor"
	"wirthmage/internal/watch"
)

var watchFlags optionFlags

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <folder>",
	Short: "Convert images as they are dropped into a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := loadParams()
		if err := watchFlags.apply(cmd, &params); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		w := watch.New(newConverter(), params.Request(""), logger)
		fmt.Fprintf(os.Stdout, "Watching %s, press ctrl+c to stop.\n", args[0])

		return w.Run(ctx, args[0], func(r watch.Result) {
			switch {
			case errors.Is(r.Err, processor.ErrNotFound):
				// removed again before it settled
			case r.Err != nil:
				logger.Warn("conversion failed", zap.String("source", r.Source), zap.Error(r.Err))
			default:
				for _, path := range r.Outputs {
					fmt.Fprintln(os.Stdout, path)
				}
			}
		})
	},
}

func init() {
	watchFlags.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
