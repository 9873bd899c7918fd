package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ivlev/lottiethumb/internal/engine"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir> <destination-dir>",
		Short: "Regenerate thumbnails whenever animations in a directory change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			thumb, err := ctx.thumbnailer()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(args[1], 0o755); err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = thumb.Watch(runCtx, args[0], args[1], func(res engine.BatchResult) {
				if res.Err != nil {
					fmt.Fprintf(out, "[!] %s: %v\n", res.Source, res.Err)
					return
				}
				fmt.Fprintf(out, "[>] %s -> %s (%s)\n", res.Source, res.Destination, res.Item.Lottie.ThumbnailType)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
