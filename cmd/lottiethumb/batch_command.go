package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivlev/lottiethumb/internal/system"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch <destination-dir> <source>...",
		Short: "Render thumbnails for many inputs concurrently",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			thumb, err := ctx.thumbnailer()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = system.BatchWorkers(cfg.Preview.MaxPixels)
			}

			results := thumb.Batch(cmd.Context(), args[1:], args[0], workers)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					rows = append(rows, []string{res.Source, "failed", "", res.Err.Error()})
					continue
				}
				rows = append(rows, []string{
					res.Source,
					res.Item.Lottie.ThumbnailType,
					fmt.Sprintf("%dx%d", res.Item.Lottie.ThumbnailWidth, res.Item.Lottie.ThumbnailHeight),
					res.Destination,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Source", "Tier", "Size", "Output"}, rows, 2))
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent renders (0 sizes from CPU and memory)")
	return cmd
}
