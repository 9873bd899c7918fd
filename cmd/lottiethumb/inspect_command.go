package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivlev/lottiethumb/internal/engine"
	"github.com/ivlev/lottiethumb/internal/lottie"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "inspect <source>",
		Short: "Show metadata, colours and asset resolution without rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thumb, err := ctx.thumbnailer()
			if err != nil {
				return err
			}
			info, err := thumb.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut || !isTerminal(out) {
				return engine.EncodeItem(out, info, outputFormat(jsonOut))
			}
			fmt.Fprintln(out, renderInspection(info))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the inspection as JSON")
	return cmd
}

func renderInspection(info *engine.Inspection) string {
	md := info.Metadata
	rows := [][]string{
		{"Source", info.Source},
		{"Archive", strconv.FormatBool(info.Archive)},
		{"Entries", strconv.Itoa(info.Entries)},
		{"Document", info.Document + " (" + info.Locator + ")"},
		{"Name", md.Name},
		{"Version", md.Version},
		{"Size", fmt.Sprintf("%dx%d", md.Width, md.Height)},
		{"Thumbnail", fmt.Sprintf("%dx%d (x%d)", md.ThumbnailWidth, md.ThumbnailHeight, md.ThumbnailScale)},
		{"Frame rate", lottie.FormatFrameRate(md.FrameRate)},
		{"Duration", lottie.FormatDuration(md.DurationSeconds)},
		{"Frames", strconv.FormatFloat(md.TotalFrames, 'f', -1, 64)},
		{"Layers", strconv.Itoa(md.LayerCount)},
		{"Markers", strconv.Itoa(md.MarkerCount)},
		{"Colours", strings.Join(info.Colors.DominantColors, " ")},
		{"Assets", fmt.Sprintf("%d resolved, %d unresolved, %d skipped",
			len(info.Assets.Resolved), len(info.Assets.Unresolved), info.Assets.Skipped)},
	}
	summary := renderTable([]string{"Field", "Value"}, rows)
	if len(info.Assets.Resolved) == 0 && len(info.Assets.Unresolved) == 0 {
		return summary
	}

	assetRows := make([][]string, 0, len(info.Assets.Resolved)+len(info.Assets.Unresolved))
	for _, r := range info.Assets.Resolved {
		assetRows = append(assetRows, []string{r.AssetID, r.Declared, r.Entry, r.Candidate, r.MimeType})
	}
	for _, p := range info.Assets.Unresolved {
		assetRows = append(assetRows, []string{"", p, "-", "unresolved", ""})
	}
	return summary + "\n" + renderTable([]string{"Asset", "Declared", "Entry", "Candidate", "MIME"}, assetRows)
}
