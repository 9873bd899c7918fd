package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ivlev/lottiethumb/internal/engine"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var archive, document bool
	var inlineOut, itemOut string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "render <source> <destination.png>",
		Short: "Render one thumbnail and print the result record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive && document {
				return errors.New("--archive and --document are mutually exclusive")
			}
			thumb, err := ctx.thumbnailer()
			if err != nil {
				return err
			}

			req := engine.Request{Source: args[0], Destination: args[1], InlinePath: inlineOut}
			var item engine.Item
			switch {
			case archive:
				err = thumb.GenerateArchive(cmd.Context(), req, &item)
			case document:
				err = thumb.GenerateDocument(cmd.Context(), req, &item)
			default:
				err = thumb.Generate(cmd.Context(), req, &item)
			}
			if err != nil {
				return err
			}
			if itemOut != "" {
				if err := engine.WriteItem(itemOut, &item); err != nil {
					return err
				}
			}
			return engine.EncodeItem(cmd.OutOrStdout(), &item, outputFormat(jsonOut))
		},
	}

	cmd.Flags().BoolVar(&archive, "archive", false, "Use the archive entry point")
	cmd.Flags().BoolVar(&document, "document", false, "Use the bare document entry point")
	cmd.Flags().StringVar(&inlineOut, "inline-out", "", "Also write the document with inlined assets to this path")
	cmd.Flags().StringVar(&itemOut, "item-out", "", "Also save the result record to this path (.json for JSON, otherwise YAML)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result record as JSON")
	return cmd
}

func outputFormat(jsonOut bool) string {
	if jsonOut {
		return engine.FormatJSON
	}
	return engine.FormatYAML
}
