package main

import (
	"github.com/a-h/templ"
	"github.com/spf13/cobra"

	"github.com/phrazzld/memoryblocks/internal/viewer"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		accent   string
		title    string
		fragment bool
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a block document as read-only HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			r := viewer.NewRenderer(viewer.WithLogger(opts.logger(cmd)))
			var c templ.Component = r.RenderDocument(doc, accent, nil)
			if !fragment {
				c = viewer.Page(title, accent, c)
			}
			return c.Render(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&accent, "accent", "", "Accent color as #RRGGBB")
	cmd.Flags().StringVar(&title, "title", "Memory", "Page title")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "Write only the document markup, without the page wrapper")
	return cmd
}
