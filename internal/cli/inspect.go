package cli

import (
	"fmt"

	"github.com/gompdf/folio/internal/inspect"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file.pdf]",
		Short: "Print the page count and page sizes of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loggerFromContext(cmd.Context()).Debug("inspecting", "file", args[0])
			r, err := inspect.ReadFile(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render(args[0]))
			printKeyValue(w, "version", r.Version)
			printKeyValue(w, "pages", StyleNumber.Render(fmt.Sprint(r.PageCount)))
			if r.Title != "" {
				printKeyValue(w, "title", r.Title)
			}
			if r.Author != "" {
				printKeyValue(w, "author", r.Author)
			}
			if r.Creator != "" {
				printKeyValue(w, "creator", r.Creator)
			}
			for _, p := range r.Pages {
				printDetail(w, "page %d: %.1f x %.1f mm", p.Number, p.WidthMM(), p.HeightMM())
			}
			return nil
		},
	}
}
