package cli

import (
	"fmt"

	"github.com/gompdf/folio/internal/templates"
	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the resume templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := templates.New()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render("Resume templates"))
			for _, t := range set.List() {
				fmt.Fprintln(w, styleName.Render(t.Name)+" "+StyleValue.Render(t.Title))
				printDetail(w, "%s", t.Description)
			}
			return nil
		},
	}
}
