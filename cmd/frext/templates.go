package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aki307/frext/model"
	"github.com/aki307/frext/state"
	"github.com/spf13/cobra"
)

func newTemplatesCmd(a *app) *cobra.Command {
	var (
		category string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List document templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates := state.NewTemplates(a.client)
			resp := templates.Load(cmd.Context(), category)
			if !resp.Success {
				return failed("templates", templates.Error(), resp)
			}

			list := templates.Active()
			if all && templates.Data() != nil {
				list = *templates.Data()
			}
			if len(list) == 0 {
				a.printf("No templates found.\n")
				return nil
			}
			writeTemplates(a, list, all)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only list templates in this category")
	cmd.Flags().BoolVar(&all, "all", false, "include inactive templates")
	return cmd
}

func writeTemplates(a *app, list []model.Template, withStatus bool) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	header := "ID\tNAME\tCATEGORY\tUSES\tFIELDS"
	if withStatus {
		header += "\tACTIVE"
	}
	fmt.Fprintf(w, "%s\n", header)
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s", t.ID, t.Name, t.Category, t.UsageCount, strings.Join(t.ExpectedFields, ","))
		if withStatus {
			fmt.Fprintf(w, "\t%t", t.IsActive)
		}
		fmt.Fprintf(w, "\n")
	}
	w.Flush()
}
