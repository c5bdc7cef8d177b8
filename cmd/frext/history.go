package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aki307/frext/client"
	"github.com/aki307/frext/export"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		q          client.HistoryQuery
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved processing results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}

			resp := a.client.GetProcessingHistory(cmd.Context(), q)
			if !resp.Success || resp.Data == nil {
				return failed("history", resp.Error, resp)
			}
			page := resp.Data

			if exportPath != "" {
				raw, err := export.HistoryXLSX(page.Items, a.logger)
				if err != nil {
					return fmt.Errorf("export history: %w", err)
				}
				if err := os.WriteFile(exportPath, raw, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", exportPath, err)
				}
				a.printf("Exported %d records to %s\n", len(page.Items), exportPath)
				return nil
			}

			if len(page.Items) == 0 {
				a.printf("No processing history.\n")
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\tDATE\tFILE\tTEMPLATE\tSTATUS\tSUMMARY\n")
			for _, r := range page.Items {
				summary := ""
				if r.GPTResult != nil {
					summary = truncate(r.GPTResult.Summary, 40)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.FileName, r.TemplateID, r.Status, summary)
			}
			w.Flush()
			a.printf("Page %d, %d of %d records\n", page.Page, len(page.Items), page.Total)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&q.Page, "page", 1, "page number")
	f.IntVar(&q.Limit, "limit", 10, "records per page (max 100)")
	f.StringVar(&q.Status, "status", "", "filter by status: pending, processing, completed, failed")
	f.StringVar(&q.TemplateID, "template", "", "filter by template id")
	f.StringVar(&exportPath, "export", "", "write this page to an .xlsx file instead of printing it")
	return cmd
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
