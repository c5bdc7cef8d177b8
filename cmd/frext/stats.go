package main

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics for the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}
			resp := a.client.GetUsageStats(cmd.Context())
			if !resp.Success || resp.Data == nil {
				return failed("stats", resp.Error, resp)
			}
			s := resp.Data
			a.printf("Total processed:    %d\n", s.TotalProcessed)
			a.printf("This month:         %d\n", s.MonthlyProcessed)
			a.printf("Remaining quota:    %d\n", s.RemainingQuota)
			a.printf("Average confidence: %.1f%%\n", s.AverageConfidence*100)
			return nil
		},
	}
}
